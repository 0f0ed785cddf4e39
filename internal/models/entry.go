package models

import "time"

type Activity string
type EntryStatus string

const (
	ActivityUsage       Activity = "utilisation"
	ActivityCleaning    Activity = "nettoyage"
	ActivityMaintenance Activity = "maintenance"
	ActivityCalibration Activity = "calibration"
	ActivityIncident    Activity = "incident"
	ActivityTechnical   Activity = "intervention technique"

	StatusDraft    EntryStatus = "draft"
	StatusApproved EntryStatus = "approved"
)

var Activities = []Activity{
	ActivityUsage,
	ActivityCleaning,
	ActivityMaintenance,
	ActivityCalibration,
	ActivityIncident,
	ActivityTechnical,
}

func (a Activity) Valid() bool {
	for _, v := range Activities {
		if v == a {
			return true
		}
	}
	return false
}

// RequiresSignature: для этих видов работ нужна электронная подпись.
func (a Activity) RequiresSignature() bool {
	switch a {
	case ActivityCleaning, ActivityCalibration, ActivityMaintenance:
		return true
	}
	return false
}

func (s EntryStatus) Valid() bool {
	return s == StatusDraft || s == StatusApproved
}

// Entry: запись журнала. Имя цели и автора копируются на момент записи,
// чтобы последующие переименования не меняли историю.
type Entry struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`

	TargetID   string     `gorm:"size:32;not null;index" json:"targetId"`
	TargetKind TargetKind `gorm:"type:varchar(20);not null" json:"targetKind"`
	TargetName string     `gorm:"size:255;not null" json:"targetName"`

	Activity Activity `gorm:"type:varchar(50);not null;index" json:"activity"`
	Comment  string   `gorm:"type:text" json:"comment"`

	UserID   string   `gorm:"size:32;not null;index" json:"userId"`
	UserName string   `gorm:"size:255;not null" json:"userName"`
	UserRole UserRole `gorm:"type:varchar(20);not null" json:"userRole"`

	CreatedAt time.Time   `gorm:"index;not null" json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Status    EntryStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Signed    bool        `gorm:"not null;default:false" json:"signed"`

	ApprovedBy string     `gorm:"size:255" json:"approvedBy,omitempty"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`

	EditHistory []EntryEdit `gorm:"foreignKey:EntryID" json:"editHistory"`
}

func (e Entry) Approved() bool { return e.Status == StatusApproved }
