package models

import "time"

type TargetKind string

const (
	TargetEquipment TargetKind = "equipment"
	TargetRoom      TargetKind = "room"
)

type EquipmentType string

const (
	EquipmentProduction EquipmentType = "production"
	EquipmentQC         EquipmentType = "QC"
	EquipmentUtilities  EquipmentType = "utilités"
)

func (t EquipmentType) Valid() bool {
	switch t {
	case EquipmentProduction, EquipmentQC, EquipmentUtilities:
		return true
	}
	return false
}

type Equipment struct {
	ID        string        `gorm:"primaryKey;size:32" json:"id"`
	Name      string        `gorm:"size:255;not null" json:"name"`
	Location  string        `gorm:"size:255" json:"location"`
	Type      EquipmentType `gorm:"type:varchar(50);not null" json:"type"`
	Status    string        `gorm:"size:50;not null" json:"status"` // opérationnel / maintenance / hors service
	CreatedAt time.Time     `json:"createdAt"`
}

func (Equipment) TableName() string { return "equipment" }

func (e Equipment) Target() Target {
	return Target{ID: e.ID, Kind: TargetEquipment, Name: e.Name}
}

// Target: оборудование или помещение, на которое ведётся журнал.
type Target struct {
	ID   string     `json:"id"`
	Kind TargetKind `json:"kind"`
	Name string     `json:"name"`
}
