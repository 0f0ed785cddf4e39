package models

import "time"

// EntryEdit хранит одну правку записи и прежние значения полей.
// Seq нумерует правки внутри записи с единицы.
type EntryEdit struct {
	ID      uint   `gorm:"primaryKey" json:"-"`
	EntryID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_entry_edit_seq" json:"-"`
	Seq     int    `gorm:"not null;uniqueIndex:idx_entry_edit_seq" json:"seq"`

	Editor   string    `gorm:"size:255;not null" json:"by"`
	EditedAt time.Time `gorm:"not null" json:"at"`
	Reason   string    `gorm:"type:text;not null" json:"reason"`

	PriorComment  string   `gorm:"type:text" json:"oldComment"`
	PriorActivity Activity `gorm:"type:varchar(50);not null" json:"oldActivity"`
}
