package models

import "time"

var RoomClassifications = []string{"Grade A", "Grade B", "Grade C", "Grade D", "Non classée"}

func ValidClassification(c string) bool {
	for _, v := range RoomClassifications {
		if v == c {
			return true
		}
	}
	return false
}

type Room struct {
	ID             string    `gorm:"primaryKey;size:32" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Classification string    `gorm:"size:50;not null" json:"classification"` // класс чистоты
	Status         string    `gorm:"size:50;not null" json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (r Room) Target() Target {
	return Target{ID: r.ID, Kind: TargetRoom, Name: r.Name}
}
