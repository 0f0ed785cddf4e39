package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type UserRole string

const (
	RoleOperator    UserRole = "operator"
	RoleMaintenance UserRole = "maintenance"
	RoleQuality     UserRole = "quality"
	RoleAdmin       UserRole = "admin"
)

// Valid сообщает, известна ли роль системе.
func (r UserRole) Valid() bool {
	switch r {
	case RoleOperator, RoleMaintenance, RoleQuality, RoleAdmin:
		return true
	}
	return false
}

// Label: подпись роли для экспорта и интерфейса.
func (r UserRole) Label() string {
	switch r {
	case RoleOperator:
		return "Opérateur"
	case RoleMaintenance:
		return "Maintenance"
	case RoleQuality:
		return "Qualité"
	case RoleAdmin:
		return "Administrateur"
	}
	return string(r)
}

// User заводится только сидом, после этого не меняется.
type User struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CanWrite: записи в журнал ведут все, кроме отдела качества.
func (u User) CanWrite() bool { return u.Role != RoleQuality }

func (u User) CanApprove() bool { return u.Role == RoleQuality || u.Role == RoleAdmin }

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// CheckPassword сверяет пароль с bcrypt-хешем.
func (u User) CheckPassword(password string) bool {
	if u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
