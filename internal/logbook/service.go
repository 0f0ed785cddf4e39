// Package logbook реализует жизненный цикл записей журнала:
// создание, правку с обязательной причиной, электронную подпись и утверждение.
//
// Все изменения идут в одной транзакции вместе с записью аудита:
// сначала проверки, потом запись. При любой ошибке состояние не меняется.
package logbook

import (
	"errors"
	"fmt"
	"time"

	"gmp-logbook/internal/apperr"
	"gmp-logbook/internal/audit"
	"gmp-logbook/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEntryNotFound  = fmt.Errorf("%w: entry", apperr.ErrNotFound)
	ErrTargetNotFound = fmt.Errorf("%w: unknown equipment or room", apperr.ErrValidation)
	ErrNoActor        = fmt.Errorf("%w: no current user", apperr.ErrAuthentication)
	ErrBadSignature   = fmt.Errorf("%w: signature refused, wrong password", apperr.ErrAuthentication)
)

type Service struct {
	db    *gorm.DB
	audit *audit.Recorder
	now   func() time.Time
	newID func() string
}

func NewService(db *gorm.DB, rec *audit.Recorder, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:    db,
		audit: rec,
		now:   now,
		newID: uuid.NewString,
	}
}

// verifySignature проверяет электронную подпись для видов работ, где она нужна.
// Хеш берём из базы, а не из сессии.
func verifySignature(tx *gorm.DB, actor *models.User, activity models.Activity, credential string) (bool, error) {
	if !activity.RequiresSignature() {
		return false, nil
	}

	var stored models.User
	if err := tx.First(&stored, "id = ?", actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNoActor
		}
		return false, fmt.Errorf("load signer: %w", err)
	}
	if !stored.CheckPassword(credential) {
		return false, ErrBadSignature
	}
	return true, nil
}

func findTarget(tx *gorm.DB, id string) (models.Target, error) {
	var eq models.Equipment
	err := tx.First(&eq, "id = ?", id).Error
	if err == nil {
		return eq.Target(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Target{}, fmt.Errorf("load equipment: %w", err)
	}

	var room models.Room
	err = tx.First(&room, "id = ?", id).Error
	if err == nil {
		return room.Target(), nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Target{}, ErrTargetNotFound
	}
	return models.Target{}, fmt.Errorf("load room: %w", err)
}

func loadEntry(tx *gorm.DB, id string) (*models.Entry, error) {
	var e models.Entry
	err := tx.
		Preload("EditHistory", byEditSeq).
		First(&e, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("load entry: %w", err)
	}
	if e.EditHistory == nil {
		e.EditHistory = []models.EntryEdit{}
	}
	return &e, nil
}
