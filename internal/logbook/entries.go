package logbook

import (
	"context"
	"fmt"
	"strings"

	"gmp-logbook/internal/apperr"
	"gmp-logbook/internal/audit"
	"gmp-logbook/internal/metrics"
	"gmp-logbook/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateEntryInput struct {
	TargetID   string
	Activity   models.Activity
	Comment    string
	Credential string
}

type EditEntryInput struct {
	Activity   models.Activity
	Comment    string
	Reason     string
	Credential string
}

func (s *Service) CreateEntry(ctx context.Context, actor *models.User, in CreateEntryInput) (entry *models.Entry, err error) {
	defer func() { metrics.EntryOperations.WithLabelValues("create", metrics.Result(err)).Inc() }()

	if actor == nil {
		return nil, ErrNoActor
	}
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s cannot create entries", apperr.ErrAuthorization, actor.Role)
	}
	if !in.Activity.Valid() {
		return nil, fmt.Errorf("%w: unknown activity %q", apperr.ErrValidation, in.Activity)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target, err := findTarget(tx, strings.TrimSpace(in.TargetID))
		if err != nil {
			return err
		}

		signed, err := verifySignature(tx, actor, in.Activity, in.Credential)
		if err != nil {
			return err
		}

		entry = &models.Entry{
			ID:          s.newID(),
			TargetID:    target.ID,
			TargetKind:  target.Kind,
			TargetName:  target.Name,
			Activity:    in.Activity,
			Comment:     in.Comment,
			UserID:      actor.ID,
			UserName:    actor.Name,
			UserRole:    actor.Role,
			CreatedAt:   s.now().UTC(),
			Status:      models.StatusDraft,
			Signed:      signed,
			EditHistory: []models.EntryEdit{},
		}
		if err := tx.Omit(clause.Associations).Create(entry).Error; err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		_, err = s.audit.Record(ctx, tx, audit.Event{
			Action:   audit.ActionEntryCreated,
			Actor:    actor.Name,
			Detail:   entryDetail(entry),
			Entity:   "entry",
			EntityID: entry.ID,
			Metadata: map[string]any{"targetId": entry.TargetID, "signed": entry.Signed},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// EditEntry правит черновик. Править может только автор; прежние значения
// уходят в историю правок, история только растёт.
func (s *Service) EditEntry(ctx context.Context, actor *models.User, entryID string, in EditEntryInput) (entry *models.Entry, err error) {
	defer func() { metrics.EntryOperations.WithLabelValues("edit", metrics.Result(err)).Inc() }()

	if actor == nil {
		return nil, ErrNoActor
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: an edit reason is required", apperr.ErrValidation)
	}
	if !in.Activity.Valid() {
		return nil, fmt.Errorf("%w: unknown activity %q", apperr.ErrValidation, in.Activity)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadEntry(tx, entryID)
		if err != nil {
			return err
		}
		if current.UserID != actor.ID {
			return fmt.Errorf("%w: only the author can edit an entry", apperr.ErrAuthorization)
		}
		if current.Approved() {
			return fmt.Errorf("%w: entry %s is already approved", apperr.ErrState, current.ID)
		}

		signed, err := verifySignature(tx, actor, in.Activity, in.Credential)
		if err != nil {
			return err
		}

		edit := models.EntryEdit{
			EntryID:       current.ID,
			Seq:           len(current.EditHistory) + 1,
			Editor:        actor.Name,
			EditedAt:      s.now().UTC(),
			Reason:        reason,
			PriorComment:  current.Comment,
			PriorActivity: current.Activity,
		}
		if err := tx.Create(&edit).Error; err != nil {
			return fmt.Errorf("insert entry edit: %w", err)
		}

		err = tx.Model(&models.Entry{}).
			Where("id = ?", current.ID).
			Updates(map[string]any{
				"activity": in.Activity,
				"comment":  in.Comment,
				"signed":   signed,
			}).Error
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}

		entry, err = loadEntry(tx, current.ID)
		if err != nil {
			return err
		}

		_, err = s.audit.Record(ctx, tx, audit.Event{
			Action:   audit.ActionEntryModified,
			Actor:    actor.Name,
			Detail:   entryDetail(entry),
			Entity:   "entry",
			EntityID: entry.ID,
			Metadata: map[string]any{"reason": reason, "seq": edit.Seq},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ApproveEntry переводит черновик в утверждённые. Повторное утверждение
// отклоняется с ErrState: утверждение бывает ровно один раз.
func (s *Service) ApproveEntry(ctx context.Context, actor *models.User, entryID string) (entry *models.Entry, err error) {
	defer func() { metrics.EntryOperations.WithLabelValues("approve", metrics.Result(err)).Inc() }()

	if actor == nil {
		return nil, ErrNoActor
	}
	if !actor.CanApprove() {
		return nil, fmt.Errorf("%w: role %s cannot approve entries", apperr.ErrAuthorization, actor.Role)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadEntry(tx, entryID)
		if err != nil {
			return err
		}
		if current.Approved() {
			return fmt.Errorf("%w: entry %s is already approved", apperr.ErrState, current.ID)
		}

		approvedAt := s.now().UTC()
		err = tx.Model(&models.Entry{}).
			Where("id = ? AND status = ?", current.ID, models.StatusDraft).
			Updates(map[string]any{
				"status":      models.StatusApproved,
				"approved_by": actor.Name,
				"approved_at": approvedAt,
			}).Error
		if err != nil {
			return fmt.Errorf("approve entry: %w", err)
		}

		entry, err = loadEntry(tx, current.ID)
		if err != nil {
			return err
		}

		_, err = s.audit.Record(ctx, tx, audit.Event{
			Action:   audit.ActionEntryApproved,
			Actor:    actor.Name,
			Detail:   "Entrée " + entry.ID,
			Entity:   "entry",
			EntityID: entry.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	return loadEntry(s.db.WithContext(ctx), id)
}

func entryDetail(e *models.Entry) string {
	return e.TargetName + " – " + string(e.Activity)
}
