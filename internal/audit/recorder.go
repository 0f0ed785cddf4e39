// Package audit ведёт журнал аудита: только добавление, без правки и удаления.
package audit

import (
	"context"
	"fmt"
	"time"

	"gmp-logbook/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionLogin            = "login"
	ActionLogout           = "logout"
	ActionEntryCreated     = "entry created"
	ActionEntryModified    = "entry modified"
	ActionEntryApproved    = "entry approved"
	ActionEquipmentCreated = "equipment created"
	ActionRoomCreated      = "room created"
)

const defaultListLimit = 200

type Recorder struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRecorder(db *gorm.DB, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{db: db, now: now}
}

// Event: то, что записывается в журнал.
type Event struct {
	Action   string
	Actor    string
	Detail   string
	Entity   string
	EntityID string
	Metadata map[string]any
}

// Record добавляет запись. Если передан tx, запись попадает в ту же транзакцию,
// что и изменение, и откатывается вместе с ним.
func (r *Recorder) Record(ctx context.Context, tx *gorm.DB, ev Event) (*models.AuditLog, error) {
	if ev.Action == "" {
		return nil, fmt.Errorf("audit: action is required")
	}
	if tx == nil {
		tx = r.db
	}

	rec := &models.AuditLog{
		CreatedAt: r.now().UTC(),
		Action:    ev.Action,
		Actor:     ev.Actor,
		Detail:    ev.Detail,
		Entity:    ev.Entity,
		EntityID:  ev.EntityID,
	}
	if len(ev.Metadata) > 0 {
		rec.Metadata = datatypes.JSONMap(ev.Metadata)
	}

	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("insert audit record: %w", err)
	}
	return rec, nil
}

type ListOptions struct {
	Limit    int
	Actor    string
	Action   string
	Entity   string
	EntityID string
	// Ascending: в порядке добавления; по умолчанию новые сверху.
	Ascending bool
}

func (r *Recorder) List(ctx context.Context, opts ListOptions) ([]models.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if opts.Actor != "" {
		q = q.Where("actor = ?", opts.Actor)
	}
	if opts.Action != "" {
		q = q.Where("action = ?", opts.Action)
	}
	if opts.Entity != "" {
		q = q.Where("entity = ?", opts.Entity)
	}
	if opts.EntityID != "" {
		q = q.Where("entity_id = ?", opts.EntityID)
	}

	if opts.Ascending {
		q = q.Order("id asc")
	} else {
		q = q.Order("id desc")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var logs []models.AuditLog
	if err := q.Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	return logs, nil
}

func (r *Recorder) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.AuditLog{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count audit records: %w", err)
	}
	return n, nil
}
