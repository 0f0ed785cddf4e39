package logbook

import (
	"context"
	"fmt"
	"strings"

	"gmp-logbook/internal/apperr"
	"gmp-logbook/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// EntryFilter: фильтры списка записей. Пустые поля не ограничивают выборку.
type EntryFilter struct {
	TargetID string
	Activity models.Activity
	Status   models.EntryStatus
	Search   string // по комментарию и имени автора, без учёта регистра

	// Oldest: в порядке создания; по умолчанию новые сверху.
	Oldest bool
}

func (f EntryFilter) validate() error {
	if f.Activity != "" && !f.Activity.Valid() {
		return fmt.Errorf("%w: unknown activity %q", apperr.ErrValidation, f.Activity)
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, f.Status)
	}
	return nil
}

func (s *Service) ListEntries(ctx context.Context, f EntryFilter) ([]models.Entry, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.Entry{}).Preload("EditHistory", byEditSeq)
	if f.TargetID != "" {
		q = q.Where("target_id = ?", f.TargetID)
	}
	if f.Activity != "" {
		q = q.Where("activity = ?", f.Activity)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Oldest {
		q = q.Order("created_at asc").Order("id asc")
	} else {
		q = q.Order("created_at desc").Order("id desc")
	}

	var entries []models.Entry
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	needle := fold(strings.TrimSpace(f.Search))
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if needle != "" &&
			!strings.Contains(fold(e.Comment), needle) &&
			!strings.Contains(fold(e.UserName), needle) {
			continue
		}
		if e.EditHistory == nil {
			e.EditHistory = []models.EntryEdit{}
		}
		out = append(out, e)
	}
	return out, nil
}

func byEditSeq(db *gorm.DB) *gorm.DB { return db.Order("seq asc") }

// fold приводит строку к виду для сравнения без учёта регистра.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

type Stats struct {
	Entries     int64 `json:"entries"`
	Approved    int64 `json:"approved"`
	Pending     int64 `json:"pending"`
	Signed      int64 `json:"signed"`
	AuditEvents int64 `json:"auditEvents"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Entry{}).Count(&st.Entries).Error; err != nil {
		return Stats{}, fmt.Errorf("count entries: %w", err)
	}
	if err := db.Model(&models.Entry{}).Where("status = ?", models.StatusApproved).Count(&st.Approved).Error; err != nil {
		return Stats{}, fmt.Errorf("count approved entries: %w", err)
	}
	if err := db.Model(&models.Entry{}).Where("signed = ?", true).Count(&st.Signed).Error; err != nil {
		return Stats{}, fmt.Errorf("count signed entries: %w", err)
	}
	st.Pending = st.Entries - st.Approved

	n, err := s.audit.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	st.AuditEvents = n
	return st, nil
}
