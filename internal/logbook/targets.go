package logbook

import (
	"context"
	"fmt"
	"strings"

	"gmp-logbook/internal/apperr"
	"gmp-logbook/internal/audit"
	"gmp-logbook/internal/models"

	"gorm.io/gorm"
)

type EquipmentInput struct {
	Name     string
	Location string
	Type     models.EquipmentType
	Status   string
}

type RoomInput struct {
	Name           string
	Classification string
	Status         string
}

// TargetCounts: сколько записей по цели и сколько ждут утверждения.
type TargetCounts struct {
	Entries int64 `json:"entries"`
	Pending int64 `json:"pending"`
}

type EquipmentView struct {
	models.Equipment
	TargetCounts
}

type RoomView struct {
	models.Room
	TargetCounts
}

var (
	equipmentStatuses = []string{"opérationnel", "maintenance", "hors service"}
	roomStatuses      = []string{"opérationnelle", "maintenance", "hors service"}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

func (s *Service) CreateEquipment(ctx context.Context, actor *models.User, in EquipmentInput) (*models.Equipment, error) {
	if actor == nil {
		return nil, ErrNoActor
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can add equipment", apperr.ErrAuthorization)
	}

	eq := models.Equipment{
		ID:       "EQ-" + shortID(s.newID()),
		Name:     strings.TrimSpace(in.Name),
		Location: strings.TrimSpace(in.Location),
		Type:     in.Type,
		Status:   in.Status,
	}
	if eq.Name == "" {
		return nil, fmt.Errorf("%w: equipment name is required", apperr.ErrValidation)
	}
	if eq.Type == "" {
		eq.Type = models.EquipmentProduction
	}
	if !eq.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown equipment type %q", apperr.ErrValidation, eq.Type)
	}
	if eq.Status == "" {
		eq.Status = equipmentStatuses[0]
	}
	if !oneOf(eq.Status, equipmentStatuses) {
		return nil, fmt.Errorf("%w: unknown equipment status %q", apperr.ErrValidation, eq.Status)
	}
	eq.CreatedAt = s.now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&eq).Error; err != nil {
			return fmt.Errorf("insert equipment: %w", err)
		}
		_, err := s.audit.Record(ctx, tx, audit.Event{
			Action:   audit.ActionEquipmentCreated,
			Actor:    actor.Name,
			Detail:   eq.Name,
			Entity:   "equipment",
			EntityID: eq.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (s *Service) CreateRoom(ctx context.Context, actor *models.User, in RoomInput) (*models.Room, error) {
	if actor == nil {
		return nil, ErrNoActor
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can add rooms", apperr.ErrAuthorization)
	}

	room := models.Room{
		ID:             "RM-" + shortID(s.newID()),
		Name:           strings.TrimSpace(in.Name),
		Classification: in.Classification,
		Status:         in.Status,
	}
	if room.Name == "" {
		return nil, fmt.Errorf("%w: room name is required", apperr.ErrValidation)
	}
	if room.Classification == "" {
		room.Classification = "Grade D"
	}
	if !models.ValidClassification(room.Classification) {
		return nil, fmt.Errorf("%w: unknown classification %q", apperr.ErrValidation, room.Classification)
	}
	if room.Status == "" {
		room.Status = roomStatuses[0]
	}
	if !oneOf(room.Status, roomStatuses) {
		return nil, fmt.Errorf("%w: unknown room status %q", apperr.ErrValidation, room.Status)
	}
	room.CreatedAt = s.now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return fmt.Errorf("insert room: %w", err)
		}
		_, err := s.audit.Record(ctx, tx, audit.Event{
			Action:   audit.ActionRoomCreated,
			Actor:    actor.Name,
			Detail:   room.Name,
			Entity:   "room",
			EntityID: room.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Service) ListEquipment(ctx context.Context) ([]EquipmentView, error) {
	var list []models.Equipment
	if err := s.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	counts, err := s.countsByTarget(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]EquipmentView, 0, len(list))
	for _, eq := range list {
		out = append(out, EquipmentView{Equipment: eq, TargetCounts: counts[eq.ID]})
	}
	return out, nil
}

func (s *Service) ListRooms(ctx context.Context) ([]RoomView, error) {
	var list []models.Room
	if err := s.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	counts, err := s.countsByTarget(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RoomView, 0, len(list))
	for _, r := range list {
		out = append(out, RoomView{Room: r, TargetCounts: counts[r.ID]})
	}
	return out, nil
}

func (s *Service) countsByTarget(ctx context.Context) (map[string]TargetCounts, error) {
	var rows []struct {
		TargetID string
		Entries  int64
		Pending  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Entry{}).
		Select("target_id, COUNT(*) AS entries, SUM(CASE WHEN status <> ? THEN 1 ELSE 0 END) AS pending", models.StatusApproved).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count entries by target: %w", err)
	}

	out := make(map[string]TargetCounts, len(rows))
	for _, r := range rows {
		out[r.TargetID] = TargetCounts{Entries: r.Entries, Pending: r.Pending}
	}
	return out, nil
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// GetTarget ищет оборудование или помещение по ID.
func (s *Service) GetTarget(ctx context.Context, id string) (models.Target, error) {
	return findTarget(s.db.WithContext(ctx), id)
}
