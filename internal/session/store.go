package session

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("session not found")

// Session: серверная сессия. LastSeen сдвигается при каждом запросе.
type Session struct {
	Token    string    `json:"token"`
	UserID   string    `json:"uid"`
	IssuedAt time.Time `json:"iat"`
	LastSeen time.Time `json:"seen"`
}

// Store хранит сессии по токену. ttl: подсказка для хранилищ с истечением ключей.
type Store interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	// DeleteExpired удаляет сессии, не активные с момента before.
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}
