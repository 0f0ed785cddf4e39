// Package session отвечает за вход, выход и блокировку по неактивности.
//
// Сессия живёт, пока между запросами проходит меньше idle-таймаута
// (по умолчанию 15 минут). Каждый запрос сдвигает срок. По истечении
// сессия просто удаляется, других побочных эффектов нет.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gmp-logbook/internal/apperr"
	"gmp-logbook/internal/audit"
	"gmp-logbook/internal/metrics"
	"gmp-logbook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const DefaultIdleTimeout = 15 * time.Minute

var (
	ErrBadCredentials = fmt.Errorf("%w: unknown user or wrong password", apperr.ErrAuthentication)
	ErrNotLoggedIn    = fmt.Errorf("%w: not logged in", apperr.ErrAuthentication)
	ErrExpired        = fmt.Errorf("%w: session expired after inactivity", apperr.ErrAuthentication)
)

// dummyHash сверяется с паролем при неизвестном id: время ответа
// не зависит от того, существует ли пользователь.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("logbook-no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
})

var comparePassword = func(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

type Manager struct {
	db    *gorm.DB
	store Store
	audit *audit.Recorder
	idle  time.Duration
	now   func() time.Time
}

func NewManager(db *gorm.DB, store Store, rec *audit.Recorder, idle time.Duration, now func() time.Time) *Manager {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Manager{db: db, store: store, audit: rec, idle: idle, now: now}
}

func (m *Manager) IdleTimeout() time.Duration { return m.idle }

// Login проверяет пароль и открывает сессию. Ошибка не меняет состояния.
func (m *Manager) Login(ctx context.Context, userID, credential string) (string, *models.User, error) {
	var user models.User
	err := m.db.WithContext(ctx).First(&user, "id = ?", strings.TrimSpace(userID)).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("load user: %w", err)
	}
	found := err == nil && user.PasswordHash != ""

	hash := dummyHash()
	if found {
		hash = []byte(user.PasswordHash)
	}
	matched := comparePassword(hash, credential)
	if !found || !matched || credential == "" {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return "", nil, ErrBadCredentials
	}

	now := m.now().UTC()
	sess := Session{
		Token:    uuid.NewString(),
		UserID:   user.ID,
		IssuedAt: now,
		LastSeen: now,
	}
	if err := m.store.Save(ctx, sess, m.idle); err != nil {
		return "", nil, err
	}

	if _, err := m.audit.Record(ctx, nil, audit.Event{
		Action:   audit.ActionLogin,
		Actor:    user.Name,
		Entity:   "session",
		EntityID: user.ID,
	}); err != nil {
		_ = m.store.Delete(ctx, sess.Token)
		return "", nil, err
	}

	metrics.LoginAttempts.WithLabelValues("ok").Inc()
	return sess.Token, &user, nil
}

// Current возвращает пользователя сессии и продлевает её.
// Просроченная сессия удаляется, дальше нужен повторный вход.
func (m *Manager) Current(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotLoggedIn
	}

	sess, err := m.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}

	now := m.now().UTC()
	if now.Sub(sess.LastSeen) >= m.idle {
		if err := m.store.Delete(ctx, token); err != nil {
			return nil, err
		}
		metrics.SessionsExpired.Inc()
		log.Debug().Str("user", sess.UserID).Msg("session expired")
		return nil, ErrExpired
	}

	var user models.User
	if err := m.db.WithContext(ctx).First(&user, "id = ?", sess.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = m.store.Delete(ctx, token)
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}

	sess.LastSeen = now
	if err := m.store.Save(ctx, *sess, m.idle); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout закрывает сессию. Для неизвестного или просроченного токена ничего не делает.
func (m *Manager) Logout(ctx context.Context, token string) error {
	user, err := m.Current(ctx, token)
	if err != nil {
		if errors.Is(err, apperr.ErrAuthentication) {
			return nil
		}
		return err
	}
	if err := m.store.Delete(ctx, token); err != nil {
		return err
	}
	_, err = m.audit.Record(ctx, nil, audit.Event{
		Action:   audit.ActionLogout,
		Actor:    user.Name,
		Entity:   "session",
		EntityID: user.ID,
	})
	return err
}

// Sweep удаляет все сессии, простаивающие дольше таймаута.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	n, err := m.store.DeleteExpired(ctx, m.now().UTC().Add(-m.idle))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.SessionsExpired.Add(float64(n))
	}
	return n, nil
}

// Run периодически вызывает Sweep до отмены ctx.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := m.Sweep(ctx)
			if err != nil {
				log.Error().Err(err).Msg("sweep sessions")
				continue
			}
			if n > 0 {
				log.Info().Int("expired", n).Msg("swept idle sessions")
			}
		}
	}
}
