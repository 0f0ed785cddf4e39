// Package testutil собирает общие заготовки для тестов.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gmp-logbook/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewDB открывает отдельную sqlite-базу в памяти, мигрирует её и заливает демо-данные.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	database.PasswordCost = bcrypt.MinCost

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(database.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	seed, err := database.LoadSeed("")
	require.NoError(t, err)
	require.NoError(t, seed.Apply(context.Background(), db))
	return db
}

// Clock: ручные часы для тестов.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
