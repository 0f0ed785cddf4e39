// Package app собирает зависимости сервиса из конфигурации.
package app

import (
	"context"
	"fmt"
	"time"

	"gmp-logbook/internal/audit"
	"gmp-logbook/internal/config"
	"gmp-logbook/internal/database"
	"gmp-logbook/internal/handlers"
	"gmp-logbook/internal/logbook"
	"gmp-logbook/internal/server"
	"gmp-logbook/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	DB       *gorm.DB
	RDB      *redis.Client
	Audit    *audit.Recorder
	Logbook  *logbook.Service
	Sessions *session.Manager
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	seed, err := database.LoadSeed(cfg.SeedFile)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	if err := seed.Apply(ctx, db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("seed database: %w", err)
	}

	a := &App{Config: cfg, DB: db}

	var store session.Store = session.NewMemoryStore()
	if cfg.SessionStore == "redis" {
		a.RDB = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := a.RDB.Ping(pingCtx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		store = session.NewRedisStore(a.RDB)
	}

	a.Audit = audit.NewRecorder(db, time.Now)
	a.Logbook = logbook.NewService(db, a.Audit, time.Now)
	a.Sessions = session.NewManager(db, store, a.Audit, cfg.SessionIdleTimeout, time.Now)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	h := &handlers.Handler{
		Logbook:  a.Logbook,
		Sessions: a.Sessions,
		Audit:    a.Audit,
		Now:      time.Now,
	}
	return server.NewRouter(h, a.Sessions, server.Options{
		AllowedOrigins: a.Config.AllowedOrigins,
		SessionSecret:  []byte(a.Config.SessionSecret),
		CookieSecure:   a.Config.CookieSecure,
	})
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if a.DB != nil {
		_ = database.Close(a.DB)
	}
}
