package server

import (
	"crypto/rand"
	"net/http"
	"time"

	"gmp-logbook/internal/handlers"
	"gmp-logbook/internal/middleware"
	"gmp-logbook/internal/models"
	"gmp-logbook/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Options struct {
	AllowedOrigins []string
	// SessionSecret подписывает cookie сессии. Пустой: случайный ключ на время процесса.
	SessionSecret []byte
	CookieSecure  bool
}

func NewRouter(h *handlers.Handler, mgr *session.Manager, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	secret := opts.SessionSecret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(err)
		}
		log.Warn().Msg("SESSION_SECRET is not set, cookies will not survive a restart")
	}
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(mgr.IdleTimeout().Seconds()),
		HttpOnly: true,
		Secure:   opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(middleware.SessionCookie, store))

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", middleware.SessionHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// AUTH
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)

	auth := api.Group("/")
	auth.Use(middleware.RequireAuth(mgr))

	auth.GET("/me", h.Me)

	// ОБОРУДОВАНИЕ И ПОМЕЩЕНИЯ
	auth.GET("/equipment", h.ListEquipment)
	auth.POST("/equipment",
		middleware.RequireRole(models.RoleAdmin),
		h.CreateEquipment,
	)
	auth.GET("/rooms", h.ListRooms)
	auth.POST("/rooms",
		middleware.RequireRole(models.RoleAdmin),
		h.CreateRoom,
	)
	auth.GET("/targets/:id", h.ShowTarget)

	// ЗАПИСИ ЖУРНАЛА
	auth.GET("/entries", h.ListEntries)
	auth.GET("/entries/:id", h.GetEntry)
	auth.POST("/entries",
		middleware.RequireRole(models.RoleOperator, models.RoleMaintenance, models.RoleAdmin),
		h.CreateEntry,
	)
	// автора проверяет сервис
	auth.PUT("/entries/:id", h.EditEntry)
	auth.POST("/entries/:id/approve",
		middleware.RequireRole(models.RoleQuality, models.RoleAdmin),
		h.ApproveEntry,
	)

	// АУДИТ: читать могут все роли
	auth.GET("/audit", h.ListAuditLogs)
	auth.GET("/entries/:id/audit", h.EntryAudit)

	auth.GET("/stats", h.Stats)
	auth.GET("/export.csv", h.ExportCSV)

	return r
}
