package handlers

import (
	"net/http"
	"time"

	"gmp-logbook/internal/apperr"
	"gmp-logbook/internal/audit"
	"gmp-logbook/internal/logbook"
	"gmp-logbook/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler связывает HTTP-маршруты с сервисами.
type Handler struct {
	Logbook  *logbook.Service
	Sessions *session.Manager
	Audit    *audit.Recorder
	Now      func() time.Time
}

// fail отдаёт ошибку клиенту. Внутренние ошибки пишем в лог и не раскрываем.
func fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
