package handlers

import (
	"net/http"
	"strconv"

	"gmp-logbook/internal/audit"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAuditLogs(c *gin.Context) {
	opts := audit.ListOptions{
		Actor:  c.Query("actor"),
		Action: c.Query("action"),
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive number")
			return
		}
		opts.Limit = n
	}

	logs, err := h.Audit.List(c.Request.Context(), opts)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// EntryAudit: история одной записи в порядке событий.
func (h *Handler) EntryAudit(c *gin.Context) {
	entry, err := h.Logbook.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	logs, err := h.Audit.List(c.Request.Context(), audit.ListOptions{
		Entity:    "entry",
		EntityID:  entry.ID,
		Ascending: true,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry, "logs": logs})
}
