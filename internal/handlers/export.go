package handlers

import (
	"bytes"
	"net/http"
	"time"

	"gmp-logbook/internal/export"
	"gmp-logbook/internal/logbook"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.Logbook.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) ExportCSV(c *gin.Context) {
	entries, err := h.Logbook.ListEntries(c.Request.Context(), logbook.EntryFilter{Oldest: true})
	if err != nil {
		fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, entries); err != nil {
		fail(c, err)
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(now())+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
