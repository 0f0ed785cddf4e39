package handlers

import (
	"net/http"

	"gmp-logbook/internal/logbook"
	"gmp-logbook/internal/middleware"
	"gmp-logbook/internal/models"

	"github.com/gin-gonic/gin"
)

type createEntryRequest struct {
	TargetID string          `json:"targetId" binding:"required"`
	Activity models.Activity `json:"activity" binding:"required"`
	Comment  string          `json:"comment"`
	Password string          `json:"password"` // электронная подпись
}

type editEntryRequest struct {
	Activity models.Activity `json:"activity" binding:"required"`
	Comment  string          `json:"comment"`
	Reason   string          `json:"reason"`
	Password string          `json:"password"`
}

// ListEntries: список записей с фильтрами ?targetId=&activity=&status=&q=
func (h *Handler) ListEntries(c *gin.Context) {
	entries, err := h.Logbook.ListEntries(c.Request.Context(), logbook.EntryFilter{
		TargetID: c.Query("targetId"),
		Activity: models.Activity(c.Query("activity")),
		Status:   models.EntryStatus(c.Query("status")),
		Search:   c.Query("q"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": len(entries)})
}

func (h *Handler) GetEntry(c *gin.Context) {
	entry, err := h.Logbook.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) CreateEntry(c *gin.Context) {
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "targetId and activity are required")
		return
	}

	entry, err := h.Logbook.CreateEntry(c.Request.Context(), middleware.CurrentUser(c), logbook.CreateEntryInput{
		TargetID:   req.TargetID,
		Activity:   req.Activity,
		Comment:    req.Comment,
		Credential: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) EditEntry(c *gin.Context) {
	var req editEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "activity is required")
		return
	}

	entry, err := h.Logbook.EditEntry(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), logbook.EditEntryInput{
		Activity:   req.Activity,
		Comment:    req.Comment,
		Reason:     req.Reason,
		Credential: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) ApproveEntry(c *gin.Context) {
	entry, err := h.Logbook.ApproveEntry(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
