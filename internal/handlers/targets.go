package handlers

import (
	"errors"
	"net/http"

	"gmp-logbook/internal/logbook"
	"gmp-logbook/internal/middleware"
	"gmp-logbook/internal/models"

	"github.com/gin-gonic/gin"
)

type equipmentRequest struct {
	Name     string               `json:"name" binding:"required"`
	Location string               `json:"location"`
	Type     models.EquipmentType `json:"type"`
	Status   string               `json:"status"`
}

type roomRequest struct {
	Name           string `json:"name" binding:"required"`
	Classification string `json:"classification"`
	Status         string `json:"status"`
}

func (h *Handler) ListEquipment(c *gin.Context) {
	list, err := h.Logbook.ListEquipment(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"equipment": list})
}

func (h *Handler) CreateEquipment(c *gin.Context) {
	var req equipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}

	eq, err := h.Logbook.CreateEquipment(c.Request.Context(), middleware.CurrentUser(c), logbook.EquipmentInput{
		Name:     req.Name,
		Location: req.Location,
		Type:     req.Type,
		Status:   req.Status,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, eq)
}

func (h *Handler) ListRooms(c *gin.Context) {
	list, err := h.Logbook.ListRooms(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": list})
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}

	room, err := h.Logbook.CreateRoom(c.Request.Context(), middleware.CurrentUser(c), logbook.RoomInput{
		Name:           req.Name,
		Classification: req.Classification,
		Status:         req.Status,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// ShowTarget отдаёт цель и её записи, новые сверху.
func (h *Handler) ShowTarget(c *gin.Context) {
	target, err := h.Logbook.GetTarget(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, logbook.ErrTargetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		fail(c, err)
		return
	}

	entries, err := h.Logbook.ListEntries(c.Request.Context(), logbook.EntryFilter{
		TargetID: target.ID,
		Activity: models.Activity(c.Query("activity")),
		Status:   models.EntryStatus(c.Query("status")),
		Search:   c.Query("q"),
	})
	if err != nil {
		fail(c, err)
		return
	}

	var approved int
	for _, e := range entries {
		if e.Approved() {
			approved++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"target":   target,
		"entries":  entries,
		"approved": approved,
	})
}
