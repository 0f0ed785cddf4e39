package handlers

import (
	"net/http"

	"gmp-logbook/internal/middleware"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "userId and password are required")
		return
	}

	token, user, err := h.Sessions.Login(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	if err := middleware.RememberSession(c, token); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Sessions.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		fail(c, err)
		return
	}
	if err := middleware.ForgetSession(c); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"user":       user,
		"canWrite":   user.CanWrite(),
		"canApprove": user.CanApprove(),
		"isAdmin":    user.IsAdmin(),
	})
}
