package middleware

import (
	"strings"

	"gmp-logbook/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "logbook_session"
	SessionHeader = "X-Session-Token"

	currentUserKey  = "CurrentUser"
	sessionTokenKey = "token"
)

// SessionToken берёт токен из заголовка, иначе из cookie-сессии.
func SessionToken(c *gin.Context) string {
	token, _ := sessionToken(c)
	return token
}

func sessionToken(c *gin.Context) (token string, fromCookie bool) {
	if t := strings.TrimSpace(c.GetHeader(SessionHeader)); t != "" {
		return t, false
	}
	if t, ok := sessions.Default(c).Get(sessionTokenKey).(string); ok && t != "" {
		return t, true
	}
	return "", false
}

// RememberSession кладёт токен в cookie и выставляет её заново с полным сроком.
func RememberSession(c *gin.Context, token string) error {
	sess := sessions.Default(c)
	sess.Set(sessionTokenKey, token)
	return sess.Save()
}

// ForgetSession стирает cookie.
func ForgetSession(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	return sess.Save()
}

// CurrentUser: пользователь, которого положил RequireAuth.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
