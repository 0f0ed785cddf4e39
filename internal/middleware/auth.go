package middleware

import (
	"net/http"

	"gmp-logbook/internal/apperr"
	"gmp-logbook/internal/models"
	"gmp-logbook/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RequireAuth пускает дальше только с живой сессией. Каждый запрос
// считается активностью пользователя и продлевает сессию, а для клиентов
// с cookie заново выставляет её с полным сроком.
func RequireAuth(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie := sessionToken(c)
		user, err := mgr.Current(c.Request.Context(), token)
		if err != nil {
			if fromCookie && apperr.HTTPStatus(err) == http.StatusUnauthorized {
				_ = ForgetSession(c)
			}
			c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		if fromCookie {
			if err := RememberSession(c, token); err != nil {
				log.Warn().Err(err).Str("user", user.ID).Msg("refresh session cookie")
			}
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := map[models.UserRole]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}
		if _, ok := roleSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}
