package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextEmailKey  = "email"
	ContextRoleKey   = "role"
)

// AuthMiddleware проверяет access токен провайдера авторизации.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "требуется авторизация")
			return
		}

		actor, err := tokens.ParseAccess(raw)
		if err != nil {
			abortUnauthorized(c, "токен невалиден")
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// SetAuthChallenge добавляет к ответу 401 заголовок WWW-Authenticate (RFC 6750).
func SetAuthChallenge(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
}

func abortUnauthorized(c *gin.Context, message string) {
	SetAuthChallenge(c)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": message})
}

// OptionalAuth выставляет пользователя, если передан валидный токен.
// Без токена или с битым токеном запрос продолжается анонимно.
func OptionalAuth(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if actor, err := tokens.ParseAccess(raw); err == nil {
				setActor(c, actor)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

func setActor(c *gin.Context, actor *models.Actor) {
	c.Set(ContextUserIDKey, actor.ID)
	c.Set(ContextEmailKey, actor.Email)
	c.Set(ContextRoleKey, actor.Role)
}
