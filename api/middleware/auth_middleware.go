package middleware

import (
	"net/http"
	"strings"

	"github.com/AyoubFaradi/emotion-ai/api/common"
	"github.com/AyoubFaradi/emotion-ai/database/models"
	"github.com/AyoubFaradi/emotion-ai/database/repo/accounts"
	"github.com/AyoubFaradi/emotion-ai/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserKey 认证通过后存入上下文的用户对象
	ContextUserKey = "current_user"

	bearerPrefix = "Bearer "
)

// RequireAuth 强制认证：缺失、无效或过期的令牌一律 401
func RequireAuth(tokens *auth.TokenService, accountsRepo *accounts.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Token manquant")
			return
		}

		claims := tokens.Decode(strings.TrimPrefix(header, bearerPrefix))
		if claims == nil {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Token invalide ou expiré")
			return
		}

		user, err := accountsRepo.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			common.RespondErrorAbort(c, http.StatusInternalServerError, "Erreur de base de données")
			return
		}
		if user == nil {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Utilisateur introuvable")
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// OptionalAuth 尽力而为的认证：令牌有效则注入用户，任何失败都放行匿名请求
func OptionalAuth(tokens *auth.TokenService, accountsRepo *accounts.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, bearerPrefix) {
			if claims := tokens.Decode(strings.TrimPrefix(header, bearerPrefix)); claims != nil {
				user, err := accountsRepo.GetUserByID(c.Request.Context(), claims.UserID)
				if err == nil && user != nil {
					c.Set(ContextUserKey, user)
				}
			}
		}
		c.Next()
	}
}

// CurrentUser 从上下文取出认证用户，匿名请求返回 nil
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
