package auth

import (
	"log"
	"net/http"

	"github.com/AyoubFaradi/emotion-ai/api/common"
	authsvc "github.com/AyoubFaradi/emotion-ai/internal/auth"
	"github.com/AyoubFaradi/emotion-ai/utils"
	"github.com/gin-gonic/gin"
)

type loginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginHandlerFunc 用户登录。无论邮箱不存在还是密码错误，
// 对外只返回同一条消息，避免用户枚举。
func (h *Handler) LoginHandlerFunc(c *gin.Context) {
	var req loginRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accountsRepo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Erreur de base de données")
		return
	}
	if user == nil || !authsvc.CheckPassword(req.Password, user.Password) {
		log.Printf("Login failed for %s", utils.SanitizeLogMessage(req.Email))
		common.RespondError(c, http.StatusUnauthorized, "Identifiants invalides")
		return
	}

	token, err := h.tokens.Issue(user.Email, user.ID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Erreur lors de la connexion")
		return
	}

	common.RespondSuccess(c, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User: userResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}
