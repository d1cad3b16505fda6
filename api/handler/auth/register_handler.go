package auth

import (
	"net/http"

	"github.com/AyoubFaradi/emotion-ai/api/common"
	"github.com/AyoubFaradi/emotion-ai/database/models"
	"github.com/AyoubFaradi/emotion-ai/database/repo/accounts"
	authsvc "github.com/AyoubFaradi/emotion-ai/internal/auth"
	"github.com/gin-gonic/gin"
)

type registerRequestBody struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterHandlerFunc 用户注册。邮箱和用户名重复返回两条不同的错误消息。
func (h *Handler) RegisterHandlerFunc(c *gin.Context) {
	var req registerRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()

	existing, err := h.accountsRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Erreur de base de données")
		return
	}
	if existing != nil {
		common.RespondError(c, http.StatusBadRequest, "Email déjà utilisé")
		return
	}

	existing, err = h.accountsRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Erreur de base de données")
		return
	}
	if existing != nil {
		common.RespondError(c, http.StatusBadRequest, "Nom d'utilisateur déjà utilisé")
		return
	}

	hashed, err := authsvc.HashPassword(req.Password)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Erreur lors de l'inscription")
		return
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
	}

	if err := h.accountsRepo.CreateUser(ctx, user); err != nil {
		// 唯一索引兜底：并发注册时预检查可能同时通过
		if accounts.IsDuplicateError(err) {
			common.RespondError(c, http.StatusBadRequest, "Erreur: Email ou nom d'utilisateur déjà utilisé")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Erreur de base de données")
		return
	}

	common.RespondSuccess(c, gin.H{
		"message": "Compte créé avec succès",
		"user_id": user.ID,
	})
}
