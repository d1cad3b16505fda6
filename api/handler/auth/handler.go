package auth

import (
	"github.com/AyoubFaradi/emotion-ai/database/repo/accounts"
	authsvc "github.com/AyoubFaradi/emotion-ai/internal/auth"
)

// Handler 注册和登录处理器
type Handler struct {
	accountsRepo *accounts.Repository
	tokens       *authsvc.TokenService
}

// NewHandler 创建认证处理器
func NewHandler(accountsRepo *accounts.Repository, tokens *authsvc.TokenService) *Handler {
	return &Handler{
		accountsRepo: accountsRepo,
		tokens:       tokens,
	}
}
