package core

import (
	"context"
	"net/http"
	"time"

	"github.com/AyoubFaradi/emotion-ai/config"
	"github.com/AyoubFaradi/emotion-ai/database"
	"github.com/AyoubFaradi/emotion-ai/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var startTime = time.Now()

// HealthHandler 健康检查处理器
type HealthHandler struct {
	db             *gorm.DB
	storageFactory *storage.Factory
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db *gorm.DB, storageFactory *storage.Factory) *HealthHandler {
	return &HealthHandler{db: db, storageFactory: storageFactory}
}

// Handle 返回各依赖的健康状态，任一异常时返回 503
func (h *HealthHandler) Handle(c *gin.Context) {
	checks := gin.H{
		"database": h.checkDatabase(),
		"storage":  h.checkStorage(c.Request.Context()),
	}

	status := "ok"
	httpStatus := http.StatusOK
	for _, result := range checks {
		if result != "ok" {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	})
}

func (h *HealthHandler) checkDatabase() string {
	if h.db == nil {
		return "not initialized"
	}
	if err := database.Ping(h.db); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func (h *HealthHandler) checkStorage(ctx context.Context) string {
	if h.storageFactory == nil {
		return "not initialized"
	}
	provider := h.storageFactory.GetDefault()
	if provider == nil {
		return "error: no default storage provider"
	}
	if err := provider.Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
