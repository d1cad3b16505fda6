package predict

import (
	"log"
	"net/http"

	"github.com/AyoubFaradi/emotion-ai/api/common"
	"github.com/AyoubFaradi/emotion-ai/api/middleware"
	"github.com/gin-gonic/gin"
)

// AnalyzeFaceHandlerFunc 实时摄像头分析。匿名请求直接返回预测结果；
// 带有效令牌时尽力保存历史记录，保存失败只记日志，不影响响应。
func (h *Handler) AnalyzeFaceHandlerFunc(c *gin.Context) {
	data, ext, err := readImageFile(c)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Fichier image manquant")
		return
	}

	result, err := h.predictor.Predict(data)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Erreur lors de l'analyse: "+err.Error())
		return
	}

	if user := middleware.CurrentUser(c); user != nil {
		if _, err := h.saveAnalysis(c.Request.Context(), user.ID, data, ext, result); err != nil {
			log.Printf("Failed to save analysis for user %d: %v", user.ID, err)
		}
	}

	common.RespondSuccess(c, result)
}
