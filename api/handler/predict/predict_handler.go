package predict

import (
	"net/http"

	"github.com/AyoubFaradi/emotion-ai/api/common"
	"github.com/AyoubFaradi/emotion-ai/api/middleware"
	"github.com/gin-gonic/gin"
)

// PredictHandlerFunc 认证用户的预测。图片和审计记录必须持久化成功，
// 失败作为请求错误返回。
func (h *Handler) PredictHandlerFunc(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		common.RespondError(c, http.StatusUnauthorized, "Token manquant")
		return
	}

	data, ext, err := readImageFile(c)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Fichier image manquant")
		return
	}

	result, err := h.predictor.Predict(data)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Erreur lors de la prédiction: "+err.Error())
		return
	}

	analysis, err := h.saveAnalysis(c.Request.Context(), user.ID, data, ext, result)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Erreur lors de la prédiction: "+err.Error())
		return
	}

	common.RespondSuccess(c, gin.H{
		"id":         analysis.ID,
		"emotion":    analysis.Emotion,
		"confidence": analysis.Confidence,
	})
}
