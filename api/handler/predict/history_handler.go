package predict

import (
	"net/http"
	"time"

	"github.com/AyoubFaradi/emotion-ai/api/common"
	"github.com/AyoubFaradi/emotion-ai/api/middleware"
	"github.com/gin-gonic/gin"
)

type historyItem struct {
	ID         uint    `json:"id"`
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	CreatedAt  *string `json:"created_at"`
}

// HistoryHandlerFunc 返回当前用户的全部分析记录，按创建时间倒序。
// 没有记录时返回空列表。
func (h *Handler) HistoryHandlerFunc(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		common.RespondError(c, http.StatusUnauthorized, "Token manquant")
		return
	}

	records, err := h.analysesRepo.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Erreur lors de la récupération de l'historique")
		return
	}

	items := make([]historyItem, 0, len(records))
	for _, r := range records {
		item := historyItem{
			ID:         r.ID,
			Emotion:    r.Emotion,
			Confidence: r.Confidence,
		}
		if !r.CreatedAt.IsZero() {
			createdAt := r.CreatedAt.Format(time.RFC3339)
			item.CreatedAt = &createdAt
		}
		items = append(items, item)
	}

	common.RespondSuccess(c, items)
}
