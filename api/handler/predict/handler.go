package predict

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/AyoubFaradi/emotion-ai/database/models"
	"github.com/AyoubFaradi/emotion-ai/database/repo/analyses"
	"github.com/AyoubFaradi/emotion-ai/internal/emotion"
	"github.com/AyoubFaradi/emotion-ai/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler 预测和历史记录处理器
type Handler struct {
	analysesRepo *analyses.Repository
	predictor    *emotion.Predictor
	store        storage.Provider
}

// NewHandler 创建预测处理器
func NewHandler(analysesRepo *analyses.Repository, predictor *emotion.Predictor, store storage.Provider) *Handler {
	return &Handler{
		analysesRepo: analysesRepo,
		predictor:    predictor,
		store:        store,
	}
}

// readImageFile 读取 multipart 表单中的图片字节和扩展名，无扩展名默认 .jpg
func readImageFile(c *gin.Context) ([]byte, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("missing image file: %w", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read uploaded file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = ".jpg"
	}

	return data, ext, nil
}

// saveAnalysis 保存图片并写入一条审计记录，插入失败时整体回滚
func (h *Handler) saveAnalysis(ctx context.Context, userID uint, data []byte, ext string, result *emotion.Result) (*models.EmotionAnalysis, error) {
	identifier := uuid.New().String() + ext

	if err := h.store.SaveWithContext(ctx, identifier, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to save capture: %w", err)
	}

	analysis := &models.EmotionAnalysis{
		UserID:     userID,
		ImagePath:  h.store.Location(identifier),
		Emotion:    result.Emotion,
		Confidence: result.Confidence,
	}

	if err := h.analysesRepo.CreateInTransaction(ctx, analysis); err != nil {
		return nil, err
	}

	return analysis, nil
}
