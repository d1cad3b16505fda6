package predict

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AyoubFaradi/emotion-ai/api/middleware"
	"github.com/AyoubFaradi/emotion-ai/database/models"
	"github.com/AyoubFaradi/emotion-ai/database/repo/accounts"
	"github.com/AyoubFaradi/emotion-ai/database/repo/analyses"
	authsvc "github.com/AyoubFaradi/emotion-ai/internal/auth"
	"github.com/AyoubFaradi/emotion-ai/internal/emotion"
	"github.com/AyoubFaradi/emotion-ai/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv 预测接口测试环境
type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	tokens    *authsvc.TokenService
	uploadDir string
}

// setupTest 组装带认证中间件的完整路由，模型和上传目录都在临时目录
func setupTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.EmotionAnalysis{}))

	tokens, err := authsvc.NewTokenService("test-secret-key", time.Hour)
	assert.NoError(t, err)

	uploadDir := t.TempDir()
	store, err := storage.NewLocalStorage(uploadDir)
	assert.NoError(t, err)

	modelPath := writeTestModel(t)
	predictor := emotion.NewPredictor(modelPath)

	accountsRepo := accounts.NewRepository(db)
	handler := NewHandler(analyses.NewRepository(db), predictor, store)

	requireAuth := middleware.RequireAuth(tokens, accountsRepo)
	optionalAuth := middleware.OptionalAuth(tokens, accountsRepo)

	router := gin.New()
	router.POST("/analyze-face", optionalAuth, handler.AnalyzeFaceHandlerFunc)
	router.POST("/predict", requireAuth, handler.PredictHandlerFunc)
	router.GET("/history", requireAuth, handler.HistoryHandlerFunc)

	return &testEnv{router: router, db: db, tokens: tokens, uploadDir: uploadDir}
}

// writeTestModel 写入一个偏置决定结果的最小模型，预测恒为 happy
func writeTestModel(t *testing.T) string {
	t.Helper()

	inputDim := 64 * 64
	bias := make([]float64, len(emotion.Labels))
	bias[3] = 10 // happy
	net := &emotion.Network{
		Labels: emotion.Labels,
		Layers: []emotion.LayerSpec{
			{Kind: "flatten"},
			{
				Kind:       "dense",
				Activation: "softmax",
				InputDim:   inputDim,
				OutputDim:  len(emotion.Labels),
				Weights:    make([]float64, inputDim*len(emotion.Labels)),
				Bias:       bias,
			},
		},
	}

	path := filepath.Join(t.TempDir(), "emotion_model.gob")
	f, err := os.Create(path)
	assert.NoError(t, err)
	defer f.Close()
	assert.NoError(t, emotion.WriteNetwork(f, net))
	return path
}

// createUserWithToken 插入用户并签发令牌
func (env *testEnv) createUserWithToken(t *testing.T, name string) (uint, string) {
	t.Helper()

	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: "x",
	}
	assert.NoError(t, env.db.Create(user).Error)

	token, err := env.tokens.Issue(user.Email, user.ID)
	assert.NoError(t, err)
	return user.ID, token
}

// uploadImage 构造带图片的 multipart 请求
func uploadImage(t *testing.T, path, token string) *http.Request {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: 150})
		}
	}
	var imgBuf bytes.Buffer
	assert.NoError(t, png.Encode(&imgBuf, img))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "face.png")
	assert.NoError(t, err)
	_, err = part.Write(imgBuf.Bytes())
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// --- 测试匿名分析 ---

// TestAnalyzeFace_Anonymous 无令牌也能分析，但不写历史
func TestAnalyzeFace_Anonymous(t *testing.T) {
	env := setupTest(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, uploadImage(t, "/analyze-face", ""))

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "happy", response["emotion"])
	assert.Greater(t, response["confidence"].(float64), 0.0)

	var count int64
	assert.NoError(t, env.db.Model(&models.EmotionAnalysis{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// TestAnalyzeFace_Authenticated 有效令牌时同时写入历史
func TestAnalyzeFace_Authenticated(t *testing.T) {
	env := setupTest(t)
	userID, token := env.createUserWithToken(t, "alice")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, uploadImage(t, "/analyze-face", token))

	assert.Equal(t, http.StatusOK, w.Code)

	var records []models.EmotionAnalysis
	assert.NoError(t, env.db.Where("user_id = ?", userID).Find(&records).Error)
	assert.Len(t, records, 1)
	assert.Equal(t, "happy", records[0].Emotion)
	assert.NotEmpty(t, records[0].ImagePath)
}

// TestAnalyzeFace_MissingFile 缺少文件字段返回 400
func TestAnalyzeFace_MissingFile(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest(http.MethodPost, "/analyze-face", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Fichier image manquant", response["detail"])
}

// --- 测试认证预测 ---

// TestPredict_RequiresAuth 无令牌返回 401
func TestPredict_RequiresAuth(t *testing.T) {
	env := setupTest(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, uploadImage(t, "/predict", ""))

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Token manquant", response["detail"])
}

// TestPredict_InvalidToken 篡改令牌返回 401
func TestPredict_InvalidToken(t *testing.T) {
	env := setupTest(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, uploadImage(t, "/predict", "not-a-valid-token"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Token invalide ou expiré", response["detail"])
}

// TestPredict_SavesRecordAndImage 预测成功后记录和图片都落盘
func TestPredict_SavesRecordAndImage(t *testing.T) {
	env := setupTest(t)
	userID, token := env.createUserWithToken(t, "alice")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, uploadImage(t, "/predict", token))

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "happy", response["emotion"])
	assert.NotZero(t, response["id"])

	var records []models.EmotionAnalysis
	assert.NoError(t, env.db.Where("user_id = ?", userID).Find(&records).Error)
	assert.Len(t, records, 1)

	// 上传目录里应当有一个保存的图片文件
	entries, err := os.ReadDir(env.uploadDir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, ".png", filepath.Ext(entries[0].Name()))
}

// --- 测试历史记录 ---

// TestHistory_Empty 无记录时返回空数组
func TestHistory_Empty(t *testing.T) {
	env := setupTest(t)
	_, token := env.createUserWithToken(t, "alice")

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

// TestHistory_ReturnsOwnRecordsNewestFirst 只返回自己的记录，按时间倒序
func TestHistory_ReturnsOwnRecordsNewestFirst(t *testing.T) {
	env := setupTest(t)
	aliceID, aliceToken := env.createUserWithToken(t, "alice")
	bobID, _ := env.createUserWithToken(t, "bob")

	base := time.Now().Add(-time.Hour)
	for i, emotionName := range []string{"sad", "happy"} {
		assert.NoError(t, env.db.Create(&models.EmotionAnalysis{
			UserID:    aliceID,
			Emotion:   emotionName,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	assert.NoError(t, env.db.Create(&models.EmotionAnalysis{
		UserID:  bobID,
		Emotion: "angry",
	}).Error)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var items []map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 2)
	assert.Equal(t, "happy", items[0]["emotion"])
	assert.Equal(t, "sad", items[1]["emotion"])
	assert.NotEmpty(t, items[0]["created_at"])
}

// TestHistory_RequiresAuth 无令牌返回 401
func TestHistory_RequiresAuth(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
