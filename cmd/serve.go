package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AyoubFaradi/emotion-ai/api/core"
	"github.com/AyoubFaradi/emotion-ai/config"
	"github.com/AyoubFaradi/emotion-ai/database"
	"github.com/AyoubFaradi/emotion-ai/database/repo/accounts"
	"github.com/AyoubFaradi/emotion-ai/database/repo/analyses"
	authsvc "github.com/AyoubFaradi/emotion-ai/internal/auth"
	"github.com/AyoubFaradi/emotion-ai/internal/emotion"
	"github.com/AyoubFaradi/emotion-ai/storage"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	db, err := database.NewDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 等待数据库就绪（容器编排下 postgres 可能晚于应用启动）
	if err := database.WaitForDB(db, cfg.DBWaitMaxRetries, cfg.DBWaitDelay); err != nil {
		log.Fatalf("Database not reachable: %v", err)
	}

	// 自动DDL
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}
	log.Println("Database initialized successfully")

	storageFactory, err := storage.NewFactory(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	tokenService, err := authsvc.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	// 模型延迟加载，首次预测时读取权重文件
	predictor := emotion.NewPredictor()

	deps := &core.ServerDependencies{
		Config:         cfg,
		DB:             db,
		AccountsRepo:   accounts.NewRepository(db),
		AnalysesRepo:   analyses.NewRepository(db),
		TokenService:   tokenService,
		Predictor:      predictor,
		StorageFactory: storageFactory,
	}

	// 启动gin
	server, cleanup := core.StartServer(deps)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cleanup != nil {
		cleanup()
		log.Println("Cleanup tasks finished.")
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := database.Close(db); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Server exited successfully")
}
