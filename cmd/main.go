package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eduviz-backend/internal/config"
	"eduviz-backend/internal/engine"
	"eduviz-backend/internal/handler"
	"eduviz-backend/internal/service"
	"eduviz-backend/internal/storage"
	"eduviz-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// 初始化生成引擎
	eng := newEngine(cfg)
	logger.Infof("生成引擎: %s", eng.Name())

	// 初始化存储与服务
	store := storage.NewMemoryStorage(cfg.Session.TTL, cfg.Session.CleanupInterval)
	if err := store.Init(); err != nil {
		logger.Fatalf("存储初始化失败: %v", err)
	}
	defer store.Close()

	generationService := service.NewGenerationService(eng, store)
	generateHandler := handler.NewGenerateHandler(generationService)

	// 创建路由
	router := setupRouter(cfg, generateHandler)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// 启动服务器
	go func() {
		logger.Infof("服务器启动在端口 %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待信号优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务器正在关闭...")
	if err := server.Close(); err != nil {
		logger.Errorf("服务器关闭失败: %v", err)
	}
	logger.Info("服务器已关闭")
}

// newEngine 按配置选择提供商
func newEngine(cfg *config.Config) engine.Engine {
	switch cfg.Engine.Provider {
	case "gemini":
		return engine.NewGeminiEngine(cfg.Engine.Gemini)
	case "openai":
		return engine.NewOpenAIEngine(cfg.Engine.OpenAI)
	default:
		log.Fatalf("Unsupported engine provider: %s", cfg.Engine.Provider)
		return nil
	}
}

func setupRouter(cfg *config.Config, generateHandler *handler.GenerateHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS配置
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	// API路由
	api := router.Group("/api")
	{
		api.GET("/domains", generateHandler.ListDomains)
		api.POST("/generate", generateHandler.Generate)
		api.POST("/session", generateHandler.CreateSession)
		api.DELETE("/session/:session_id", generateHandler.DeleteSession)
		api.GET("/history/:session_id", generateHandler.ListHistory)
		api.GET("/history/:session_id/entries/:entry_id", generateHandler.GetHistoryEntry)
	}

	return router
}
