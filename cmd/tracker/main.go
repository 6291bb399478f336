package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"polytracker/internal/broadcast"
	"polytracker/internal/client/clob"
	"polytracker/internal/client/gamma"
	"polytracker/internal/config"
	cronrunner "polytracker/internal/cron"
	"polytracker/internal/db"
	"polytracker/internal/handler"
	"polytracker/internal/logger"
	gormrepository "polytracker/internal/repository/gorm"
	"polytracker/internal/service"

	_ "polytracker/docs"
)

// @title Polytracker API
// @version 0.1.0
// @description Prediction-market probability shift tracking and alerting.
// @BasePath /
func main() {
	cfgPath := os.Getenv("PT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("PT_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	gammaHTTP := &http.Client{Timeout: cfg.Gamma.Timeout}
	gammaClient := gamma.NewClient(gammaHTTP, cfg.Gamma.BaseURL)
	clobHTTP := &http.Client{Timeout: cfg.Clob.Timeout}
	clobClient := clob.NewClient(clobHTTP, cfg.Clob.BaseURL)
	store := gormrepository.New(dbConn.Gorm)

	source := &service.GammaSource{Client: gammaClient}
	ingest := &service.SnapshotIngestService{
		Repo:   store,
		Source: source,
		Logger: logger,
	}
	detector := &service.ShiftDetector{
		Repo:   store,
		Config: cfg.Alerts,
		Logger: logger,
	}
	ledger := &service.AlertLedger{
		Repo:   store,
		Logger: logger,
	}
	cycle := &service.Cycle{
		Repo:     store,
		Ingest:   ingest,
		Detector: detector,
		Ledger:   ledger,
		Logger:   logger,
	}
	trending := &service.TrendingService{
		Repo:   store,
		Events: gammaClient,
		Config: cfg.Trending,
		Logger: logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	view := &broadcast.MarketView{
		Source:     source,
		Trades:     clobClient,
		TradeLimit: cfg.Broadcast.TradeLimit,
		Logger:     logger,
	}
	registry := broadcast.NewRegistry(ctx, view, cfg.Broadcast.Interval, logger)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	marketHandler := &handler.MarketHandler{Repo: store, Gamma: gammaClient, Logger: logger}
	marketHandler.Register(engine)
	snapshotHandler := &handler.SnapshotHandler{Repo: store, Cycle: cycle, Logger: logger}
	snapshotHandler.Register(engine)
	alertHandler := &handler.AlertHandler{Repo: store, Ledger: ledger}
	alertHandler.Register(engine)
	trendingHandler := &handler.TrendingHandler{Service: trending}
	trendingHandler.Register(engine)
	wsHandler := &handler.WSHandler{Repo: store, Registry: registry, Logger: logger}
	wsHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add(cfg.Cron.SnapshotRefresh, func(ctx context.Context) {
			if err := cycle.Run(ctx); err != nil {
				logger.Warn("cron snapshot refresh failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register snapshot refresh failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.TrendingRefresh, func(ctx context.Context) {
			if _, err := trending.Refresh(ctx); err != nil {
				logger.Warn("cron trending refresh failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register trending refresh failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	registry.Shutdown()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
