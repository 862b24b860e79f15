package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jengzang/ecogo-motion/internal/api"
	"github.com/jengzang/ecogo-motion/internal/classifier"
	"github.com/jengzang/ecogo-motion/internal/config"
	"github.com/jengzang/ecogo-motion/internal/database"
	"github.com/jengzang/ecogo-motion/internal/middleware"
	"github.com/jengzang/ecogo-motion/internal/repository"
	"github.com/jengzang/ecogo-motion/internal/roadmatch"
	"github.com/jengzang/ecogo-motion/internal/service"
	"github.com/jengzang/ecogo-motion/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 初始化数据库
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	db, err := database.Open(database.Config{Path: cfg.Database.Path})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	predictionRepo := repository.NewPredictionRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	// 遥测
	sinks := []telemetry.Sink{telemetry.NewSQLiteSink(predictionRepo, progressRepo)}
	if len(cfg.Telemetry.KafkaBrokers) > 0 {
		kafkaSink, err := telemetry.NewKafkaSink(telemetry.KafkaConfig{
			Brokers: cfg.Telemetry.KafkaBrokers,
			Topic:   cfg.Telemetry.KafkaTopic,
		})
		if err != nil {
			log.Fatalf("Failed to create Kafka sink: %v", err)
		}
		sinks = append(sinks, kafkaSink)
		log.Printf("Telemetry publishing to Kafka topic %s", cfg.Telemetry.KafkaTopic)
	}
	recorder := telemetry.NewRecorder(cfg.Telemetry.BufferSize, sinks...)
	recorder.Start()

	var snapper roadmatch.Snapper
	if cfg.RoadMatch.APIURL != "" {
		snapper = roadmatch.NewHTTPSnapper(cfg.RoadMatch.APIURL, cfg.RoadMatch.APIKey, cfg.RoadMatch.Timeout)
		log.Printf("Road matching enabled via %s", cfg.RoadMatch.APIURL)
	} else {
		log.Println("Road matching not configured - sessions use local classification only")
	}

	detections := service.NewDetectionService(
		cfg.DetectionSettings(),
		cfg.RoadMatchSettings(),
		classifier.NewLocalClassifier(cfg.Detection.ModelPath),
		snapper,
		recorder,
	)
	navigations := service.NewNavigationService(cfg.NavigationSettings(), recorder)
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)

	// 初始化路由
	router := api.SetupRouter(cfg, api.Services{
		Detection:  detections,
		Navigation: navigations,
		Routes:     service.NewRouteService(),
		History:    service.NewHistoryService(predictionRepo, progressRepo),
		Limiter:    limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		// 启动服务器
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	detections.Shutdown()
	limiter.Stop()
	recorder.Stop()
}
