package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SergeiKhy/visit-tracker/internal/config"
	"github.com/SergeiKhy/visit-tracker/internal/handler"
	"github.com/SergeiKhy/visit-tracker/internal/repository"
	"github.com/SergeiKhy/visit-tracker/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Время старта процесса для uptime в health check
	startTime := time.Now()

	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Подключение к БД (postgres)
	db, err := repository.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Создание таблицы и индексов, если их нет
	if err := db.InitSchema(context.Background()); err != nil {
		logger.Fatal("Failed to init database schema", zap.Error(err))
	}
	logger.Info("Database schema ready")

	// Инициализация репозитория и сервиса
	visitRepo := repository.NewVisitRepository(db)
	visitService := service.NewVisitService(visitRepo)

	// Настройка роутера
	healthHandler := handler.NewHealthHandler(db, logger, cfg.App.Version, startTime)
	router := handler.NewRouter(visitService, healthHandler, logger)

	// Запуск сервера
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
