package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Totarae/recommender/internal/config"
	"github.com/Totarae/recommender/internal/database"
	grpcv2 "github.com/Totarae/recommender/internal/grpc/v2"
	"github.com/Totarae/recommender/internal/handlers"
	"github.com/Totarae/recommender/internal/repositories"
	"github.com/Totarae/recommender/internal/router"
	"github.com/Totarae/recommender/internal/service"
	"github.com/Totarae/recommender/internal/storage"
	"go.uber.org/zap"
)

const healthInterval = 15 * time.Second

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Не удалось создать логгер: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Сервер остановлен с ошибкой", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc := service.NewRecommendationService(repo, logger)
	handler := handlers.NewHandler(svc, logger)

	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router.NewRouter(handler, logger),
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("Сервер запущен", zap.String("address", cfg.ServerAddress),
			zap.String("mode", cfg.Mode), zap.Bool("https", cfg.EnableHTTPS))
		var serveErr error
		if cfg.EnableHTTPS {
			serveErr = srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			serveErr = srv.ListenAndServe()
		}
		if !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	if cfg.GRPCAddress != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddress)
		if err != nil {
			return err
		}
		healthSrv := grpcv2.NewHealthServer(svc, logger)
		go healthSrv.Watch(ctx, healthInterval)
		go func() {
			logger.Info("gRPC health запущен", zap.String("address", cfg.GRPCAddress))
			if err := healthSrv.Serve(lis); err != nil {
				errCh <- err
			}
		}()
		defer healthSrv.Stop()
	}

	select {
	case <-ctx.Done():
		logger.Info("Получен сигнал завершения")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Repository, func(), error) {
	if cfg.Mode != config.ModeDatabase {
		return storage.NewMemoryRepository(), func() {}, nil
	}

	db, err := database.NewDB(ctx, cfg.DatabaseDSN, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := database.Migrate(db.Pool, cfg.PgMigrationsPath, logger); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repositories.NewRecommendationRepository(db.SQL()), db.Close, nil
}
