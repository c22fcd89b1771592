// Package main запускает HTTP-сервер POS-системы Bear Phone.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/bearphone-pos/internal/config"
	"github.com/mmeshcher/bearphone-pos/internal/handler"
	"github.com/mmeshcher/bearphone-pos/internal/invoice"
	"github.com/mmeshcher/bearphone-pos/internal/repository"
	"github.com/mmeshcher/bearphone-pos/internal/service"
	"github.com/mmeshcher/bearphone-pos/internal/whatsapp"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	messenger := whatsapp.NewClient(whatsapp.DefaultBaseURL,
		cfg.UltramsgInstanceID, cfg.UltramsgToken,
		cfg.DispatchTimeout, cfg.DispatchRetries)
	if !messenger.Configured() {
		sugar.Warn("whatsapp credentials not configured, notifications disabled")
	}

	svc := service.NewService(repo, messenger, logger, cfg.BaseURL, cfg.DispatchTimeout)
	defer svc.Close()

	renderer := invoice.NewRenderer(cfg.AssetsDir)
	h := handler.NewHandler(svc, renderer, logger)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск фоновой доставки уведомлений о продажах
	g.Go(func() error {
		svc.StartNotificationWorker(ctx)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting bearphone pos server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
