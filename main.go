package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kube-rca/notify-gate/internal/client"
	"github.com/kube-rca/notify-gate/internal/config"
	"github.com/kube-rca/notify-gate/internal/handler"
	"github.com/kube-rca/notify-gate/internal/logging"
	"github.com/kube-rca/notify-gate/internal/metrics"
	"github.com/kube-rca/notify-gate/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// .env 파일이 없으면 환경변수만 사용
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Log)
	gin.SetMode(cfg.Server.GinMode)

	summary := cfg.Summary()
	log.Info().
		Bool("telegram", summary.Telegram).
		Bool("turnstile", summary.Turnstile).
		Bool("api_key_required", summary.APIKeyRequired).
		Strs("allowed_origins", cfg.CORS.AllowedOrigins).
		Msg("configuration loaded")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	httpClient := client.NewHTTPClient(cfg.HTTP.Timeout)
	turnstile := client.NewTurnstileClient(cfg.Turnstile, m.InstrumentDoer("turnstile", httpClient))
	telegram := client.NewTelegramClient(cfg.Telegram, m.InstrumentDoer("telegram", httpClient))

	notifySvc := service.NewNotifyService(
		service.NewAPIKeyGate(cfg.Auth.APIKey),
		turnstile,
		telegram,
		log.With().Str("component", "notify").Logger(),
	)

	router := handler.NewRouter(handler.RouterDeps{
		Config:   cfg,
		Notifier: notifySvc,
		Metrics:  m,
		Gatherer: reg,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
