package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"majaz-portal/internal/billing"
	"majaz-portal/internal/config"
	"majaz-portal/internal/idempotency"
	"majaz-portal/internal/logger"
	"majaz-portal/internal/mail"
	"majaz-portal/internal/payments"
	"majaz-portal/internal/repository/postgres"
	"majaz-portal/internal/server"
	"majaz-portal/internal/teamcache"
)

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer cancel()

	configPath := fetchConfigPath()
	if configPath == "" {
		stdlog.Fatal("config path must specify")
	}

	cfg, err := config.New(configPath)
	if err != nil {
		stdlog.Fatalf("cannot initialize config: %v", err)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		stdlog.Fatalf("cannot initialize logger: %v", err)
	}
	defer log.Sync()

	pgClient, err := postgres.New(ctx, &cfg.Postgres, log)
	if err != nil {
		log.Fatal("cannot initialize postgres", zap.Error(err))
	}

	var claims idempotency.Store = idempotency.Noop{}
	var closeRedis func() error
	if cfg.Redis.Enabled() {
		rdb, err := idempotency.Connect(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal("cannot initialize redis", zap.Error(err))
		}
		claims = idempotency.NewRedisStore(rdb, cfg.Redis.TTL)
		closeRedis = rdb.Close
	} else {
		log.Warn("REDIS_ADDR is empty, webhook deduplication relies on postgres only")
	}

	var sender mail.Sender
	if cfg.Mail.Enabled() {
		sender = mail.NewSMTPSender(&cfg.Mail)
	} else {
		log.Warn("MAIL_HOST is empty, emails are logged instead of sent")
		sender = mail.NewLogSender(log)
	}
	notifier := mail.NewNotifier(sender, &cfg.Mail, log)

	team, err := teamcache.New(pgClient, &cfg.TeamCache, log)
	if err != nil {
		log.Fatal("cannot initialize team cache", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err = payments.RegisterMetrics(reg); err != nil {
		log.Fatal("cannot register stripe metrics", zap.Error(err))
	}
	if err = billing.RegisterMetrics(reg); err != nil {
		log.Fatal("cannot register billing metrics", zap.Error(err))
	}

	deps := server.Deps{
		Repo:           pgClient,
		Team:           team,
		Payments:       payments.New(&cfg.Stripe, log),
		Verifier:       payments.NewVerifier(cfg.Stripe.WebhookSecret),
		Events:         billing.NewService(pgClient, claims, notifier, log),
		Contact:        notifier,
		Auth:           &cfg.Auth,
		PublishableKey: cfg.Stripe.PublishableKey,
		Metrics:        reg,
	}

	router := server.NewRouter(deps, log, &cfg.Logger, &cfg.HTTP)
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	srv := http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("starting http server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	log.Info("received shutdown signal")

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("failed to shutdown server", zap.Error(err))
	}

	pgClient.Close()
	if closeRedis != nil {
		if err := closeRedis(); err != nil {
			log.Error("failed to close redis", zap.Error(err))
		}
	}

	log.Info("application shutdown completed successfully")
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config_path", "", "Path to the config file")
	flag.Parse()

	return path
}
