package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ClickHouse/clickhouse-go"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/clickhouse"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"SchedulerApp/internal/config"
	"SchedulerApp/internal/consumer"
	"SchedulerApp/internal/repository"
	"SchedulerApp/pkg/logger"
)

func main() {
	// Читаем конфигурацию из окружения
	cfg, err := config.LoadConsumer()
	if err != nil {
		logger.Must("production").Fatal("failed to load config", zap.Error(err))
	}
	log := logger.Must(cfg.Environment)
	defer func() { _ = log.Sync() }()

	flushInterval, err := time.ParseDuration(cfg.Consumer.FlushInterval)
	if err != nil || flushInterval <= 0 {
		log.Fatal("invalid FLUSH_INTERVAL", zap.String("value", cfg.Consumer.FlushInterval), zap.Error(err))
	}

	// Подключаемся к NATS
	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		log.Fatal("failed to connect to NATS", zap.Error(err))
	}
	defer nc.Close()

	// Подключаемся к ClickHouse
	db, err := sql.Open("clickhouse", cfg.Consumer.ClickhouseDSN)
	if err != nil {
		log.Fatal("failed to connect to ClickHouse", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Применяем миграции ClickHouse с помощью golang-migrate
	driver, err := clickhouse.WithInstance(db, &clickhouse.Config{})
	if err != nil {
		log.Fatal("failed to create ClickHouse migrate driver", zap.Error(err))
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations/clickhouse", "clickhouse", driver)
	if err != nil {
		log.Fatal("failed to create ClickHouse migrate instance", zap.Error(err))
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("failed to apply ClickHouse migrations", zap.Error(err))
	}

	// Создаём репозиторий и консьюмера
	repo := repository.NewClickhouseRepo(db, log)
	cons := consumer.NewConsumer(repo, cfg.Consumer.BatchSize, log)

	// HTTP-сервер для healthz, readyz и метрик
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !nc.IsConnected() || db.PingContext(r.Context()) != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})
	mux.Handle("/metrics", promhttp.Handler())
	healthSrv := &http.Server{Addr: ":" + cfg.Consumer.Port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("starting health server", zap.String("port", cfg.Consumer.Port))
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("health server failed", zap.Error(err))
		}
	}()

	// Периодически сбрасываем неполные пачки, чтобы события не залеживались при низком трафике
	runCtx, stopRun := context.WithCancel(context.Background())
	go cons.Run(runCtx, flushInterval)

	// Подписываемся на тему NATS
	sub, err := nc.Subscribe(cfg.NATS.Subject, func(msg *nats.Msg) {
		if err := cons.HandleMessage(context.Background(), msg.Data); err != nil {
			log.Warn("failed to handle message", zap.Error(err))
		}
	})
	if err != nil {
		log.Fatal("failed to subscribe", zap.String("subject", cfg.NATS.Subject), zap.Error(err))
	}

	// Ждём сигнала завершения
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down consumer...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthSrv.Shutdown(ctx); err != nil {
		log.Warn("health server shutdown failed", zap.Error(err))
	}

	// Отписываемся и сбрасываем оставшиеся события
	if err := sub.Unsubscribe(); err != nil {
		log.Warn("failed to unsubscribe", zap.Error(err))
	}
	stopRun()
	if err := cons.Flush(ctx); err != nil {
		log.Error("failed to flush consumer events", zap.Error(err))
	}
}
