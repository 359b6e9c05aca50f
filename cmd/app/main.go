package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	nats "github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"SchedulerApp/internal/config"
	"SchedulerApp/internal/report"
	"SchedulerApp/internal/repository"
	"SchedulerApp/internal/service"
	externalHttp "SchedulerApp/internal/transport/http"
	"SchedulerApp/pkg/kvstore"
	"SchedulerApp/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Must("production").Fatal("failed to load config", zap.Error(err))
	}
	log := logger.Must(cfg.Environment)
	defer func() { _ = log.Sync() }()

	// выбираем хранилище документов
	store, ready, closeStore := openStore(cfg, log)
	defer closeStore()

	ctx := context.Background()
	projectStore, err := repository.NewProjectStore(ctx, repository.NewBlobPersistence(store, log), log)
	if err != nil {
		log.Fatal("failed to load projects", zap.Error(err))
	}
	templateStore, err := repository.NewTemplateStore(ctx, store, log)
	if err != nil {
		log.Fatal("failed to load task templates", zap.Error(err))
	}
	settingsStore := repository.NewSettingsStore(store, log)

	// подключаем NATS, если задан адрес; без него события не публикуются
	var publisher service.Publisher
	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		nc, err = nats.Connect(cfg.NATS.URL)
		if err != nil {
			log.Fatal("failed to connect to NATS", zap.Error(err))
		}
		publisher = logger.NewClient(nc, cfg.NATS.Subject)
	}

	// создаем сервисы
	projectSrv := service.NewProjectService(projectStore, templateStore, publisher, log)
	h := externalHttp.NewHandler(externalHttp.Deps{
		Projects:  projectSrv,
		Templates: service.NewTemplateService(templateStore, log),
		Settings:  service.NewSettingsService(settingsStore, log),
		Assistant: service.NewAssistantService(projectSrv, log),
		Workbook:  report.NewWorkbook(),
		Statement: func(company string) externalHttp.StatementGenerator {
			return report.NewStatement(company)
		},
		Ready:          ready,
		Logger:         log,
		ReminderWindow: cfg.Dashboard.ReminderWindowDays,
	})

	// настраиваем HTTP маршруты и middleware для логирования запросов
	r := mux.NewRouter()
	r.Use(externalHttp.LoggingMiddleware(log))
	h.RegisterRoutes(r)

	// запускаем HTTP сервер с поддержкой graceful shutdown
	srvHTTP := &http.Server{Addr: cfg.HTTP.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("starting server", zap.String("addr", cfg.HTTP.Addr), zap.String("storage", cfg.Storage.Backend))
		if err := srvHTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	// корректно дренируем и закрываем NATS-соединение
	if nc != nil {
		if err := nc.Drain(); err != nil {
			log.Warn("failed to drain NATS connection", zap.Error(err))
		}
		nc.Close()
	}
	log.Info("server exited properly")
}

// openStore подключает выбранное хранилище и возвращает его вместе с проверкой готовности и функцией закрытия
func openStore(cfg *config.Config, log *zap.Logger) (kvstore.Store, externalHttp.Pinger, func()) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DB.DSN)
		if err != nil {
			log.Fatal("failed to connect to Postgres", zap.Error(err))
		}
		if err := db.Ping(); err != nil {
			log.Fatal("failed to ping Postgres", zap.Error(err))
		}
		// Применяем миграции Postgres с помощью golang-migrate
		driver, err := postgres.WithInstance(db, &postgres.Config{})
		if err != nil {
			log.Fatal("failed to create migrate driver", zap.Error(err))
		}
		m, err := migrate.NewWithDatabaseInstance("file://migrations/postgres", "postgres", driver)
		if err != nil {
			log.Fatal("failed to create migrate instance", zap.Error(err))
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("failed to apply migrations", zap.Error(err))
		}
		repo := repository.NewBlobRepository(db)
		return repo, repo, func() { _ = db.Close() }
	case config.BackendMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return kvstore.NewMemoryStore(), nil, func() {}
	default:
		rs := kvstore.NewRedisStore(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Prefix)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			log.Fatal("failed to ping Redis", zap.Error(err))
		}
		return rs, rs, func() {
			if err := rs.Close(); err != nil {
				log.Warn("failed to close Redis client", zap.Error(err))
			}
		}
	}
}
