// Пакет postgres_test содержит интеграционные тесты для проверки корректного выполнения SQL миграций PostgreSQL
package postgres_test

import (
	"context"
	"database/sql" // пакет взаимодействия с базой данных через стандартный интерфейс
	"errors"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"                 // PostgreSQL драйвер, регистрируется анонимным импортом через side-effects
	"github.com/stretchr/testify/require" // библиотека удобных утверждений для упрощения проверок в тестах

	"SchedulerApp/internal/repository"
	"SchedulerApp/pkg/kvstore"
)

// TestPostgresMigrations проверяет, что миграции создают таблицу kv_blobs, с ней работает BlobRepository,
// а откат удаляет таблицу
func TestPostgresMigrations(t *testing.T) {
	// пропускаем тест, если не задана переменная окружения для тестовой БД
	dsn := os.Getenv("MIGRATION_TEST_DSN")
	if dsn == "" {
		t.Skip("MIGRATION_TEST_DSN env var not set; skipping Postgres migration tests")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "ошибка при открытии соединения с базой данных")
	defer func() {
		require.NoError(t, db.Close(), "ошибка при закрытии соединения с базой данных")
	}()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	require.NoError(t, err, "failed to create migrate driver")
	m, err := migrate.NewWithDatabaseInstance("file://.", "postgres", driver)
	require.NoError(t, err, "failed to create migrate instance")
	// Откат предыдущих миграций, чтобы обеспечить чистое состояние
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to rollback migrations: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	// ------------------------- Проверки структуры -------------------------
	var exists bool
	err = db.QueryRow(
		`SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name='kv_blobs')`,
	).Scan(&exists)
	require.NoError(t, err)
	require.True(t, exists, "таблица kv_blobs должна существовать после миграций")

	var pkCount int
	err = db.QueryRow(
		`SELECT count(*) FROM information_schema.table_constraints WHERE table_name='kv_blobs' AND constraint_type='PRIMARY KEY'`,
	).Scan(&pkCount)
	require.NoError(t, err)
	require.Equal(t, 1, pkCount, "в таблице kv_blobs должен быть ровно один первичный ключ")

	var colDefault, dataType, isNullable string
	err = db.QueryRow(
		`SELECT column_default, data_type, is_nullable FROM information_schema.columns WHERE table_name='kv_blobs' AND column_name='updated_at'`,
	).Scan(&colDefault, &dataType, &isNullable)
	require.NoError(t, err)
	require.Contains(t, colDefault, "now()")
	require.Equal(t, "timestamp without time zone", dataType)
	require.Equal(t, "NO", isNullable)

	// ------------------------- Upsert через репозиторий -------------------------
	ctx := context.Background()
	repo := repository.NewBlobRepository(db)
	_, err = repo.Get(ctx, "projects")
	require.ErrorIs(t, err, kvstore.ErrKeyNotFound)
	require.NoError(t, repo.Put(ctx, "projects", []byte(`[]`)))
	require.NoError(t, repo.Put(ctx, "projects", []byte(`[{"id":"p1"}]`)))
	got, err := repo.Get(ctx, "projects")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"p1"}]`, string(got))

	// ------------------------- Проверка отката -------------------------
	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to rollback migrations: %v", err)
	}
	err = db.QueryRow(
		`SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name='kv_blobs')`,
	).Scan(&exists)
	require.NoError(t, err)
	require.False(t, exists, "таблица kv_blobs должна быть удалена после отката")
}
