package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"SchedulerApp/pkg/kvstore"
)

// BlobRepository хранит документы в таблице kv_blobs (Postgres) и реализует kvstore.Store
type BlobRepository struct {
	db *sql.DB
}

// NewBlobRepository создает новый репозиторий документов
func NewBlobRepository(db *sql.DB) *BlobRepository {
	return &BlobRepository{db: db}
}

// Get возвращает документ по ключу или kvstore.ErrKeyNotFound
func (r *BlobRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_blobs WHERE key=$1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kvstore.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get blob %s: %w", key, err)
	}
	return value, nil
}

// Put вставляет или заменяет документ; updated_at обновляется при каждой записи
func (r *BlobRepository) Put(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_blobs(key, value, updated_at) VALUES($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to put blob %s: %w", key, err)
	}
	return nil
}

// Delete удаляет документ; отсутствие строки ошибкой не считается
func (r *BlobRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_blobs WHERE key=$1`, key); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

// Ping проверяет соединение с БД (используется в /readyz)
func (r *BlobRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
