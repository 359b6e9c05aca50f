// Пакет repository содержит unit-тесты для BlobRepository поверх таблицы kv_blobs
package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"SchedulerApp/pkg/kvstore"
)

// TestBlobGet проверяет чтение документа и ErrKeyNotFound при отсутствии строки
func TestBlobGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewBlobRepository(db)
	ctx := context.Background()

	// успешный сценарий
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_blobs WHERE key=$1")).
		WithArgs("projects").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))
	got, err := repo.Get(ctx, "projects")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("expected [], got %s", got)
	}

	// строки нет
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_blobs WHERE key=$1")).
		WithArgs("user").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	_, err = repo.Get(ctx, "user")
	if !errors.Is(err, kvstore.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestBlobGet_QueryError: ошибка драйвера прокидывается и не превращается в ErrKeyNotFound
func TestBlobGet_QueryError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewBlobRepository(db)
	mockErr := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_blobs")).
		WithArgs("projects").
		WillReturnError(mockErr)
	_, err := repo.Get(context.Background(), "projects")
	if err == nil || !strings.Contains(err.Error(), mockErr.Error()) {
		t.Errorf("expected query error, got %v", err)
	}
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		t.Error("driver error must not be reported as missing key")
	}
}

// TestBlobPut проверяет upsert документа
func TestBlobPut(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewBlobRepository(db)
	value := []byte(`[{"id":"p1"}]`)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_blobs(key, value, updated_at)")).
		WithArgs("projects", value).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Put(context.Background(), "projects", value); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	mockErr := errors.New("disk full")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_blobs")).
		WithArgs("projects", value).
		WillReturnError(mockErr)
	if err := repo.Put(context.Background(), "projects", value); err == nil || !strings.Contains(err.Error(), mockErr.Error()) {
		t.Errorf("expected put error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestBlobDelete проверяет удаление документа
func TestBlobDelete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewBlobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_blobs WHERE key=$1")).
		WithArgs("openai_api_key").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), "openai_api_key"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
