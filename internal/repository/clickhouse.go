package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"SchedulerApp/internal/model"
)

// ClickhouseRepo реализует пакетную запись событий проектов в ClickHouse
type ClickhouseRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClickhouseRepo создаёт новый репозиторий для ClickHouse
func NewClickhouseRepo(db *sql.DB, logger *zap.Logger) *ClickhouseRepo {
	return &ClickhouseRepo{db: db, logger: logger}
}

// BatchInsertEvents записывает пакет событий в таблицу project_events
func (r *ClickhouseRepo) BatchInsertEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	// clickhouse-go собирает блок между Begin и Commit
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	r.logger.Debug("inserting events batch", zap.Int("count", len(events)))
	query := `INSERT INTO project_events (EventType, ProjectId, Name, Status, TaskCount, EventTime) VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			string(e.Type), e.ProjectID.String(), e.Name,
			string(e.Status), uint32(e.TaskCount), e.OccurredAt,
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	r.logger.Info("events batch stored", zap.Int("count", len(events)))
	return nil
}
