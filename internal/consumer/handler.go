package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"SchedulerApp/internal/model"
	"SchedulerApp/pkg/metrics"
)

// Repo описывает интерфейс репозитория ClickHouse для пакетной записи событий
type Repo interface {
	BatchInsertEvents(ctx context.Context, events []model.Event) error
}

// Consumer буферизует события проектов и отправляет их пакетно в ClickHouse
// batchSize определяет макс. количество событий до отправки
// mutex защищает доступ к буферу events
type Consumer struct {
	repo      Repo
	batchSize int
	logger    *zap.Logger
	events    []model.Event
	mu        sync.Mutex
}

// NewConsumer создаёт Consumer с указанным репозиторием и размером пакета
func NewConsumer(repo Repo, batchSize int, logger *zap.Logger) *Consumer {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Consumer{repo: repo, batchSize: batchSize, logger: logger, events: make([]model.Event, 0, batchSize)}
}

// HandleMessage обрабатывает сообщение из NATS: парсит JSON, добавляет событие в буфер
// и при достижении batchSize отправляет пакет в ClickHouse
func (c *Consumer) HandleMessage(ctx context.Context, data []byte) error {
	var e model.Event
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" || e.ProjectID == "" {
		return fmt.Errorf("%w: event without type or project id", model.ErrValidation)
	}
	c.logger.Debug("event received",
		zap.String("type", string(e.Type)),
		zap.String("project_id", e.ProjectID.String()))
	c.mu.Lock()
	c.events = append(c.events, e)
	if len(c.events) >= c.batchSize {
		batch := c.drainLocked()
		c.mu.Unlock()
		return c.insert(ctx, batch)
	}
	c.mu.Unlock()
	return nil
}

// Flush отправляет все накопленные события, если они есть
func (c *Consumer) Flush(ctx context.Context) error {
	c.mu.Lock()
	if len(c.events) == 0 {
		c.mu.Unlock()
		return nil
	}
	batch := c.drainLocked()
	c.mu.Unlock()
	return c.insert(ctx, batch)
}

// Pending возвращает количество событий в буфере
func (c *Consumer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Run периодически сбрасывает буфер, чтобы редкие события не ждали заполнения пакета.
// Завершается при отмене ctx
func (c *Consumer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Flush(ctx); err != nil {
				c.logger.Error("periodic flush failed", zap.Error(err))
			}
		}
	}
}

func (c *Consumer) drainLocked() []model.Event {
	batch := make([]model.Event, len(c.events))
	copy(batch, c.events)
	c.events = c.events[:0]
	return batch
}

func (c *Consumer) insert(ctx context.Context, batch []model.Event) error {
	err := c.repo.BatchInsertEvents(ctx, batch)
	metrics.AddEventsStored(len(batch), err)
	if err != nil {
		c.logger.Error("failed to store events batch", zap.Int("count", len(batch)), zap.Error(err))
	}
	return err
}
