package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"SchedulerApp/internal/model"
)

// mockRepo реализует интерфейс Repo и сохраняет полученные события для проверки
type mockRepo struct {
	mu       sync.Mutex
	received [][]model.Event // полученные батчи событий
	err      error           // ошибка, которую вернет BatchInsertEvents
}

func (m *mockRepo) BatchInsertEvents(ctx context.Context, events []model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copyBatch := make([]model.Event, len(events))
	copy(copyBatch, events)
	m.received = append(m.received, copyBatch)
	return m.err
}

func (m *mockRepo) batches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.received)
}

func eventData(i int) []byte {
	data, _ := json.Marshal(model.Event{
		Type:       model.EventProjectUpdated,
		ProjectID:  model.ID(fmt.Sprintf("p%d", i)),
		Name:       "name",
		Status:     model.StatusActive,
		OccurredAt: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	})
	return data
}

func TestHandleMessage_NoFlush(t *testing.T) {
	// при количестве событий меньше batchSize нет записи в репозиторий
	repo := &mockRepo{}
	cons := NewConsumer(repo, 3, zap.NewNop())

	require.NoError(t, cons.HandleMessage(context.Background(), eventData(1)))
	require.Len(t, repo.received, 0)
	require.Equal(t, 1, cons.Pending())
}

func TestHandleMessage_FlushOnBatch(t *testing.T) {
	// при достижении batchSize события отправляются репозиторию
	repo := &mockRepo{}
	cons := NewConsumer(repo, 2, zap.NewNop())

	for i := 1; i <= 2; i++ {
		require.NoError(t, cons.HandleMessage(context.Background(), eventData(i)))
	}
	require.Len(t, repo.received, 1)
	require.Len(t, repo.received[0], 2)
	require.Equal(t, model.ID("p1"), repo.received[0][0].ProjectID)
	require.Equal(t, model.ID("p2"), repo.received[0][1].ProjectID)
	require.Equal(t, 0, cons.Pending())
}

func TestFlush_Empty(t *testing.T) {
	// Flush ничего не делает, если буфер пуст
	repo := &mockRepo{}
	cons := NewConsumer(repo, 5, zap.NewNop())
	require.NoError(t, cons.Flush(context.Background()))
	require.Len(t, repo.received, 0)
}

func TestFlush_NonEmpty(t *testing.T) {
	// Flush отправляет накопленные события
	repo := &mockRepo{}
	cons := NewConsumer(repo, 5, zap.NewNop())

	for i := 1; i <= 3; i++ {
		require.NoError(t, cons.HandleMessage(context.Background(), eventData(i)))
	}
	require.Len(t, repo.received, 0)

	require.NoError(t, cons.Flush(context.Background()))
	require.Len(t, repo.received, 1)
	require.Len(t, repo.received[0], 3)
}

func TestHandleMessage_ParseError(t *testing.T) {
	// некорректный JSON и событие без обязательных полей отклоняются
	repo := &mockRepo{}
	cons := NewConsumer(repo, 1, zap.NewNop())
	require.Error(t, cons.HandleMessage(context.Background(), []byte("not json")))
	err := cons.HandleMessage(context.Background(), []byte(`{"type":"project.created"}`))
	require.ErrorIs(t, err, model.ErrValidation)
	require.Len(t, repo.received, 0)
}

func TestBatchInsertError_IsPropagated(t *testing.T) {
	// ошибка из репозитория возвращается при достижении batchSize
	ex := errors.New("insert failed")
	repo := &mockRepo{err: ex}
	cons := NewConsumer(repo, 1, zap.NewNop())
	err := cons.HandleMessage(context.Background(), eventData(9))
	require.ErrorIs(t, err, ex)
}

func TestRun_PeriodicFlush(t *testing.T) {
	// Run сбрасывает неполный пакет по таймеру и завершается при отмене контекста
	repo := &mockRepo{}
	cons := NewConsumer(repo, 100, zap.NewNop())
	require.NoError(t, cons.HandleMessage(context.Background(), eventData(1)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cons.Run(ctx, 10*time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool { return repo.batches() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
