package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"SchedulerApp/internal/model"
	"SchedulerApp/pkg/kvstore"
)

// mockKV реализует kvstore.Store через функции-поля, по умолчанию делегируя MemoryStore
type mockKV struct {
	mem   *kvstore.MemoryStore
	GetFn func(ctx context.Context, key string) ([]byte, error)
	PutFn func(ctx context.Context, key string, value []byte) error
}

func newMockKV() *mockKV {
	return &mockKV{mem: kvstore.NewMemoryStore()}
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return m.mem.Get(ctx, key)
}

func (m *mockKV) Put(ctx context.Context, key string, value []byte) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, key, value)
	}
	return m.mem.Put(ctx, key, value)
}

func (m *mockKV) Delete(ctx context.Context, key string) error {
	return m.mem.Delete(ctx, key)
}

func newStore(t *testing.T, kv kvstore.Store) *ProjectStore {
	t.Helper()
	s, err := NewProjectStore(context.Background(), NewBlobPersistence(kv, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	return s
}

func sampleProject(id string, status model.Status) model.Project {
	p := model.Project{
		ID: model.ID(id), Name: "Project " + id, Status: status, ProjectMode: model.ModeAwarded,
		Deadline:    model.MustParseDate("2026-12-31"),
		CreatedDate: time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
		SubTasks: []model.Task{{ID: model.ID(id + "-t1"), Name: "Design", Percentage: 50,
			Expenses: []model.Expense{{ID: "e1", Description: "paper", Amount: 12}}}},
	}
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	if status == model.StatusCompleted {
		p.CompletedDate = &now
	}
	if status == model.StatusTrash {
		p.DeletedDate = &now
	}
	return p
}

// TestProjectStore_AddUpdateGet проверяет добавление, замену и чтение
func TestProjectStore_AddUpdateGet(t *testing.T) {
	ctx := context.Background()
	kv := newMockKV()
	s := newStore(t, kv)

	_, err := s.Add(ctx, sampleProject("a", model.StatusActive))
	require.NoError(t, err)
	_, err = s.Add(ctx, sampleProject("b", model.StatusCompleted))
	require.NoError(t, err)
	_, err = s.Add(ctx, sampleProject("a", model.StatusActive))
	assert.ErrorIs(t, err, model.ErrValidation)

	p, err := s.Get("a")
	require.NoError(t, err)
	p.Name = "Renamed"
	_, err = s.Update(ctx, "a", p)
	require.NoError(t, err)

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Len(t, s.List(), 2)
	assert.Len(t, s.ListByStatus(model.StatusActive), 1)
	assert.Equal(t, map[model.Status]int{model.StatusActive: 1, model.StatusCompleted: 1, model.StatusTrash: 0}, s.Counts())

	// новое хранилище поверх тех же данных видит те же проекты
	reloaded := newStore(t, kv)
	assert.Equal(t, s.List(), reloaded.List())
}

// TestProjectStore_UpdateUnknown: замена несуществующего проекта возвращает ErrNotFound
func TestProjectStore_UpdateUnknown(t *testing.T) {
	s := newStore(t, newMockKV())
	_, err := s.Update(context.Background(), "ghost", sampleProject("ghost", model.StatusActive))
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Get("ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

// TestProjectStore_Remove: окончательное удаление только из корзины
func TestProjectStore_Remove(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, newMockKV())
	_, err := s.Add(ctx, sampleProject("a", model.StatusActive))
	require.NoError(t, err)
	_, err = s.Add(ctx, sampleProject("t", model.StatusTrash))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Remove(ctx, "a"), model.ErrInvalidTransition)
	assert.ErrorIs(t, s.Remove(ctx, "missing"), model.ErrNotFound)
	require.NoError(t, s.Remove(ctx, "t"))

	for _, status := range []model.Status{model.StatusActive, model.StatusCompleted, model.StatusTrash} {
		for _, p := range s.ListByStatus(status) {
			assert.NotEqual(t, model.ID("t"), p.ID)
		}
	}
}

// TestProjectStore_FailedSaveKeepsMemory: ошибка записи оставляет коллекцию прежней
func TestProjectStore_FailedSaveKeepsMemory(t *testing.T) {
	ctx := context.Background()
	kv := newMockKV()
	s := newStore(t, kv)
	_, err := s.Add(ctx, sampleProject("a", model.StatusActive))
	require.NoError(t, err)

	saveErr := errors.New("backend down")
	kv.PutFn = func(context.Context, string, []byte) error { return saveErr }

	_, err = s.Add(ctx, sampleProject("b", model.StatusActive))
	assert.ErrorIs(t, err, saveErr)
	p, _ := s.Get("a")
	p.Name = "changed"
	_, err = s.Update(ctx, "a", p)
	assert.ErrorIs(t, err, saveErr)

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Project a", list[0].Name)
}

// TestProjectStore_CopiesAreIndependent: изменения возвращённых копий не попадают в хранилище
func TestProjectStore_CopiesAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, newMockKV())
	in := sampleProject("a", model.StatusActive)
	_, err := s.Add(ctx, in)
	require.NoError(t, err)
	in.SubTasks[0].Name = "mutated input"

	got, _ := s.Get("a")
	got.SubTasks[0].Expenses[0].Amount = 999
	again, _ := s.Get("a")
	assert.Equal(t, "Design", again.SubTasks[0].Name)
	assert.Equal(t, 12.0, again.SubTasks[0].Expenses[0].Amount)
}

// TestBlobPersistence_Malformed: повреждённый блоб или не массив дают пустую коллекцию
func TestBlobPersistence_Malformed(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{`{not json`, `{"id":"x"}`, `"projects"`, `42`} {
		kv := newMockKV()
		require.NoError(t, kv.Put(ctx, KeyProjects, []byte(raw)))
		got, err := NewBlobPersistence(kv, zap.NewNop()).Load(ctx)
		require.NoError(t, err, raw)
		assert.NotNil(t, got)
		assert.Len(t, got, 0, raw)
	}

	// отсутствующий ключ
	got, err := NewBlobPersistence(newMockKV(), zap.NewNop()).Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 0)
}

// TestBlobPersistence_BackendError: ошибка хранилища прокидывается
func TestBlobPersistence_BackendError(t *testing.T) {
	kv := newMockKV()
	kv.GetFn = func(context.Context, string) ([]byte, error) { return nil, errors.New("timeout") }
	_, err := NewBlobPersistence(kv, zap.NewNop()).Load(context.Background())
	assert.Error(t, err)

	_, err = NewProjectStore(context.Background(), NewBlobPersistence(kv, zap.NewNop()), zap.NewNop())
	assert.Error(t, err)
}

// TestBlobPersistence_RoundTrip: сохранение и загрузка дают ту же коллекцию с порядком задач и расходов
func TestBlobPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newMockKV()
	bp := NewBlobPersistence(kv, zap.NewNop())
	projects := []model.Project{sampleProject("a", model.StatusCompleted), sampleProject("b", model.StatusTrash)}
	projects[0].SubTasks = append(projects[0].SubTasks, model.Task{ID: "x2", Name: "Build", Expenses: []model.Expense{
		{ID: "e2", Amount: 1}, {ID: "e3", Amount: 2},
	}})
	require.NoError(t, bp.Save(ctx, projects))
	got, err := bp.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, projects, got)
}
