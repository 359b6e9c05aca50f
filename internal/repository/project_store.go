package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"SchedulerApp/internal/model"
	"SchedulerApp/pkg/metrics"
)

// ProjectStore — единственная авторитетная коллекция проектов.
// Коллекция загружается один раз; каждое изменение сначала сохраняется через Persistence
// и только после успешной записи становится видимым. Чтения возвращают глубокие копии.
type ProjectStore struct {
	mu          sync.RWMutex
	persistence Persistence
	logger      *zap.Logger
	projects    []model.Project
}

// NewProjectStore загружает коллекцию и создаёт хранилище
func NewProjectStore(ctx context.Context, persistence Persistence, logger *zap.Logger) (*ProjectStore, error) {
	projects, err := persistence.Load(ctx)
	if err != nil {
		return nil, err
	}
	s := &ProjectStore{persistence: persistence, logger: logger, projects: projects}
	s.publishCounts()
	logger.Info("project store loaded", zap.Int("projects", len(projects)))
	return s, nil
}

// Add добавляет проект в конец коллекции
func (s *ProjectStore) Add(ctx context.Context, p model.Project) (model.Project, error) {
	if p.ID == "" {
		return model.Project{}, fmt.Errorf("%w: project id is required", model.ErrValidation)
	}
	if strings.TrimSpace(p.Name) == "" {
		return model.Project{}, fmt.Errorf("%w: project name is required", model.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(p.ID) >= 0 {
		return model.Project{}, fmt.Errorf("%w: project %s already exists", model.ErrValidation, p.ID)
	}
	next := s.snapshot(len(s.projects) + 1)
	next = append(next, p.Clone())
	if err := s.commit(ctx, next); err != nil {
		return model.Project{}, err
	}
	return p.Clone(), nil
}

// Update полностью заменяет проект с указанным id; для неизвестного id возвращает ErrNotFound
func (s *ProjectStore) Update(ctx context.Context, id model.ID, p model.Project) (model.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return model.Project{}, fmt.Errorf("%w: project name is required", model.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Project{}, fmt.Errorf("%w: project %s", model.ErrNotFound, id)
	}
	p.ID = id
	next := s.snapshot(len(s.projects))
	next[i] = p.Clone()
	if err := s.commit(ctx, next); err != nil {
		return model.Project{}, err
	}
	return p.Clone(), nil
}

// Remove окончательно удаляет проект; допустимо только из корзины
func (s *ProjectStore) Remove(ctx context.Context, id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: project %s", model.ErrNotFound, id)
	}
	if s.projects[i].Status != model.StatusTrash {
		return fmt.Errorf("%w: project %s is %s, only trashed projects can be purged",
			model.ErrInvalidTransition, id, s.projects[i].Status)
	}
	next := make([]model.Project, 0, len(s.projects)-1)
	next = append(next, s.projects[:i]...)
	next = append(next, s.projects[i+1:]...)
	return s.commit(ctx, next)
}

// Get возвращает копию проекта по id
func (s *ProjectStore) Get(id model.ID) (model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Project{}, fmt.Errorf("%w: project %s", model.ErrNotFound, id)
	}
	return s.projects[i].Clone(), nil
}

// List возвращает копии всех проектов в порядке добавления
func (s *ProjectStore) List() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out
}

// ListByStatus возвращает копии проектов с указанным статусом
func (s *ProjectStore) ListByStatus(status model.Status) []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Project{}
	for _, p := range s.projects {
		if p.Status == status {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Counts возвращает количество проектов по каждому статусу
func (s *ProjectStore) Counts() map[model.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts()
}

func (s *ProjectStore) counts() map[model.Status]int {
	counts := map[model.Status]int{
		model.StatusActive:    0,
		model.StatusCompleted: 0,
		model.StatusTrash:     0,
	}
	for _, p := range s.projects {
		counts[p.Status]++
	}
	return counts
}

// commit сохраняет новую коллекцию и только затем подменяет ею текущую; вызывается под s.mu
func (s *ProjectStore) commit(ctx context.Context, next []model.Project) error {
	if err := s.persistence.Save(ctx, next); err != nil {
		s.logger.Error("failed to persist projects", zap.Error(err))
		return err
	}
	s.projects = next
	s.publishCounts()
	return nil
}

// snapshot копирует срез верхнего уровня; проекты внутри не разделяются с вызывающим кодом
func (s *ProjectStore) snapshot(capacity int) []model.Project {
	next := make([]model.Project, len(s.projects), capacity)
	copy(next, s.projects)
	return next
}

func (s *ProjectStore) indexOf(id model.ID) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ProjectStore) publishCounts() {
	labels := make(map[string]int, 3)
	for status, n := range s.counts() {
		labels[string(status)] = n
	}
	metrics.SetProjectCounts(labels)
}
