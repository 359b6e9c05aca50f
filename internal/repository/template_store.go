package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"SchedulerApp/internal/model"
	"SchedulerApp/pkg/kvstore"
)

// TemplateStore хранит библиотеку шаблонов задач под ключом taskTemplates.
// Устроен так же, как ProjectStore: запись в хранилище до изменения памяти, копии на чтение.
type TemplateStore struct {
	mu        sync.RWMutex
	store     kvstore.Store
	logger    *zap.Logger
	templates []model.Template
}

// NewTemplateStore загружает библиотеку шаблонов
func NewTemplateStore(ctx context.Context, store kvstore.Store, logger *zap.Logger) (*TemplateStore, error) {
	templates, _, err := loadDocument[[]model.Template](ctx, store, logger, KeyTaskTemplates)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []model.Template{}
	}
	return &TemplateStore{store: store, logger: logger, templates: templates}, nil
}

// List возвращает копии всех шаблонов
func (s *TemplateStore) List() []model.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Template, len(s.templates))
	for i, t := range s.templates {
		out[i] = t.Clone()
	}
	return out
}

// Get возвращает копию шаблона по id
func (s *TemplateStore) Get(id model.ID) (model.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Template{}, fmt.Errorf("%w: template %s", model.ErrNotFound, id)
	}
	return s.templates[i].Clone(), nil
}

// Add добавляет шаблон
func (s *TemplateStore) Add(ctx context.Context, t model.Template) (model.Template, error) {
	if err := model.ValidateTemplate(t); err != nil {
		return model.Template{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(t.ID) >= 0 {
		return model.Template{}, fmt.Errorf("%w: template %s already exists", model.ErrValidation, t.ID)
	}
	next := make([]model.Template, len(s.templates), len(s.templates)+1)
	copy(next, s.templates)
	next = append(next, t.Clone())
	if err := s.commit(ctx, next); err != nil {
		return model.Template{}, err
	}
	return t.Clone(), nil
}

// Update заменяет шаблон целиком
func (s *TemplateStore) Update(ctx context.Context, id model.ID, t model.Template) (model.Template, error) {
	if err := model.ValidateTemplate(t); err != nil {
		return model.Template{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Template{}, fmt.Errorf("%w: template %s", model.ErrNotFound, id)
	}
	t.ID = id
	next := make([]model.Template, len(s.templates))
	copy(next, s.templates)
	next[i] = t.Clone()
	if err := s.commit(ctx, next); err != nil {
		return model.Template{}, err
	}
	return t.Clone(), nil
}

// Delete удаляет шаблон
func (s *TemplateStore) Delete(ctx context.Context, id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: template %s", model.ErrNotFound, id)
	}
	next := make([]model.Template, 0, len(s.templates)-1)
	next = append(next, s.templates[:i]...)
	next = append(next, s.templates[i+1:]...)
	return s.commit(ctx, next)
}

func (s *TemplateStore) commit(ctx context.Context, next []model.Template) error {
	if err := saveDocument(ctx, s.store, KeyTaskTemplates, next); err != nil {
		s.logger.Error("failed to persist templates", zap.Error(err))
		return err
	}
	s.templates = next
	return nil
}

func (s *TemplateStore) indexOf(id model.ID) int {
	for i := range s.templates {
		if s.templates[i].ID == id {
			return i
		}
	}
	return -1
}

// FindByName ищет шаблон по имени без учёта регистра
func (s *TemplateStore) FindByName(name string) (model.Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.templates {
		if strings.EqualFold(strings.TrimSpace(t.Name), strings.TrimSpace(name)) {
			return t.Clone(), true
		}
	}
	return model.Template{}, false
}
