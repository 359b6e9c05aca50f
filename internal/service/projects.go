package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"SchedulerApp/internal/lifecycle"
	"SchedulerApp/internal/model"
	"SchedulerApp/internal/template"
	"SchedulerApp/pkg/metrics"
)

// Store определяет интерфейс хранилища проектов
// Изменения долговременны сразу после возврата без ошибки, чтения возвращают копии
type Store interface {
	Add(ctx context.Context, p model.Project) (model.Project, error)
	Update(ctx context.Context, id model.ID, p model.Project) (model.Project, error)
	Remove(ctx context.Context, id model.ID) error
	Get(id model.ID) (model.Project, error)
	List() []model.Project
	ListByStatus(status model.Status) []model.Project
	Counts() map[model.Status]int
}

// TemplateSource отдаёт шаблон по id для применения к проекту
type TemplateSource interface {
	Get(id model.ID) (model.Template, error)
}

// Publisher определяет интерфейс публикации событий журнала (NATS)
type Publisher interface {
	PublishJSON(v any) error
}

type nopPublisher struct{}

func (nopPublisher) PublishJSON(any) error { return nil }

// ProjectService реализует бизнес-логику проектов:
// - создание и полная замена проекта
// - переходы жизненного цикла через пакет lifecycle
// - правка задач, расходов и заметок
// - генерация задач и применение шаблонов
// - публикация событий в журнал
// Статус проекта меняется только здесь и только через lifecycle.
type ProjectService struct {
	store     Store
	templates TemplateSource
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewProjectService создаёт сервис проектов; publisher может быть nil, тогда события не публикуются
func NewProjectService(store Store, templates TemplateSource, publisher Publisher, logger *zap.Logger) *ProjectService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &ProjectService{store: store, templates: templates, publisher: publisher, logger: logger, now: time.Now}
}

// Today возвращает сегодняшнюю календарную дату по часам сервиса
func (s *ProjectService) Today() model.Date {
	return model.DateOf(s.now())
}

// Create проверяет ввод, собирает проект и сохраняет его
func (s *ProjectService) Create(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	p, err := model.NewProject(in, s.now().UTC())
	if err != nil {
		return model.Project{}, err
	}
	saved, err := s.store.Add(ctx, p)
	if err != nil {
		return model.Project{}, err
	}
	s.logger.Info("project created", zap.String("project_id", saved.ID.String()), zap.Int("tasks", len(saved.SubTasks)))
	s.publish(model.EventProjectCreated, saved)
	return saved, nil
}

// Get возвращает проект по id
func (s *ProjectService) Get(id model.ID) (model.Project, error) {
	return s.store.Get(id)
}

// List возвращает все проекты
func (s *ProjectService) List() []model.Project {
	return s.store.List()
}

// ListByStatus возвращает проекты с указанным статусом
func (s *ProjectService) ListByStatus(status model.Status) ([]model.Project, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, status)
	}
	return s.store.ListByStatus(status), nil
}

// Counts возвращает количество проектов по статусам
func (s *ProjectService) Counts() map[model.Status]int {
	return s.store.Counts()
}

// Update полностью заменяет редактируемые поля проекта:
// 1. Проект в корзине не редактируется, смена статуса запрещена (ErrInvalidTransition)
// 2. Дата создания и даты жизненного цикла берутся из сохранённой записи
// 3. Задачи проверяются, задачам без id назначается id
// 4. У завершённого проекта все задачи должны остаться выполненными
func (s *ProjectService) Update(ctx context.Context, id model.ID, p model.Project) (model.Project, error) {
	cur, err := s.store.Get(id)
	if err != nil {
		return model.Project{}, err
	}
	if cur.Status == model.StatusTrash {
		return model.Project{}, fmt.Errorf("%w: project %s is in trash, restore it before editing", model.ErrInvalidTransition, id)
	}
	if p.Status != "" && p.Status != cur.Status {
		return model.Project{}, fmt.Errorf("%w: status changes go through lifecycle actions (%s -> %s)",
			model.ErrInvalidTransition, cur.Status, p.Status)
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return model.Project{}, fmt.Errorf("%w: project name is required", model.ErrValidation)
	}
	if p.ProjectMode == "" {
		p.ProjectMode = cur.ProjectMode
	}
	if !p.ProjectMode.Valid() {
		return model.Project{}, fmt.Errorf("%w: unknown project mode %q", model.ErrValidation, p.ProjectMode)
	}
	if p.TotalBudget < 0 || p.MyProfit < 0 {
		return model.Project{}, fmt.Errorf("%w: budget and profit must not be negative", model.ErrValidation)
	}
	if p.SubTasks == nil {
		p.SubTasks = []model.Task{}
	}
	for i := range p.SubTasks {
		if err := model.ValidateTask(p.SubTasks[i]); err != nil {
			return model.Project{}, err
		}
		if p.SubTasks[i].ID == "" {
			p.SubTasks[i].ID = model.NewID()
		}
		if p.SubTasks[i].Expenses == nil {
			p.SubTasks[i].Expenses = []model.Expense{}
		}
		if !p.SubTasks[i].Completed {
			if err := requireOpen(&cur); err != nil {
				return model.Project{}, err
			}
		}
	}
	p.ID = cur.ID
	p.Status = cur.Status
	p.CreatedDate = cur.CreatedDate
	p.CompletedDate = cur.CompletedDate
	p.DeletedDate = cur.DeletedDate
	saved, err := s.store.Update(ctx, id, p)
	if err != nil {
		return model.Project{}, err
	}
	s.publish(model.EventProjectUpdated, saved)
	return saved, nil
}

// MarkComplete завершает активный проект, если все задачи выполнены
func (s *ProjectService) MarkComplete(ctx context.Context, id model.ID) (model.Project, error) {
	return s.transition(ctx, id, model.EventProjectCompleted, func(p *model.Project) error {
		return lifecycle.MarkComplete(p, s.now().UTC())
	})
}

// RestoreFromCompleted возвращает завершённый проект в работу
func (s *ProjectService) RestoreFromCompleted(ctx context.Context, id model.ID) (model.Project, error) {
	return s.transition(ctx, id, model.EventProjectReopened, lifecycle.RestoreFromCompleted)
}

// SoftDelete переносит проект в корзину
func (s *ProjectService) SoftDelete(ctx context.Context, id model.ID) (model.Project, error) {
	return s.transition(ctx, id, model.EventProjectTrashed, func(p *model.Project) error {
		return lifecycle.SoftDelete(p, s.now().UTC())
	})
}

// RestoreFromTrash восстанавливает проект из корзины в прежний статус
func (s *ProjectService) RestoreFromTrash(ctx context.Context, id model.ID) (model.Project, error) {
	return s.transition(ctx, id, model.EventProjectRestored, lifecycle.RestoreFromTrash)
}

// Purge окончательно удаляет проект из корзины
func (s *ProjectService) Purge(ctx context.Context, id model.ID) error {
	p, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if err := lifecycle.CheckPurge(&p); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project purged", zap.String("project_id", id.String()))
	s.publish(model.EventProjectPurged, p)
	return nil
}

// transition читает проект, применяет переход и сохраняет результат
func (s *ProjectService) transition(ctx context.Context, id model.ID, event model.EventType, fn func(*model.Project) error) (model.Project, error) {
	p, err := s.store.Get(id)
	if err != nil {
		return model.Project{}, err
	}
	from := p.Status
	if err := fn(&p); err != nil {
		return model.Project{}, err
	}
	saved, err := s.store.Update(ctx, id, p)
	if err != nil {
		return model.Project{}, err
	}
	s.logger.Info("project status changed",
		zap.String("project_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(saved.Status)))
	s.publish(event, saved)
	return saved, nil
}

// edit читает проект, применяет правку и сохраняет. Проекты в корзине не редактируются
func (s *ProjectService) edit(ctx context.Context, id model.ID, fn func(*model.Project) error) (model.Project, error) {
	p, err := s.store.Get(id)
	if err != nil {
		return model.Project{}, err
	}
	if p.Status == model.StatusTrash {
		return model.Project{}, fmt.Errorf("%w: project %s is in trash, restore it before editing", model.ErrInvalidTransition, id)
	}
	if err := fn(&p); err != nil {
		return model.Project{}, err
	}
	saved, err := s.store.Update(ctx, id, p)
	if err != nil {
		return model.Project{}, err
	}
	s.publish(model.EventProjectUpdated, saved)
	return saved, nil
}

// requireOpen запрещает невыполненные задачи у завершённого проекта
func requireOpen(p *model.Project) error {
	if p.Status == model.StatusCompleted {
		return fmt.Errorf("%w: project %s is completed, reopen it before adding open tasks", model.ErrInvalidTransition, p.ID)
	}
	return nil
}

// GenerateTasks заменяет задачи проекта на count равномерно распределённых этапов.
// Возвращает проект и количество заменённых задач
func (s *ProjectService) GenerateTasks(ctx context.Context, id model.ID, count int) (model.Project, int, error) {
	return s.replaceTasks(ctx, id, func(p *model.Project) ([]model.Task, error) {
		return template.Generate(p.Deadline, p.ProjectMode, count)
	})
}

// ApplyTemplate заменяет задачи проекта задачами шаблона; шаблон не изменяется
func (s *ProjectService) ApplyTemplate(ctx context.Context, id, templateID model.ID) (model.Project, int, error) {
	if s.templates == nil {
		return model.Project{}, 0, fmt.Errorf("%w: template %s", model.ErrNotFound, templateID)
	}
	tpl, err := s.templates.Get(templateID)
	if err != nil {
		return model.Project{}, 0, err
	}
	return s.replaceTasks(ctx, id, func(p *model.Project) ([]model.Task, error) {
		return template.Instantiate(tpl, p.Deadline, p.ProjectMode)
	})
}

func (s *ProjectService) replaceTasks(ctx context.Context, id model.ID, build func(*model.Project) ([]model.Task, error)) (model.Project, int, error) {
	p, err := s.store.Get(id)
	if err != nil {
		return model.Project{}, 0, err
	}
	if p.Status == model.StatusTrash {
		return model.Project{}, 0, fmt.Errorf("%w: project %s is in trash", model.ErrInvalidTransition, id)
	}
	if err := requireOpen(&p); err != nil {
		return model.Project{}, 0, err
	}
	tasks, err := build(&p)
	if err != nil {
		return model.Project{}, 0, err
	}
	replaced := len(p.SubTasks)
	p.SubTasks = tasks
	saved, err := s.store.Update(ctx, id, p)
	if err != nil {
		return model.Project{}, 0, err
	}
	if replaced > 0 {
		s.logger.Warn("project tasks replaced",
			zap.String("project_id", id.String()),
			zap.Int("replaced", replaced),
			zap.Int("created", len(tasks)))
	}
	s.publish(model.EventTasksReplaced, saved)
	return saved, replaced, nil
}

// publish отправляет событие в журнал; ошибка только логируется, изменение уже сохранено
func (s *ProjectService) publish(typ model.EventType, p model.Project) {
	err := s.publisher.PublishJSON(model.NewEvent(typ, p, s.now().UTC()))
	metrics.IncEventPublished(string(typ), err)
	if err != nil {
		s.logger.Warn("failed to publish project event",
			zap.String("type", string(typ)),
			zap.String("project_id", p.ID.String()),
			zap.Error(err))
	}
}
