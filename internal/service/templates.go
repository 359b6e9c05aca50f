package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"SchedulerApp/internal/model"
)

// TemplateRepo определяет интерфейс библиотеки шаблонов
type TemplateRepo interface {
	List() []model.Template
	Get(id model.ID) (model.Template, error)
	Add(ctx context.Context, t model.Template) (model.Template, error)
	Update(ctx context.Context, id model.ID, t model.Template) (model.Template, error)
	Delete(ctx context.Context, id model.ID) error
}

// Форматы экспорта шаблонов
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// TemplateInput — данные для создания или правки шаблона
type TemplateInput struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Tasks       []string `json:"tasks" yaml:"tasks"`
}

// TemplateService реализует библиотеку шаблонов задач
type TemplateService struct {
	repo   TemplateRepo
	logger *zap.Logger
}

// NewTemplateService создаёт сервис шаблонов
func NewTemplateService(repo TemplateRepo, logger *zap.Logger) *TemplateService {
	return &TemplateService{repo: repo, logger: logger}
}

// List возвращает все шаблоны
func (s *TemplateService) List() []model.Template {
	return s.repo.List()
}

// Get возвращает шаблон по id
func (s *TemplateService) Get(id model.ID) (model.Template, error) {
	return s.repo.Get(id)
}

// Create создаёт шаблон; имя и хотя бы одна задача обязательны
func (s *TemplateService) Create(ctx context.Context, in TemplateInput) (model.Template, error) {
	tpl, err := model.NewTemplate(in.Name, in.Description, in.Tasks)
	if err != nil {
		return model.Template{}, err
	}
	return s.repo.Add(ctx, tpl)
}

// Update заменяет имя, описание и список задач шаблона
func (s *TemplateService) Update(ctx context.Context, id model.ID, in TemplateInput) (model.Template, error) {
	if _, err := s.repo.Get(id); err != nil {
		return model.Template{}, err
	}
	tpl, err := model.NewTemplate(in.Name, in.Description, in.Tasks)
	if err != nil {
		return model.Template{}, err
	}
	return s.repo.Update(ctx, id, tpl)
}

// Delete удаляет шаблон
func (s *TemplateService) Delete(ctx context.Context, id model.ID) error {
	return s.repo.Delete(ctx, id)
}

// Duplicate копирует шаблон под именем "<имя> (Copy)" с новыми id
func (s *TemplateService) Duplicate(ctx context.Context, id model.ID) (model.Template, error) {
	src, err := s.repo.Get(id)
	if err != nil {
		return model.Template{}, err
	}
	cp := src.Clone()
	cp.ID = model.NewID()
	cp.Name = src.Name + " (Copy)"
	for i := range cp.Tasks {
		cp.Tasks[i].ID = model.NewID()
	}
	return s.repo.Add(ctx, cp)
}

// Export сериализует библиотеку шаблонов (или один шаблон, если id задан) в JSON или YAML
func (s *TemplateService) Export(id model.ID, format string) ([]byte, error) {
	templates := s.repo.List()
	if id != "" {
		tpl, err := s.repo.Get(id)
		if err != nil {
			return nil, err
		}
		templates = []model.Template{tpl}
	}
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return json.MarshalIndent(templates, "", "  ")
	case FormatYAML, "yml":
		return yaml.Marshal(templates)
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", model.ErrValidation, format)
	}
}

// Import добавляет шаблоны из документа в формате Export с новыми id; возвращает число добавленных
func (s *TemplateService) Import(ctx context.Context, data []byte, format string) (int, error) {
	var in []model.Template
	var err error
	switch strings.ToLower(format) {
	case "", FormatJSON:
		err = json.Unmarshal(data, &in)
	case FormatYAML, "yml":
		err = yaml.Unmarshal(data, &in)
	default:
		return 0, fmt.Errorf("%w: unsupported import format %q", model.ErrValidation, format)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse templates: %v", model.ErrValidation, err)
	}
	// сначала проверяем весь документ, чтобы не импортировать его частично
	templates := make([]model.Template, 0, len(in))
	for i, t := range in {
		names := make([]string, len(t.Tasks))
		for j, task := range t.Tasks {
			names[j] = task.Name
		}
		tpl, err := model.NewTemplate(t.Name, t.Description, names)
		if err != nil {
			return 0, fmt.Errorf("template #%d: %w", i+1, err)
		}
		templates = append(templates, tpl)
	}
	for i, tpl := range templates {
		if _, err := s.repo.Add(ctx, tpl); err != nil {
			return i, err
		}
	}
	s.logger.Info("templates imported", zap.Int("count", len(templates)))
	return len(templates), nil
}
