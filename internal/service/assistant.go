package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"SchedulerApp/internal/model"
)

// Payload — проект, подготовленный ассистентом.
// Денежные поля могут прийти числами или строками, поэтому читаются через model.Amount
type Payload struct {
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Deadline         model.Date    `json:"deadline"`
	ProjectWorth     model.Amount  `json:"projectWorth"`
	ProfitPercentage model.Amount  `json:"profitPercentage"`
	MyProfit         model.Amount  `json:"myProfit"`
	Notes            string        `json:"notes"`
	Tasks            []PayloadTask `json:"tasks"`
}

// PayloadTask — задача в ответе ассистента: оплата и оценка расходов в деньгах
type PayloadTask struct {
	Name     string       `json:"name"`
	Deadline model.Date   `json:"deadline"`
	Payment  model.Amount `json:"payment"`
	Expenses model.Amount `json:"expenses"`
}

// ProjectCreator создаёт проект из проверенного ввода
type ProjectCreator interface {
	Create(ctx context.Context, in model.ProjectInput) (model.Project, error)
}

// AssistantService принимает готовый payload ассистента и превращает его в проект.
// Сетевых вызовов здесь нет, только преобразование и сохранение
type AssistantService struct {
	projects ProjectCreator
	logger   *zap.Logger
}

// NewAssistantService создаёт сервис приёма payload
func NewAssistantService(projects ProjectCreator, logger *zap.Logger) *AssistantService {
	return &AssistantService{projects: projects, logger: logger}
}

// CreateProjectFromPayload создаёт проект в режиме awarded:
// 1. totalBudget = projectWorth; myProfit берётся из payload или считается из процента
// 2. оплата задачи переводится в процент от myProfit (0, если прибыль нулевая), доля ограничивается 0..100
// 3. положительная оценка расходов становится одной статьёй "Estimated expenses"
// 4. задача без имени получает имя "Phase N"
func (s *AssistantService) CreateProjectFromPayload(ctx context.Context, payload Payload) (model.Project, error) {
	profit := float64(payload.MyProfit)
	if profit == 0 && payload.ProfitPercentage > 0 {
		profit = math.Round(float64(payload.ProjectWorth) * float64(payload.ProfitPercentage) / 100)
	}
	tasks := make([]model.Task, 0, len(payload.Tasks))
	for i, pt := range payload.Tasks {
		t := model.Task{
			ID:       model.NewID(),
			Name:     strings.TrimSpace(pt.Name),
			Deadline: pt.Deadline,
			Expenses: []model.Expense{},
		}
		if t.Name == "" {
			t.Name = fmt.Sprintf("Phase %d", i+1)
		}
		if profit > 0 {
			t.Percentage = float64(pt.Payment) * 100 / profit
		}
		if t.Percentage < 0 || t.Percentage > 100 {
			clamped := math.Min(math.Max(t.Percentage, 0), 100)
			s.logger.Warn("assistant task payment out of range, share clamped",
				zap.String("task", t.Name),
				zap.Float64("percentage", t.Percentage),
				zap.Float64("clamped", clamped))
			t.Percentage = clamped
		}
		if pt.Expenses > 0 {
			t.Expenses = append(t.Expenses, model.Expense{
				ID:          model.NewID(),
				Description: "Estimated expenses",
				Amount:      float64(pt.Expenses),
			})
		}
		tasks = append(tasks, t)
	}
	p, err := s.projects.Create(ctx, model.ProjectInput{
		Name:        payload.Name,
		Description: payload.Description,
		Deadline:    payload.Deadline,
		Mode:        model.ModeAwarded,
		TotalBudget: float64(payload.ProjectWorth),
		MyProfit:    profit,
		Notes:       payload.Notes,
		Tasks:       tasks,
	})
	if err != nil {
		return model.Project{}, err
	}
	s.logger.Info("project created from assistant payload",
		zap.String("project_id", p.ID.String()), zap.Int("tasks", len(tasks)))
	return p, nil
}

// DecodePayload разбирает payload ассистента из JSON
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: cannot parse assistant payload: %v", model.ErrValidation, err)
	}
	return p, nil
}
