// Пакет template генерирует список задач с равномерно распределёнными сроками и долями оплаты:
// либо по количеству задач, либо по именованному шаблону.
package template

import (
	"fmt"

	"SchedulerApp/internal/model"
)

const (
	// MinTasks и MaxTasks ограничивают автогенерацию по количеству
	MinTasks = 1
	MaxTasks = 20
)

// Plan — входные данные распределения
type Plan struct {
	Deadline model.Date
	Mode     model.Mode
	Names    []string
}

// Start возвращает условную дату начала проекта: срок минус один год.
// Реальное начало в этом сценарии неизвестно, поэтому по умолчанию берётся окно в год.
func Start(deadline model.Date) model.Date {
	return deadline.SubtractYear()
}

// Interval возвращает шаг между сроками задач в днях: floor(длительность / count)
func Interval(deadline model.Date, count int) int {
	start := Start(deadline)
	return start.DaysUntil(deadline) / count
}

// PercentagePerTask возвращает floor(100 / count) для awarded и 0 для study.
// Остаток (например 1% при трёх задачах) намеренно не распределяется.
func PercentagePerTask(mode model.Mode, count int) float64 {
	if mode != model.ModeAwarded || count <= 0 {
		return 0
	}
	return float64(100 / count)
}

// Distribute строит задачи: i-я задача получает срок start + interval*(i+1).
// Последний срок может оказаться раньше срока проекта, если длительность не делится нацело.
func Distribute(plan Plan) ([]model.Task, error) {
	count := len(plan.Names)
	if count == 0 {
		return nil, fmt.Errorf("%w: at least one task is required", model.ErrValidation)
	}
	if plan.Deadline.IsZero() {
		return nil, fmt.Errorf("%w: project deadline is required to distribute tasks", model.ErrValidation)
	}
	start := Start(plan.Deadline)
	interval := Interval(plan.Deadline, count)
	pct := PercentagePerTask(plan.Mode, count)

	tasks := make([]model.Task, 0, count)
	for i, name := range plan.Names {
		tasks = append(tasks, model.Task{
			ID:         model.NewID(),
			Name:       name,
			Deadline:   start.AddDays(interval * (i + 1)),
			Percentage: pct,
			Expenses:   []model.Expense{},
		})
	}
	return tasks, nil
}

// Generate создаёт count задач с именами "Phase N"; count должен быть в диапазоне 1..20
func Generate(deadline model.Date, mode model.Mode, count int) ([]model.Task, error) {
	if count < MinTasks || count > MaxTasks {
		return nil, fmt.Errorf("%w: task count must be within %d..%d, got %d", model.ErrValidation, MinTasks, MaxTasks, count)
	}
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("Phase %d", i+1)
	}
	return Distribute(Plan{Deadline: deadline, Mode: mode, Names: names})
}

// Instantiate применяет шаблон к сроку проекта, копируя названия задач по порядку.
// Шаблон не изменяется.
func Instantiate(tpl model.Template, deadline model.Date, mode model.Mode) ([]model.Task, error) {
	names := make([]string, len(tpl.Tasks))
	for i, t := range tpl.Tasks {
		names[i] = t.Name
	}
	return Distribute(Plan{Deadline: deadline, Mode: mode, Names: names})
}
