package model

import (
	"fmt"
	"strings"
	"time"
)

// ProjectInput — данные для создания проекта
type ProjectInput struct {
	Name        string
	Description string
	Deadline    Date
	Mode        Mode
	TotalBudget float64
	MyProfit    float64
	Notes       string
	Tasks       []Task
}

// TaskInput — данные для создания задачи
type TaskInput struct {
	Name       string
	Deadline   Date
	Percentage float64
	Notes      string
	Expenses   []Expense
}

// NewProject проверяет ввод и собирает новый активный проект:
// 1. Имя обязательно
// 2. Назначает id и дату создания, статус active
// 3. Пустой список задач нормализуется в пустой срез
func NewProject(in ProjectInput, now time.Time) (Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Project{}, fmt.Errorf("%w: project name is required", ErrValidation)
	}
	mode := in.Mode
	if mode == "" {
		mode = ModeAwarded
	}
	if !mode.Valid() {
		return Project{}, fmt.Errorf("%w: unknown project mode %q", ErrValidation, in.Mode)
	}
	if in.TotalBudget < 0 || in.MyProfit < 0 {
		return Project{}, fmt.Errorf("%w: budget and profit must not be negative", ErrValidation)
	}
	tasks := make([]Task, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		if err := ValidateTask(t); err != nil {
			return Project{}, err
		}
		t = t.Clone()
		if t.ID == "" {
			t.ID = NewID()
		}
		tasks = append(tasks, t)
	}
	return Project{
		ID:          NewID(),
		Name:        name,
		Description: in.Description,
		Deadline:    in.Deadline,
		CreatedDate: now,
		ProjectMode: mode,
		Status:      StatusActive,
		TotalBudget: in.TotalBudget,
		MyProfit:    in.MyProfit,
		Notes:       in.Notes,
		SubTasks:    tasks,
	}, nil
}

// NewTask собирает новую задачу: не выполнена, не оплачена, без расходов
func NewTask(in TaskInput) (Task, error) {
	t := Task{
		ID:         NewID(),
		Name:       strings.TrimSpace(in.Name),
		Deadline:   in.Deadline,
		Percentage: in.Percentage,
		Notes:      in.Notes,
		Expenses:   []Expense{},
	}
	for _, e := range in.Expenses {
		if e.ID == "" {
			e.ID = NewID()
		}
		t.Expenses = append(t.Expenses, e)
	}
	if err := ValidateTask(t); err != nil {
		return Task{}, err
	}
	return t, nil
}

// NewExpense собирает статью расходов; описание обязательно
func NewExpense(description string, amount float64) (Expense, error) {
	e := Expense{ID: NewID(), Description: strings.TrimSpace(description), Amount: amount}
	if e.Description == "" {
		return Expense{}, fmt.Errorf("%w: expense description is required", ErrValidation)
	}
	if err := ValidateExpense(e); err != nil {
		return Expense{}, err
	}
	return e, nil
}

// NewTemplate собирает шаблон: имя и хотя бы одна задача обязательны
func NewTemplate(name, description string, taskNames []string) (Template, error) {
	tpl := Template{
		ID:          NewID(),
		Name:        strings.TrimSpace(name),
		Description: description,
		Tasks:       make([]TemplateTask, 0, len(taskNames)),
	}
	for _, n := range taskNames {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		tpl.Tasks = append(tpl.Tasks, TemplateTask{ID: NewID(), Name: n})
	}
	if err := ValidateTemplate(tpl); err != nil {
		return Template{}, err
	}
	return tpl, nil
}

// ValidateTask проверяет инварианты задачи
func ValidateTask(t Task) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: task name is required", ErrValidation)
	}
	if t.Percentage < 0 || t.Percentage > 100 {
		return fmt.Errorf("%w: task percentage must be within 0..100, got %v", ErrValidation, t.Percentage)
	}
	for _, e := range t.Expenses {
		if err := ValidateExpense(e); err != nil {
			return err
		}
	}
	return nil
}

// ValidateExpense проверяет, что сумма неотрицательна
func ValidateExpense(e Expense) error {
	if e.Amount < 0 {
		return fmt.Errorf("%w: expense amount must not be negative", ErrValidation)
	}
	return nil
}

// ValidateTemplate проверяет имя и наличие задач
func ValidateTemplate(t Template) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: template name is required", ErrValidation)
	}
	if len(t.Tasks) == 0 {
		return fmt.Errorf("%w: template needs at least one task", ErrValidation)
	}
	return nil
}
