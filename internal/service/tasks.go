package service

import (
	"context"
	"fmt"
	"strings"

	"SchedulerApp/internal/model"
)

// TaskPatch — частичная правка задачи; nil-поля не меняются
type TaskPatch struct {
	Name       *string     `json:"name"`
	Deadline   *model.Date `json:"deadline"`
	Percentage *float64    `json:"percentage"`
	Notes      *string     `json:"notes"`
}

// AddTask добавляет задачу в конец списка
func (s *ProjectService) AddTask(ctx context.Context, projectID model.ID, in model.TaskInput) (model.Task, error) {
	task, err := model.NewTask(in)
	if err != nil {
		return model.Task{}, err
	}
	_, err = s.edit(ctx, projectID, func(p *model.Project) error {
		if err := requireOpen(p); err != nil {
			return err
		}
		p.SubTasks = append(p.SubTasks, task)
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// UpdateTask меняет имя, срок, процент и заметки задачи
func (s *ProjectService) UpdateTask(ctx context.Context, projectID, taskID model.ID, patch TaskPatch) (model.Task, error) {
	return s.editTask(ctx, projectID, taskID, func(t *model.Task) error {
		if patch.Name != nil {
			t.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Deadline != nil {
			t.Deadline = *patch.Deadline
		}
		if patch.Percentage != nil {
			t.Percentage = *patch.Percentage
		}
		if patch.Notes != nil {
			t.Notes = *patch.Notes
		}
		return model.ValidateTask(*t)
	})
}

// ToggleTaskComplete переключает выполнение задачи, выставляя или сбрасывая completedDate.
// Снять выполнение у задачи завершённого проекта нельзя, сначала проект переоткрывается
func (s *ProjectService) ToggleTaskComplete(ctx context.Context, projectID, taskID model.ID) (model.Task, error) {
	var out model.Task
	_, err := s.edit(ctx, projectID, func(p *model.Project) error {
		i := p.FindTask(taskID)
		if i < 0 {
			return fmt.Errorf("%w: task %s", model.ErrNotFound, taskID)
		}
		t := &p.SubTasks[i]
		if t.Completed {
			if err := requireOpen(p); err != nil {
				return err
			}
			t.Completed = false
			t.CompletedDate = nil
		} else {
			now := s.now().UTC()
			t.Completed = true
			t.CompletedDate = &now
		}
		out = t.Clone()
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// ToggleTaskPayment переключает получение оплаты, выставляя или сбрасывая paymentReceivedDate
func (s *ProjectService) ToggleTaskPayment(ctx context.Context, projectID, taskID model.ID) (model.Task, error) {
	return s.editTask(ctx, projectID, taskID, func(t *model.Task) error {
		t.PaymentReceived = !t.PaymentReceived
		if t.PaymentReceived {
			now := s.now().UTC()
			t.PaymentReceivedDate = &now
		} else {
			t.PaymentReceivedDate = nil
		}
		return nil
	})
}

// RemoveTask удаляет задачу из проекта
func (s *ProjectService) RemoveTask(ctx context.Context, projectID, taskID model.ID) error {
	_, err := s.edit(ctx, projectID, func(p *model.Project) error {
		i := p.FindTask(taskID)
		if i < 0 {
			return fmt.Errorf("%w: task %s", model.ErrNotFound, taskID)
		}
		p.SubTasks = append(p.SubTasks[:i], p.SubTasks[i+1:]...)
		return nil
	})
	return err
}

// AddExpense добавляет статью расходов к задаче
func (s *ProjectService) AddExpense(ctx context.Context, projectID, taskID model.ID, description string, amount float64) (model.Expense, error) {
	e, err := model.NewExpense(description, amount)
	if err != nil {
		return model.Expense{}, err
	}
	_, err = s.editTask(ctx, projectID, taskID, func(t *model.Task) error {
		t.Expenses = append(t.Expenses, e)
		return nil
	})
	if err != nil {
		return model.Expense{}, err
	}
	return e, nil
}

// RemoveExpense удаляет статью расходов задачи
func (s *ProjectService) RemoveExpense(ctx context.Context, projectID, taskID, expenseID model.ID) error {
	_, err := s.editTask(ctx, projectID, taskID, func(t *model.Task) error {
		for i := range t.Expenses {
			if t.Expenses[i].ID == expenseID {
				t.Expenses = append(t.Expenses[:i], t.Expenses[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: expense %s", model.ErrNotFound, expenseID)
	})
	return err
}

// UpdateNotes заменяет заметки проекта
func (s *ProjectService) UpdateNotes(ctx context.Context, projectID model.ID, notes string) (model.Project, error) {
	return s.edit(ctx, projectID, func(p *model.Project) error {
		p.Notes = notes
		return nil
	})
}

func (s *ProjectService) editTask(ctx context.Context, projectID, taskID model.ID, fn func(*model.Task) error) (model.Task, error) {
	var out model.Task
	_, err := s.edit(ctx, projectID, func(p *model.Project) error {
		i := p.FindTask(taskID)
		if i < 0 {
			return fmt.Errorf("%w: task %s", model.ErrNotFound, taskID)
		}
		if err := fn(&p.SubTasks[i]); err != nil {
			return err
		}
		out = p.SubTasks[i].Clone()
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return out, nil
}
