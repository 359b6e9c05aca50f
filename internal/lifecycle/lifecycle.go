// Пакет lifecycle содержит машину состояний проекта: active, completed, trash.
// Только функции этого пакета меняют поле Status проекта.
package lifecycle

import (
	"fmt"
	"time"

	"SchedulerApp/internal/model"
)

// Action — операция жизненного цикла
type Action string

const (
	ActionMarkComplete         Action = "markComplete"
	ActionRestoreFromCompleted Action = "restoreFromCompleted"
	ActionSoftDelete           Action = "softDelete"
	ActionRestoreFromTrash     Action = "restoreFromTrash"
	ActionPurge                Action = "purge"
)

// allowed задаёт допустимые исходные статусы для каждой операции
var allowed = map[Action][]model.Status{
	ActionMarkComplete:         {model.StatusActive},
	ActionRestoreFromCompleted: {model.StatusCompleted},
	ActionSoftDelete:           {model.StatusActive, model.StatusCompleted},
	ActionRestoreFromTrash:     {model.StatusTrash},
	ActionPurge:                {model.StatusTrash},
}

// Allowed сообщает, допустима ли операция из статуса from
func Allowed(action Action, from model.Status) bool {
	for _, s := range allowed[action] {
		if s == from {
			return true
		}
	}
	return false
}

func checkFrom(p *model.Project, action Action) error {
	if !Allowed(action, p.Status) {
		return fmt.Errorf("%w: %s is not allowed from status %q", model.ErrInvalidTransition, action, p.Status)
	}
	return nil
}

// MarkComplete переводит active → completed.
// Разрешено, только если все задачи выполнены; иначе ErrPrecondition.
func MarkComplete(p *model.Project, now time.Time) error {
	if err := checkFrom(p, ActionMarkComplete); err != nil {
		return err
	}
	if open := OpenTasks(p); open > 0 {
		return fmt.Errorf("%w: %d of %d tasks are not completed", model.ErrPrecondition, open, len(p.SubTasks))
	}
	p.Status = model.StatusCompleted
	p.CompletedDate = &now
	return nil
}

// RestoreFromCompleted возвращает completed → active и очищает дату завершения
func RestoreFromCompleted(p *model.Project) error {
	if err := checkFrom(p, ActionRestoreFromCompleted); err != nil {
		return err
	}
	p.Status = model.StatusActive
	p.CompletedDate = nil
	return nil
}

// SoftDelete переносит проект в корзину. completedDate сохраняется,
// чтобы восстановление вернуло проект в прежнее состояние.
func SoftDelete(p *model.Project, now time.Time) error {
	if err := checkFrom(p, ActionSoftDelete); err != nil {
		return err
	}
	p.Status = model.StatusTrash
	p.DeletedDate = &now
	return nil
}

// RestoreFromTrash возвращает проект из корзины: в completed, если задана дата завершения, иначе в active
func RestoreFromTrash(p *model.Project) error {
	if err := checkFrom(p, ActionRestoreFromTrash); err != nil {
		return err
	}
	if p.CompletedDate != nil {
		p.Status = model.StatusCompleted
	} else {
		p.Status = model.StatusActive
	}
	p.DeletedDate = nil
	return nil
}

// CheckPurge проверяет, что проект можно удалить навсегда (только из корзины)
func CheckPurge(p *model.Project) error {
	return checkFrom(p, ActionPurge)
}

// OpenTasks возвращает количество невыполненных задач
func OpenTasks(p *model.Project) int {
	n := 0
	for _, t := range p.SubTasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// CanComplete сообщает, пройдёт ли MarkComplete для проекта
func CanComplete(p *model.Project) bool {
	return Allowed(ActionMarkComplete, p.Status) && OpenTasks(p) == 0
}

// Validate проверяет инварианты статуса: trash требует deletedDate, completed требует completedDate
func Validate(p *model.Project) error {
	switch p.Status {
	case model.StatusActive:
		if p.DeletedDate != nil {
			return fmt.Errorf("%w: active project has deletedDate", model.ErrValidation)
		}
	case model.StatusCompleted:
		if p.CompletedDate == nil {
			return fmt.Errorf("%w: completed project has no completedDate", model.ErrValidation)
		}
		if p.DeletedDate != nil {
			return fmt.Errorf("%w: completed project has deletedDate", model.ErrValidation)
		}
	case model.StatusTrash:
		if p.DeletedDate == nil {
			return fmt.Errorf("%w: trashed project has no deletedDate", model.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", model.ErrValidation, p.Status)
	}
	return nil
}
