package service

import (
	"fmt"

	"SchedulerApp/internal/finance"
	"SchedulerApp/internal/model"
)

// Dashboard — сводка для главной страницы
type Dashboard struct {
	Counts    map[model.Status]int `json:"counts"`
	Active    finance.Totals       `json:"active"`
	Completed finance.Totals       `json:"completed"`
	Reminders []finance.Reminder   `json:"reminders"`
	Projects  []ProjectView        `json:"projects"`
}

// ProjectView — проект вместе с производными показателями
type ProjectView struct {
	model.Project
	Summary finance.Summary `json:"summary"`
}

// Summary считает показатели одного проекта на сегодня
func (s *ProjectService) Summary(id model.ID) (finance.Summary, error) {
	p, err := s.store.Get(id)
	if err != nil {
		return finance.Summary{}, err
	}
	return finance.Summarize(p, s.Today()), nil
}

// Dashboard собирает сводку: счётчики, итоги портфеля, напоминания и активные проекты по фильтру
func (s *ProjectService) Dashboard(filter finance.Filter, window int) (Dashboard, error) {
	switch filter {
	case "":
		filter = finance.FilterAll
	case finance.FilterAll, finance.FilterOverdue, finance.FilterUpcoming:
	default:
		return Dashboard{}, fmt.Errorf("%w: unknown filter %q", model.ErrValidation, filter)
	}
	if window <= 0 {
		window = finance.DefaultReminderWindow
	}
	today := s.Today()
	all := s.store.List()
	active := s.store.ListByStatus(model.StatusActive)

	views := []ProjectView{}
	for _, p := range finance.FilterProjects(active, filter, today) {
		views = append(views, ProjectView{Project: p, Summary: finance.Summarize(p, today)})
	}
	return Dashboard{
		Counts:    s.store.Counts(),
		Active:    finance.Portfolio(all, model.StatusActive),
		Completed: finance.Portfolio(all, model.StatusCompleted),
		Reminders: finance.Reminders(active, today, window),
		Projects:  views,
	}, nil
}

// Calendar возвращает проекты (кроме корзины), период которых включает день
func (s *ProjectService) Calendar(day model.Date) []model.Project {
	out := []model.Project{}
	for _, p := range finance.ProjectsOnDay(s.store.List(), day) {
		if p.Status != model.StatusTrash {
			out = append(out, p)
		}
	}
	return out
}
