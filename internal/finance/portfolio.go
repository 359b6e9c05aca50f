package finance

import (
	"sort"

	"SchedulerApp/internal/model"
)

// DefaultReminderWindow — за сколько дней до срока проект попадает в напоминания
const DefaultReminderWindow = 7

// Summary — производные показатели одного проекта
type Summary struct {
	ProjectID       model.ID `json:"projectId"`
	Progress        int      `json:"progress"`
	Revenue         float64  `json:"revenue"`
	Paid            float64  `json:"paid"`
	Pending         float64  `json:"pending"`
	Expenses        float64  `json:"expenses"`
	NetProfit       float64  `json:"netProfit"`
	PercentageTotal float64  `json:"percentageTotal"`
	DaysRemaining   int      `json:"daysRemaining"`
	Deadline        string   `json:"deadlineState"`
}

// Summarize считает все показатели проекта на дату today
func Summarize(p model.Project, today model.Date) Summary {
	return Summary{
		ProjectID:       p.ID,
		Progress:        ProgressPercent(p),
		Revenue:         ProjectTotalRevenue(p),
		Paid:            ProjectPaidAmount(p),
		Pending:         ProjectPendingAmount(p),
		Expenses:        ProjectTotalExpenses(p),
		NetProfit:       ProjectNetProfit(p),
		PercentageTotal: PercentageTotal(p),
		DaysRemaining:   DaysRemaining(p.Deadline, today),
		Deadline:        string(DeadlineState(p.Deadline, p.Status == model.StatusCompleted, today)),
	}
}

// Totals — сумма показателей по набору проектов
type Totals struct {
	Count     int     `json:"count"`
	Revenue   float64 `json:"revenue"`
	Paid      float64 `json:"paid"`
	Expenses  float64 `json:"expenses"`
	NetProfit float64 `json:"netProfit"`
}

// Portfolio суммирует показатели проектов с указанным статусом
func Portfolio(projects []model.Project, status model.Status) Totals {
	var t Totals
	for _, p := range projects {
		if p.Status != status {
			continue
		}
		t.Count++
		t.Revenue += ProjectTotalRevenue(p)
		t.Paid += ProjectPaidAmount(p)
		t.Expenses += ProjectTotalExpenses(p)
		t.NetProfit += ProjectNetProfit(p)
	}
	return t
}

// State — положение срока относительно сегодняшнего дня
type State string

const (
	StateDone    State = "done"
	StateOverdue State = "overdue"
	StateDueSoon State = "due_soon"
	StateOnTrack State = "on_track"
)

// DeadlineState классифицирует срок: выполнено, просрочено, меньше недели, в графике.
// Проект без срока считается идущим в графике
func DeadlineState(deadline model.Date, completed bool, today model.Date) State {
	if completed {
		return StateDone
	}
	if deadline.IsZero() {
		return StateOnTrack
	}
	days := DaysRemaining(deadline, today)
	switch {
	case days < 0:
		return StateOverdue
	case days <= DefaultReminderWindow:
		return StateDueSoon
	default:
		return StateOnTrack
	}
}

// Reminder — напоминание о приближающемся сроке проекта
type Reminder struct {
	ProjectID model.ID `json:"projectId"`
	Name      string   `json:"name"`
	DaysLeft  int      `json:"daysLeft"`
}

// Reminders возвращает проекты, до срока которых осталось от 0 до window дней, ближайшие первыми
func Reminders(projects []model.Project, today model.Date, window int) []Reminder {
	out := []Reminder{}
	for _, p := range projects {
		if p.Deadline.IsZero() {
			continue
		}
		days := DaysRemaining(p.Deadline, today)
		if days >= 0 && days <= window {
			out = append(out, Reminder{ProjectID: p.ID, Name: p.Name, DaysLeft: days})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	return out
}

// Filter — фильтр списка проектов на панели
type Filter string

const (
	FilterAll      Filter = "all"
	FilterOverdue  Filter = "overdue"
	FilterUpcoming Filter = "upcoming"
)

// FilterProjects отбирает просроченные или приближающиеся к сроку проекты.
// Проекты без срока попадают только в all
func FilterProjects(projects []model.Project, filter Filter, today model.Date) []model.Project {
	out := []model.Project{}
	for _, p := range projects {
		days := DaysRemaining(p.Deadline, today)
		dated := !p.Deadline.IsZero()
		switch filter {
		case FilterOverdue:
			if dated && days < 0 {
				out = append(out, p)
			}
		case FilterUpcoming:
			if dated && days >= 0 && days <= DefaultReminderWindow {
				out = append(out, p)
			}
		default:
			out = append(out, p)
		}
	}
	return out
}

// ProjectsOnDay возвращает проекты, период которых (от даты создания до срока) включает day
func ProjectsOnDay(projects []model.Project, day model.Date) []model.Project {
	out := []model.Project{}
	for _, p := range projects {
		start := model.DateOf(p.CreatedDate)
		if p.CreatedDate.IsZero() {
			start = day
		}
		if day.Before(start) || day.After(p.Deadline) {
			continue
		}
		out = append(out, p)
	}
	return out
}
