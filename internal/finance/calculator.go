// Пакет finance содержит чистые функции расчёта оплат, расходов, прибыли и прогресса проекта.
// Функции не имеют побочных эффектов и не обращаются к хранилищу.
package finance

import (
	"math"

	"SchedulerApp/internal/model"
)

// roundHalfUp округляет до целого, половины вверх (валюта не делится на дробные единицы)
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// TaskPayment считает оплату за задачу: 0 для study, иначе round(myProfit * percentage / 100)
func TaskPayment(p model.Project, t model.Task) float64 {
	if p.ProjectMode != model.ModeAwarded {
		return 0
	}
	return roundHalfUp(p.MyProfit * t.Percentage / 100)
}

// TaskExpenseTotal суммирует расходы задачи
func TaskExpenseTotal(t model.Task) float64 {
	var sum float64
	for _, e := range t.Expenses {
		sum += e.Amount
	}
	return sum
}

// TaskNetProfit возвращает оплату за задачу минус её расходы
func TaskNetProfit(p model.Project, t model.Task) float64 {
	return TaskPayment(p, t) - TaskExpenseTotal(t)
}

// ProjectPaidAmount суммирует оплаты по задачам с полученной оплатой
func ProjectPaidAmount(p model.Project) float64 {
	var sum float64
	for _, t := range p.SubTasks {
		if t.PaymentReceived {
			sum += TaskPayment(p, t)
		}
	}
	return sum
}

// ProjectTotalRevenue суммирует оплаты по всем задачам
func ProjectTotalRevenue(p model.Project) float64 {
	var sum float64
	for _, t := range p.SubTasks {
		sum += TaskPayment(p, t)
	}
	return sum
}

// ProjectTotalExpenses суммирует расходы по всем задачам
func ProjectTotalExpenses(p model.Project) float64 {
	var sum float64
	for _, t := range p.SubTasks {
		sum += TaskExpenseTotal(t)
	}
	return sum
}

// ProjectNetProfit: выручка минус расходы
func ProjectNetProfit(p model.Project) float64 {
	return ProjectTotalRevenue(p) - ProjectTotalExpenses(p)
}

// ProjectPendingAmount возвращает ещё не полученную часть выручки
func ProjectPendingAmount(p model.Project) float64 {
	return ProjectTotalRevenue(p) - ProjectPaidAmount(p)
}

// PercentageTotal суммирует проценты задач; ядро её только показывает, не ограничивает
func PercentageTotal(p model.Project) float64 {
	var sum float64
	for _, t := range p.SubTasks {
		sum += t.Percentage
	}
	return sum
}

// ProgressPercent возвращает долю выполненных задач в процентах; 0 для проекта без задач
func ProgressPercent(p model.Project) int {
	if len(p.SubTasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range p.SubTasks {
		if t.Completed {
			done++
		}
	}
	return int(roundHalfUp(100 * float64(done) / float64(len(p.SubTasks))))
}

// DaysRemaining считает число дней от today до date; отрицательное значение означает просрочку
func DaysRemaining(date, today model.Date) int {
	return today.DaysUntil(date)
}
