// Пакет report формирует выгрузки: книгу Excel по портфелю проектов и PDF-выписку по проекту
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"SchedulerApp/internal/finance"
	"SchedulerApp/internal/model"
)

const (
	summarySheet = "Summary"
	projectSheet = "Projects"
	taskSheet    = "Tasks"
)

// Workbook собирает книгу Excel: сводку по статусам, список проектов и список задач
type Workbook struct{}

// NewWorkbook создаёт генератор книги
func NewWorkbook() *Workbook {
	return &Workbook{}
}

// Generate формирует xlsx по проектам на дату today
func (g *Workbook) Generate(projects []model.Project, today model.Date) ([]byte, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, projects, today)

	if _, err := file.NewSheet(projectSheet); err != nil {
		return nil, err
	}
	g.writeProjects(file, projects, today)

	if _, err := file.NewSheet(taskSheet); err != nil {
		return nil, err
	}
	g.writeTasks(file, projects)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Workbook) writeSummary(file *excelize.File, projects []model.Project, today model.Date) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}
	set("A1", "Portfolio report")
	set("B1", today.String())
	headers := []string{"Status", "Projects", "Revenue", "Paid", "Expenses", "Net profit"}
	writeRow(file, summarySheet, 3, headers)
	for i, status := range []model.Status{model.StatusActive, model.StatusCompleted} {
		t := finance.Portfolio(projects, status)
		writeRow(file, summarySheet, 4+i, []interface{}{string(status), t.Count, t.Revenue, t.Paid, t.Expenses, t.NetProfit})
	}
	_ = file.SetColWidth(summarySheet, "A", "A", 18)
	_ = file.SetColWidth(summarySheet, "B", "F", 14)
}

func (g *Workbook) writeProjects(file *excelize.File, projects []model.Project, today model.Date) {
	headers := []string{"Name", "Status", "Mode", "Deadline", "Days left", "Progress %",
		"Budget", "My profit", "Revenue", "Paid", "Pending", "Expenses", "Net profit"}
	writeRow(file, projectSheet, 1, headers)
	row := 2
	for _, p := range projects {
		if p.Status == model.StatusTrash {
			continue
		}
		s := finance.Summarize(p, today)
		writeRow(file, projectSheet, row, []interface{}{
			p.Name, string(p.Status), string(p.ProjectMode), p.Deadline.String(), s.DaysRemaining, s.Progress,
			p.TotalBudget, p.MyProfit, s.Revenue, s.Paid, s.Pending, s.Expenses, s.NetProfit,
		})
		row++
	}
	_ = file.SetColWidth(projectSheet, "A", "A", 36)
	_ = file.SetColWidth(projectSheet, "B", "M", 13)
}

func (g *Workbook) writeTasks(file *excelize.File, projects []model.Project) {
	headers := []string{"Project", "Task", "Deadline", "Percentage", "Payment", "Completed", "Paid", "Expenses", "Net"}
	writeRow(file, taskSheet, 1, headers)
	row := 2
	for _, p := range projects {
		if p.Status == model.StatusTrash {
			continue
		}
		for _, t := range p.SubTasks {
			writeRow(file, taskSheet, row, []interface{}{
				p.Name, t.Name, t.Deadline.String(), t.Percentage, finance.TaskPayment(p, t),
				yesNo(t.Completed), yesNo(t.PaymentReceived), finance.TaskExpenseTotal(t), finance.TaskNetProfit(p, t),
			})
			row++
		}
	}
	_ = file.SetColWidth(taskSheet, "A", "B", 32)
	_ = file.SetColWidth(taskSheet, "C", "I", 12)
}

func writeRow[T any](file *excelize.File, sheet string, row int, values []T) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = file.SetCellValue(sheet, cell, v)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
