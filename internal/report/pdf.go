package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"SchedulerApp/internal/finance"
	"SchedulerApp/internal/model"
)

// Statement формирует PDF-выписку по одному проекту: реквизиты, задачи, финансы
type Statement struct {
	company string
}

// NewStatement создаёт генератор; company печатается в шапке, если задана
func NewStatement(company string) *Statement {
	return &Statement{company: company}
}

// Generate формирует PDF по проекту на дату today
func (g *Statement) Generate(p model.Project, today model.Date) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	s := finance.Summarize(p, today)

	if g.company != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(g.company), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(p.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if strings.TrimSpace(p.Description) != "" {
		pdf.MultiCell(0, 5, tr(p.Description), "", "L", false)
	}
	pdf.Ln(2)

	lines := []string{
		fmt.Sprintf("Status: %s    Mode: %s", p.Status, p.ProjectMode),
		fmt.Sprintf("Deadline: %s (%d days)    Progress: %d%%", safeValue(p.Deadline.String()), s.DaysRemaining, s.Progress),
		fmt.Sprintf("Budget: %s    My profit: %s", formatAmount(p.TotalBudget), formatAmount(p.MyProfit)),
		fmt.Sprintf("Statement date: %s", today.String()),
	}
	for _, line := range lines {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	headers := []string{"Task", "Deadline", "%", "Payment", "Expenses", "Done", "Paid"}
	widths := []float64{60, 24, 14, 24, 24, 17, 17}
	drawTableRow(pdf, headers, widths, true)
	for _, t := range p.SubTasks {
		drawTableRow(pdf, []string{
			tr(truncate(t.Name, 34)),
			safeValue(t.Deadline.String()),
			fmt.Sprintf("%.0f", t.Percentage),
			formatAmount(finance.TaskPayment(p, t)),
			formatAmount(finance.TaskExpenseTotal(t)),
			yesNo(t.Completed),
			yesNo(t.PaymentReceived),
		}, widths, false)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	totals := []string{
		fmt.Sprintf("Revenue: %s", formatAmount(s.Revenue)),
		fmt.Sprintf("Received: %s    Pending: %s", formatAmount(s.Paid), formatAmount(s.Pending)),
		fmt.Sprintf("Expenses: %s", formatAmount(s.Expenses)),
		fmt.Sprintf("Net profit: %s", formatAmount(s.NetProfit)),
	}
	for _, line := range totals {
		pdf.CellFormat(0, 6, line, "", 1, "R", false, 0, "")
	}
	if s.PercentageTotal != 100 && p.ProjectMode == model.ModeAwarded && len(p.SubTasks) > 0 {
		pdf.SetTextColor(200, 0, 0)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, fmt.Sprintf("Task percentages add up to %.0f%%, not 100%%.", s.PercentageTotal), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	if strings.TrimSpace(p.Notes) != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(p.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 9)
	for i, col := range cols {
		align := "L"
		if i > 1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String() + frac
	}
	return b.String() + frac
}

func safeValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
