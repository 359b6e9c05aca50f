package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"SchedulerApp/internal/finance"
	"SchedulerApp/internal/model"
	"SchedulerApp/internal/service"
)

// projectRequest — тело создания проекта; суммы принимаются и строками
type projectRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Deadline    model.Date   `json:"deadline"`
	ProjectMode model.Mode   `json:"projectMode"`
	TotalBudget model.Amount `json:"totalBudget"`
	MyProfit    model.Amount `json:"myProfit"`
	Notes       string       `json:"notes"`
	SubTasks    []model.Task `json:"subTasks"`
}

type taskRequest struct {
	Name       string       `json:"name"`
	Deadline   model.Date   `json:"deadline"`
	Percentage model.Amount `json:"percentage"`
	Notes      string       `json:"notes"`
}

type expenseRequest struct {
	Description string       `json:"description"`
	Amount      model.Amount `json:"amount"`
}

// replaceResponse возвращает проект и число заменённых задач, чтобы клиент мог предупредить пользователя
type replaceResponse struct {
	Project  model.Project `json:"project"`
	Replaced int           `json:"replaced"`
}

// ListProjects обрабатывает GET /projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": h.projects.List()})
}

// ListProjectsByStatus обрабатывает GET /projects/status/{status}
func (h *Handler) ListProjectsByStatus(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListByStatus(model.Status(pathID(r, "status")))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

// CreateProject обрабатывает POST /projects
// 1. Декодирует тело запроса
// 2. Вызывает сервис Create, который проверяет ввод и сохраняет проект
// 3. Возвращает 201 и JSON созданного проекта
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.projects.Create(r.Context(), model.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Deadline:    req.Deadline,
		Mode:        req.ProjectMode,
		TotalBudget: float64(req.TotalBudget),
		MyProfit:    float64(req.MyProfit),
		Notes:       req.Notes,
		Tasks:       req.SubTasks,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProject обрабатывает GET /projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.Get(pathID(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProject обрабатывает PUT /projects/{id}: заменяет редактируемые поля проекта.
// Статус и даты жизненного цикла через этот эндпоинт не меняются
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var p model.Project
	if !decode(w, r, &p) {
		return
	}
	updated, err := h.projects.Update(r.Context(), pathID(r, "id"), p)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// PurgeProject обрабатывает DELETE /projects/{id}: окончательно удаляет проект из корзины
func (h *Handler) PurgeProject(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if err := h.projects.Purge(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "removed": true})
}

// lifecycle оборачивает переход жизненного цикла в обработчик POST /projects/{id}/<action>
func (h *Handler) lifecycle(fn func(ctx context.Context, id model.ID) (model.Project, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := fn(r.Context(), pathID(r, "id"))
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// ProjectSummary обрабатывает GET /projects/{id}/summary
func (h *Handler) ProjectSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.projects.Summary(pathID(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateProjectNotes обрабатывает PUT /projects/{id}/notes
func (h *Handler) UpdateProjectNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if !decode(w, r, &req) {
		return
	}
	p, err := h.projects.UpdateNotes(r.Context(), pathID(r, "id"), req.Notes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GenerateTasks обрабатывает POST /projects/{id}/tasks/generate с телом {"count": N}
func (h *Handler) GenerateTasks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if !decode(w, r, &req) {
		return
	}
	p, replaced, err := h.projects.GenerateTasks(r.Context(), pathID(r, "id"), req.Count)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, replaceResponse{Project: p, Replaced: replaced})
}

// ApplyTemplate обрабатывает POST /projects/{id}/tasks/template с телом {"templateId": "..."}
func (h *Handler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID model.ID `json:"templateId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.TemplateID == "" {
		badRequest(w, "templateId is required")
		return
	}
	p, replaced, err := h.projects.ApplyTemplate(r.Context(), pathID(r, "id"), req.TemplateID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, replaceResponse{Project: p, Replaced: replaced})
}

// AddTask обрабатывает POST /projects/{id}/tasks
func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decode(w, r, &req) {
		return
	}
	task, err := h.projects.AddTask(r.Context(), pathID(r, "id"), model.TaskInput{
		Name:       req.Name,
		Deadline:   req.Deadline,
		Percentage: float64(req.Percentage),
		Notes:      req.Notes,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask обрабатывает PATCH /projects/{id}/tasks/{taskId}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch service.TaskPatch
	if !decode(w, r, &patch) {
		return
	}
	task, err := h.projects.UpdateTask(r.Context(), pathID(r, "id"), pathID(r, "taskId"), patch)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// RemoveTask обрабатывает DELETE /projects/{id}/tasks/{taskId}
func (h *Handler) RemoveTask(w http.ResponseWriter, r *http.Request) {
	taskID := pathID(r, "taskId")
	if err := h.projects.RemoveTask(r.Context(), pathID(r, "id"), taskID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": taskID, "removed": true})
}

// ToggleTaskComplete обрабатывает POST /projects/{id}/tasks/{taskId}/complete
func (h *Handler) ToggleTaskComplete(w http.ResponseWriter, r *http.Request) {
	task, err := h.projects.ToggleTaskComplete(r.Context(), pathID(r, "id"), pathID(r, "taskId"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ToggleTaskPayment обрабатывает POST /projects/{id}/tasks/{taskId}/payment
func (h *Handler) ToggleTaskPayment(w http.ResponseWriter, r *http.Request) {
	task, err := h.projects.ToggleTaskPayment(r.Context(), pathID(r, "id"), pathID(r, "taskId"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// AddExpense обрабатывает POST /projects/{id}/tasks/{taskId}/expenses
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decode(w, r, &req) {
		return
	}
	e, err := h.projects.AddExpense(r.Context(), pathID(r, "id"), pathID(r, "taskId"), req.Description, float64(req.Amount))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// RemoveExpense обрабатывает DELETE /projects/{id}/tasks/{taskId}/expenses/{expenseId}
func (h *Handler) RemoveExpense(w http.ResponseWriter, r *http.Request) {
	expenseID := pathID(r, "expenseId")
	if err := h.projects.RemoveExpense(r.Context(), pathID(r, "id"), pathID(r, "taskId"), expenseID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": expenseID, "removed": true})
}

// Dashboard обрабатывает GET /dashboard?filter=all|overdue|upcoming&window=7
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	window := h.window
	if v := r.URL.Query().Get("window"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "invalid window")
			return
		}
		window = i
	}
	d, err := h.projects.Dashboard(finance.Filter(r.URL.Query().Get("filter")), window)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Calendar обрабатывает GET /calendar?date=YYYY-MM-DD; без даты берётся сегодняшний день
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	day := h.projects.Today()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			badRequest(w, "invalid date")
			return
		}
		day = d
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"date": day, "projects": h.projects.Calendar(day)})
}

// PortfolioReport обрабатывает GET /reports/portfolio.xlsx
func (h *Handler) PortfolioReport(w http.ResponseWriter, r *http.Request) {
	if h.workbook == nil {
		writeError(w, http.StatusNotImplemented, ErrorResponse{codeInternal, "reports are disabled", map[string]interface{}{}})
		return
	}
	today := h.projects.Today()
	data, err := h.workbook.Generate(h.projects.List(), today)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"portfolio-"+today.String()+".xlsx", data)
}

// ProjectStatement обрабатывает GET /projects/{id}/statement.pdf.
// Название компании берётся из профиля пользователя, если он сохранён
func (h *Handler) ProjectStatement(w http.ResponseWriter, r *http.Request) {
	if h.statement == nil {
		writeError(w, http.StatusNotImplemented, ErrorResponse{codeInternal, "reports are disabled", map[string]interface{}{}})
		return
	}
	p, err := h.projects.Get(pathID(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	company := ""
	if h.settings != nil {
		u, err := h.settings.Profile(r.Context())
		switch {
		case err == nil:
			company = u.CompanyName
		case !errors.Is(err, model.ErrNotFound):
			h.writeServiceError(w, err)
			return
		}
	}
	data, err := h.statement(company).Generate(p, h.projects.Today())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeFile(w, "application/pdf", "project-"+p.ID.String()+".pdf", data)
}

// CreateFromAssistant обрабатывает POST /assistant/projects: тело содержит готовый JSON ассистента
func (h *Handler) CreateFromAssistant(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	payload, err := service.DecodePayload(data)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	p, err := h.assistant.CreateProjectFromPayload(r.Context(), payload)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
