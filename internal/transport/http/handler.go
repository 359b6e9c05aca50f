package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"SchedulerApp/internal/finance"
	"SchedulerApp/internal/model"
	"SchedulerApp/internal/service"
)

// ProjectService задаёт интерфейс бизнес-логики проектов, используемый хендлером
type ProjectService interface {
	Today() model.Date
	Create(ctx context.Context, in model.ProjectInput) (model.Project, error)
	Get(id model.ID) (model.Project, error)
	List() []model.Project
	ListByStatus(status model.Status) ([]model.Project, error)
	Update(ctx context.Context, id model.ID, p model.Project) (model.Project, error)
	MarkComplete(ctx context.Context, id model.ID) (model.Project, error)
	RestoreFromCompleted(ctx context.Context, id model.ID) (model.Project, error)
	SoftDelete(ctx context.Context, id model.ID) (model.Project, error)
	RestoreFromTrash(ctx context.Context, id model.ID) (model.Project, error)
	Purge(ctx context.Context, id model.ID) error
	GenerateTasks(ctx context.Context, id model.ID, count int) (model.Project, int, error)
	ApplyTemplate(ctx context.Context, id, templateID model.ID) (model.Project, int, error)
	AddTask(ctx context.Context, projectID model.ID, in model.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, projectID, taskID model.ID, patch service.TaskPatch) (model.Task, error)
	ToggleTaskComplete(ctx context.Context, projectID, taskID model.ID) (model.Task, error)
	ToggleTaskPayment(ctx context.Context, projectID, taskID model.ID) (model.Task, error)
	RemoveTask(ctx context.Context, projectID, taskID model.ID) error
	AddExpense(ctx context.Context, projectID, taskID model.ID, description string, amount float64) (model.Expense, error)
	RemoveExpense(ctx context.Context, projectID, taskID, expenseID model.ID) error
	UpdateNotes(ctx context.Context, projectID model.ID, notes string) (model.Project, error)
	Summary(id model.ID) (finance.Summary, error)
	Dashboard(filter finance.Filter, window int) (service.Dashboard, error)
	Calendar(day model.Date) []model.Project
}

// TemplateService задаёт интерфейс библиотеки шаблонов
type TemplateService interface {
	List() []model.Template
	Get(id model.ID) (model.Template, error)
	Create(ctx context.Context, in service.TemplateInput) (model.Template, error)
	Update(ctx context.Context, id model.ID, in service.TemplateInput) (model.Template, error)
	Delete(ctx context.Context, id model.ID) error
	Duplicate(ctx context.Context, id model.ID) (model.Template, error)
	Export(id model.ID, format string) ([]byte, error)
	Import(ctx context.Context, data []byte, format string) (int, error)
}

// SettingsService задаёт интерфейс профиля, общих заметок и ключа ассистента
type SettingsService interface {
	Profile(ctx context.Context) (model.User, error)
	SaveProfile(ctx context.Context, u model.User) (model.User, error)
	Logout(ctx context.Context) error
	Notes(ctx context.Context) (string, error)
	SaveNotes(ctx context.Context, notes string) error
	APIKeyStatus(ctx context.Context) (bool, string, error)
	SaveAPIKey(ctx context.Context, key string) error
	DeleteAPIKey(ctx context.Context) error
}

// AssistantService создаёт проект из ответа ассистента
type AssistantService interface {
	CreateProjectFromPayload(ctx context.Context, payload service.Payload) (model.Project, error)
}

// WorkbookGenerator формирует xlsx по портфелю
type WorkbookGenerator interface {
	Generate(projects []model.Project, today model.Date) ([]byte, error)
}

// StatementGenerator формирует PDF-выписку по проекту
type StatementGenerator interface {
	Generate(p model.Project, today model.Date) ([]byte, error)
}

// Pinger проверяет доступность хранилища для /readyz
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps содержит зависимости хендлера; Ready и генераторы отчётов необязательны
type Deps struct {
	Projects  ProjectService
	Templates TemplateService
	Settings  SettingsService
	Assistant AssistantService
	Workbook  WorkbookGenerator
	Statement func(company string) StatementGenerator
	Ready     Pinger
	Logger    *zap.Logger
	// ReminderWindow задаёт окно напоминаний по умолчанию для /dashboard, дней
	ReminderWindow int
}

// Handler содержит зависимости и реализует HTTP-эндпоинты
type Handler struct {
	projects  ProjectService
	templates TemplateService
	settings  SettingsService
	assistant AssistantService
	workbook  WorkbookGenerator
	statement func(company string) StatementGenerator
	ready     Pinger
	logger    *zap.Logger
	window    int
}

// NewHandler создаёт новый HTTP Handler
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		projects:  d.Projects,
		templates: d.Templates,
		settings:  d.Settings,
		assistant: d.Assistant,
		workbook:  d.Workbook,
		statement: d.Statement,
		ready:     d.Ready,
		logger:    logger,
		window:    d.ReminderWindow,
	}
}

// RegisterRoutes регистрирует маршруты API
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Эндпоинты для проверки здоровья, готовности и метрик
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.HandleFunc("/readyz", h.Readyz).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/projects", h.ListProjects).Methods("GET")
	r.HandleFunc("/projects", h.CreateProject).Methods("POST")
	r.HandleFunc("/projects/status/{status}", h.ListProjectsByStatus).Methods("GET")
	r.HandleFunc("/projects/{id}", h.GetProject).Methods("GET")
	r.HandleFunc("/projects/{id}", h.UpdateProject).Methods("PUT")
	r.HandleFunc("/projects/{id}", h.PurgeProject).Methods("DELETE")
	r.HandleFunc("/projects/{id}/summary", h.ProjectSummary).Methods("GET")
	r.HandleFunc("/projects/{id}/notes", h.UpdateProjectNotes).Methods("PUT")
	r.HandleFunc("/projects/{id}/complete", h.lifecycle(h.projects.MarkComplete)).Methods("POST")
	r.HandleFunc("/projects/{id}/reopen", h.lifecycle(h.projects.RestoreFromCompleted)).Methods("POST")
	r.HandleFunc("/projects/{id}/trash", h.lifecycle(h.projects.SoftDelete)).Methods("POST")
	r.HandleFunc("/projects/{id}/restore", h.lifecycle(h.projects.RestoreFromTrash)).Methods("POST")
	r.HandleFunc("/projects/{id}/statement.pdf", h.ProjectStatement).Methods("GET")

	r.HandleFunc("/projects/{id}/tasks", h.AddTask).Methods("POST")
	r.HandleFunc("/projects/{id}/tasks/generate", h.GenerateTasks).Methods("POST")
	r.HandleFunc("/projects/{id}/tasks/template", h.ApplyTemplate).Methods("POST")
	r.HandleFunc("/projects/{id}/tasks/{taskId}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/projects/{id}/tasks/{taskId}", h.RemoveTask).Methods("DELETE")
	r.HandleFunc("/projects/{id}/tasks/{taskId}/complete", h.ToggleTaskComplete).Methods("POST")
	r.HandleFunc("/projects/{id}/tasks/{taskId}/payment", h.ToggleTaskPayment).Methods("POST")
	r.HandleFunc("/projects/{id}/tasks/{taskId}/expenses", h.AddExpense).Methods("POST")
	r.HandleFunc("/projects/{id}/tasks/{taskId}/expenses/{expenseId}", h.RemoveExpense).Methods("DELETE")

	r.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	r.HandleFunc("/calendar", h.Calendar).Methods("GET")
	r.HandleFunc("/reports/portfolio.xlsx", h.PortfolioReport).Methods("GET")
	r.HandleFunc("/assistant/projects", h.CreateFromAssistant).Methods("POST")

	r.HandleFunc("/templates", h.ListTemplates).Methods("GET")
	r.HandleFunc("/templates", h.CreateTemplate).Methods("POST")
	r.HandleFunc("/templates/export", h.ExportTemplates).Methods("GET")
	r.HandleFunc("/templates/import", h.ImportTemplates).Methods("POST")
	r.HandleFunc("/templates/{id}", h.GetTemplate).Methods("GET")
	r.HandleFunc("/templates/{id}", h.UpdateTemplate).Methods("PUT")
	r.HandleFunc("/templates/{id}", h.DeleteTemplate).Methods("DELETE")
	r.HandleFunc("/templates/{id}/duplicate", h.DuplicateTemplate).Methods("POST")

	r.HandleFunc("/settings/user", h.GetProfile).Methods("GET")
	r.HandleFunc("/settings/user", h.SaveProfile).Methods("PUT")
	r.HandleFunc("/settings/user", h.Logout).Methods("DELETE")
	r.HandleFunc("/settings/notes", h.GetNotes).Methods("GET")
	r.HandleFunc("/settings/notes", h.SaveNotes).Methods("PUT")
	r.HandleFunc("/settings/api-key", h.APIKeyStatus).Methods("GET")
	r.HandleFunc("/settings/api-key", h.SaveAPIKey).Methods("PUT")
	r.HandleFunc("/settings/api-key", h.DeleteAPIKey).Methods("DELETE")
}

// ErrorResponse модель ошибки API
type ErrorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

// Коды ошибок в теле ответа
const (
	codeInternal     = 1
	codeBadRequest   = 2
	codeNotFound     = 3
	codeConflict     = 4
	codePrecondition = 5
)

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError переводит ошибку сервиса в HTTP-статус по её виду
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, ErrorResponse{codeBadRequest, err.Error(), map[string]interface{}{}})
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrorResponse{codeNotFound, "errors.common.notFound", map[string]interface{}{"error": err.Error()}})
	case errors.Is(err, model.ErrInvalidTransition):
		writeError(w, http.StatusConflict, ErrorResponse{codeConflict, err.Error(), map[string]interface{}{}})
	case errors.Is(err, model.ErrPrecondition):
		writeError(w, http.StatusConflict, ErrorResponse{codePrecondition, err.Error(), map[string]interface{}{}})
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, ErrorResponse{codeInternal, err.Error(), map[string]interface{}{}})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, ErrorResponse{codeBadRequest, msg, map[string]interface{}{}})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decode читает JSON-тело запроса в v; при ошибке сам отвечает 400
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid request body")
		return false
	}
	return true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		badRequest(w, "invalid request body")
		return nil, false
	}
	return data, true
}

func pathID(r *http.Request, name string) model.ID {
	return model.ID(mux.Vars(r)[name])
}

// Healthz возвращает статус работы сервиса
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Readyz возвращает готовность сервиса; при недоступном хранилище отвечает 503
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, ErrorResponse{codeInternal, "storage unavailable", map[string]interface{}{}})
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
