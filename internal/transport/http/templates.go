package http

import (
	"net/http"
	"strings"

	"SchedulerApp/internal/model"
	"SchedulerApp/internal/service"
)

// ListTemplates обрабатывает GET /templates
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": h.templates.List()})
}

// GetTemplate обрабатывает GET /templates/{id}
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.templates.Get(pathID(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// CreateTemplate обрабатывает POST /templates с телом {"name", "description", "tasks": ["..."]}
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var in service.TemplateInput
	if !decode(w, r, &in) {
		return
	}
	tpl, err := h.templates.Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

// UpdateTemplate обрабатывает PUT /templates/{id}
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var in service.TemplateInput
	if !decode(w, r, &in) {
		return
	}
	tpl, err := h.templates.Update(r.Context(), pathID(r, "id"), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// DeleteTemplate обрабатывает DELETE /templates/{id}
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if err := h.templates.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "removed": true})
}

// DuplicateTemplate обрабатывает POST /templates/{id}/duplicate
func (h *Handler) DuplicateTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.templates.Duplicate(r.Context(), pathID(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

// ExportTemplates обрабатывает GET /templates/export?format=json|yaml&id=...
func (h *Handler) ExportTemplates(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	data, err := h.templates.Export(model.ID(r.URL.Query().Get("id")), format)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if format == service.FormatYAML || format == "yml" {
		writeFile(w, "application/yaml", "templates.yaml", data)
		return
	}
	writeFile(w, "application/json", "templates.json", data)
}

// ImportTemplates обрабатывает POST /templates/import?format=json|yaml; в теле документ экспорта
func (h *Handler) ImportTemplates(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	n, err := h.templates.Import(r.Context(), data, r.URL.Query().Get("format"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"imported": n})
}
