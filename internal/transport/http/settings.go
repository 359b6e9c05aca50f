package http

import (
	"net/http"

	"SchedulerApp/internal/model"
)

// GetProfile обрабатывает GET /settings/user
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.settings.Profile(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	u.Password = ""
	writeJSON(w, http.StatusOK, u)
}

// SaveProfile обрабатывает PUT /settings/user
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if !decode(w, r, &u) {
		return
	}
	saved, err := h.settings.SaveProfile(r.Context(), u)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	saved.Password = ""
	writeJSON(w, http.StatusOK, saved)
}

// Logout обрабатывает DELETE /settings/user: удаляет профиль, проекты не трогает
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.Logout(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetNotes обрабатывает GET /settings/notes
func (h *Handler) GetNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.settings.Notes(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"notes": notes})
}

// SaveNotes обрабатывает PUT /settings/notes
func (h *Handler) SaveNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.settings.SaveNotes(r.Context(), req.Notes); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"notes": req.Notes})
}

// APIKeyStatus обрабатывает GET /settings/api-key; сам ключ не возвращается, только маска
func (h *Handler) APIKeyStatus(w http.ResponseWriter, r *http.Request) {
	set, masked, err := h.settings.APIKeyStatus(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"set": set, "masked": masked})
}

// SaveAPIKey обрабатывает PUT /settings/api-key с телом {"key": "..."}
func (h *Handler) SaveAPIKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.settings.SaveAPIKey(r.Context(), req.Key); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.APIKeyStatus(w, r)
}

// DeleteAPIKey обрабатывает DELETE /settings/api-key
func (h *Handler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.DeleteAPIKey(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
