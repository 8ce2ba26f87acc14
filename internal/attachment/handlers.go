package attachment

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iidmage/backoffice/internal/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// суммарный лимит: 12 файлов по 8 Мо
	if err := r.ParseMultipartForm(maxFiles * maxFileSize); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var uploadedBy *string
	if email := middleware.EmailFromContext(r.Context()); email != "" {
		uploadedBy = &email
	}
	files := r.MultipartForm.File["files"]
	items, err := h.svc.Upload(r.Context(), chi.URLParam(r, "id"), r.FormValue("tag"), uploadedBy, files)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"items": items})
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch err {
	case ErrTooManyFiles, ErrFileTooLarge, ErrBadMimeType, ErrTagRequired, ErrNoFiles:
		code = http.StatusBadRequest
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
