package commande

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iidmage/backoffice/internal/calendar"
	"github.com/iidmage/backoffice/internal/middleware"
	"github.com/iidmage/backoffice/internal/retroplanning"
	"github.com/iidmage/backoffice/internal/storage"
	"github.com/iidmage/backoffice/internal/types/attachment"
	types "github.com/iidmage/backoffice/internal/types/commande"
)

// AttachmentLister feeds photo attachments into the detail view.
type AttachmentLister interface {
	ListAttachmentsByCommande(ctx context.Context, commandeID string) ([]attachment.Attachment, error)
}

type Handler struct {
	svc         *Service
	attachments AttachmentLister
}

func NewHandler(svc *Service, attachments AttachmentLister) *Handler {
	return &Handler{svc: svc, attachments: attachments}
}

// view is a commande plus the derived fields every UI surface displays.
type view struct {
	*types.Commande
	DisplayEtat types.Etat              `json:"displayEtat"`
	Lateness    string                  `json:"lateness,omitempty"`
	Attachments []attachment.Attachment `json:"attachments,omitempty"`
}

func toView(c *types.Commande, now time.Time) view {
	return view{
		Commande:    c,
		DisplayEtat: DisplayEtat(c),
		Lateness:    string(LatenessFor(c, now)),
	}
}

type payload struct {
	ClientID     string  `json:"clientId"`
	PoseurID     *string `json:"poseurId"`
	Product      *string `json:"product"`
	PlanningType string  `json:"planningType"`

	DateCommande   *string `json:"date_commande"`
	DateSurvey     *string `json:"date_survey"`
	DateProduction *string `json:"date_production"`
	DateExpedition *string `json:"date_expedition"`
	DateLivraison  *string `json:"date_livraison"`
	DatePose       *string `json:"date_pose"`

	LieuPose     *string `json:"lieu_pose"`
	Etat         string  `json:"etat"`
	Priorite     *string `json:"priorite"`
	Commentaires *string `json:"commentaires"`
}

func parseDatePtr(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, ok := calendar.ParseDay(strings.TrimSpace(*raw))
	if !ok {
		return nil
	}
	return &t
}

func (p payload) toInput() Input {
	in := Input{
		ClientID:       strings.TrimSpace(p.ClientID),
		Product:        p.Product,
		PlanningType:   types.PlanningType(p.PlanningType),
		DateCommande:   parseDatePtr(p.DateCommande),
		DateSurvey:     parseDatePtr(p.DateSurvey),
		DateProduction: parseDatePtr(p.DateProduction),
		DateExpedition: parseDatePtr(p.DateExpedition),
		DateLivraison:  parseDatePtr(p.DateLivraison),
		DatePose:       parseDatePtr(p.DatePose),
		LieuPose:       p.LieuPose,
		Etat:           types.Etat(strings.TrimSpace(p.Etat)),
		Priorite:       p.Priorite,
		Commentaires:   p.Commentaires,
	}
	if p.PoseurID != nil && strings.TrimSpace(*p.PoseurID) != "" {
		id := strings.TrimSpace(*p.PoseurID)
		in.PoseurID = &id
	}
	return in
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	commandes, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	now := time.Now()
	out := make([]view, 0, len(commandes))
	for i := range commandes {
		out = append(out, toView(&commandes[i], now))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	v := toView(c, time.Now())
	if h.attachments != nil {
		// не валим детальную карточку из-за фотоленты
		if items, err := h.attachments.ListAttachmentsByCommande(r.Context(), c.ID); err == nil {
			v.Attachments = items
		}
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	c, err := h.svc.Create(r.Context(), p.toInput(), middleware.EmailFromContext(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toView(c, time.Now()))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	c, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), p.toInput(), middleware.EmailFromContext(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(c, time.Now()))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) GenerateRetroplanning(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Overwrite bool `json:"overwrite"`
	}
	// An empty body means overwrite=false.
	_ = json.NewDecoder(r.Body).Decode(&body)

	c, err := h.svc.GenerateRetroplanning(r.Context(), chi.URLParam(r, "id"), body.Overwrite, middleware.EmailFromContext(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "commande": toView(c, time.Now())})
}

func (h *Handler) SetMilestone(w http.ResponseWriter, r *http.Request) {
	kind := types.MilestoneKind(strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "kind"))))
	var body struct {
		Done bool `json:"done"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	c, err := h.svc.SetMilestoneDone(r.Context(), chi.URLParam(r, "id"), kind, body.Done, middleware.EmailFromContext(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "commande": toView(c, time.Now())})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrClientRequired),
		errors.Is(err, ErrInvalidKind),
		errors.Is(err, retroplanning.ErrNoPoseDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrMilestoneConflict),
		errors.Is(err, storage.ErrStaleWrite):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
