package maintenance

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/transport"
	"github.com/frahmantamala/asset-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Schedule(ctx context.Context, actorID int64, dto ScheduleDTO) (*Schedule, error)
	Complete(ctx context.Context, scheduleID int64, dto CompleteDTO) (*Schedule, error)
	MarkOverdue(ctx context.Context, scheduleID int64) (*Schedule, error)
	Get(ctx context.Context, id int64) (*Schedule, error)
	List(ctx context.Context, filter ListFilter) ([]*Schedule, error)
	History(ctx context.Context, scheduleID int64) ([]*Record, error)
	ListDue(ctx context.Context, before time.Time) ([]*Schedule, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Schedule: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sched, err := h.Service.Schedule(r.Context(), user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, sched)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid schedule ID")
		return
	}

	var dto CompleteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sched, err := h.Service.Complete(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sched)
}

func (h *Handler) MarkOverdue(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid schedule ID")
		return
	}

	sched, err := h.Service.MarkOverdue(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sched)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid schedule ID")
		return
	}

	sched, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sched)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  20,
	}

	if assetIDStr := r.URL.Query().Get("asset_id"); assetIDStr != "" {
		if id, err := strconv.ParseInt(assetIDStr, 10, 64); err == nil {
			filter.AssetID = id
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			filter.Limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	schedules, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"schedules": schedules,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid schedule ID")
		return
	}

	records, err := h.Service.History(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

// ListDue exposes the sweep query so an external cron can drive MarkOverdue.
func (h *Handler) ListDue(w http.ResponseWriter, r *http.Request) {
	before := time.Now()
	if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
		parsed, err := time.Parse(time.RFC3339, beforeStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid before timestamp")
			return
		}
		before = parsed
	}

	schedules, err := h.Service.ListDue(r.Context(), before)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"schedules": schedules})
}
