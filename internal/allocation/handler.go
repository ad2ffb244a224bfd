package allocation

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/transport"
	"github.com/frahmantamala/asset-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Allocate(ctx context.Context, actorID int64, dto AllocateDTO) (*Allocation, error)
	Return(ctx context.Context, allocationID int64, dto ReturnDTO) (*Allocation, error)
	Update(ctx context.Context, allocationID int64, dto UpdateDTO) (*Allocation, error)
	Get(ctx context.Context, id int64) (*Allocation, error)
	List(ctx context.Context, filter ListFilter) ([]*Allocation, error)
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

func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto AllocateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Allocate: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alloc, err := h.Service.Allocate(r.Context(), user.ID, dto)
	if err != nil {
		h.Logger.Error("Allocate: service error", "error", err, "actor_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, alloc)
}

func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid allocation ID")
		return
	}

	var dto ReturnDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alloc, err := h.Service.Return(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, alloc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid allocation ID")
		return
	}

	var dto UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alloc, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, alloc)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid allocation ID")
		return
	}

	alloc, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, alloc)
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
	if employeeIDStr := r.URL.Query().Get("employee_id"); employeeIDStr != "" {
		if id, err := strconv.ParseInt(employeeIDStr, 10, 64); err == nil {
			filter.EmployeeID = id
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

	allocations, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"allocations": allocations,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})
}
