package asset

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
	Create(ctx context.Context, actorID int64, dto CreateAssetDTO) (*Asset, error)
	Get(ctx context.Context, id int64) (*Asset, error)
	GetByTag(ctx context.Context, tag string) (*Asset, error)
	List(ctx context.Context, filter ListFilter) ([]*Asset, error)
	Update(ctx context.Context, id int64, dto UpdateAssetDTO) (*Asset, error)
	SetStatus(ctx context.Context, id int64, status string, assigneeID *int64) (*Asset, error)
	Retire(ctx context.Context, actorID, id int64) (*Asset, error)
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

func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("CreateAsset: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateAssetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateAsset: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.Create(r.Context(), user.ID, dto)
	if err != nil {
		h.Logger.Error("CreateAsset: service error", "error", err, "actor_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := h.assetIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid asset ID")
		return
	}

	a, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
		Limit:    20,
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

	assets, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"assets": assets,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := h.assetIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid asset ID")
		return
	}

	var dto UpdateAssetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateAsset: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) SetAssetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := h.assetIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid asset ID")
		return
	}

	var dto SetStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if verr := dto.Validate(); verr != nil {
		h.HandleServiceError(w, verr)
		return
	}

	a, err := h.Service.SetStatus(r.Context(), id, dto.Status, dto.AssigneeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) RetireAsset(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.assetIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid asset ID")
		return
	}

	a, err := h.Service.Retire(r.Context(), user.ID, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) assetIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
