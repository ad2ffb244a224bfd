package employee

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/transport"
	"github.com/frahmantamala/asset-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Get(ctx context.Context, id int64) (*Employee, error)
	List(ctx context.Context, filter ListFilter) ([]*Employee, error)
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

// Me returns the directory entry of the authenticated employee.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	e, err := h.Service.Get(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee ID")
		return
	}

	e, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Department: r.URL.Query().Get("department"),
		Search:     r.URL.Query().Get("search"),
		Limit:      20,
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

	employees, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"employees": employees,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})
}
