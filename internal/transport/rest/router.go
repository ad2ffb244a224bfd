package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/asset-management/internal/allocation"
	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/auth"
	"github.com/frahmantamala/asset-management/internal/employee"
	"github.com/frahmantamala/asset-management/internal/maintenance"
	"github.com/frahmantamala/asset-management/internal/ticket"
	"github.com/frahmantamala/asset-management/internal/transfer"
	"github.com/frahmantamala/asset-management/internal/transport/middleware"
	"github.com/frahmantamala/asset-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
)

type Handlers struct {
	Auth        *auth.Handler
	Employee    *employee.Handler
	Asset       *asset.Handler
	Allocation  *allocation.Handler
	Transfer    *transfer.Handler
	Maintenance *maintenance.Handler
	Ticket      *ticket.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authService *auth.Service, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	sqlxDB := sqlx.NewDb(db, "postgres")

	rbac := authService.RBACAuthorization()
	abac := &auth.ABACPolicy{}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			if h.Employee != nil {
				pr.Get("/employees/me", h.Employee.Me)
				pr.Get("/employees", h.Employee.List)
				pr.Get("/employees/{id}", h.Employee.Get)
			}

			if h.Asset != nil {
				pr.Route("/assets", func(ar chi.Router) {
					ar.Get("/", h.Asset.ListAssets)
					ar.Get("/{id}", h.Asset.GetAsset)

					ar.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManageAssets())
						mr.Post("/", h.Asset.CreateAsset)
						mr.Patch("/{id}", h.Asset.UpdateAsset)
						mr.Patch("/{id}/status", h.Asset.SetAssetStatus)
						mr.Post("/{id}/retire", h.Asset.RetireAsset)
					})
				})
			}

			if h.Allocation != nil {
				pr.Route("/allocations", func(ar chi.Router) {
					ar.Group(func(vr chi.Router) {
						vr.Use(auth.RequireCanViewAllocation(sqlxDB, abac))
						vr.Get("/{id}", h.Allocation.Get)
					})

					ar.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireAllocateAssets())
						mr.Post("/", h.Allocation.Allocate)
						mr.Get("/", h.Allocation.List)
						mr.Patch("/{id}", h.Allocation.Update)
						mr.Post("/{id}/return", h.Allocation.Return)
					})
				})
			}

			if h.Transfer != nil {
				pr.Route("/transfers", func(tr chi.Router) {
					tr.Post("/", h.Transfer.Initiate)
					tr.Get("/", h.Transfer.List)
					tr.Get("/{id}", h.Transfer.Get)
					// Approval rights are party-based and enforced in the service.
					tr.Post("/{id}/approve", h.Transfer.Approve)
					tr.Post("/{id}/reject", h.Transfer.Reject)
				})
			}

			if h.Maintenance != nil {
				pr.Route("/maintenance/schedules", func(sr chi.Router) {
					sr.Get("/", h.Maintenance.List)
					sr.Get("/due", h.Maintenance.ListDue)
					sr.Get("/{id}", h.Maintenance.Get)
					sr.Get("/{id}/records", h.Maintenance.History)

					sr.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManageMaintenance())
						mr.Post("/", h.Maintenance.Schedule)
						mr.Post("/{id}/complete", h.Maintenance.Complete)
						mr.Post("/{id}/overdue", h.Maintenance.MarkOverdue)
					})
				})
			}

			if h.Ticket != nil {
				pr.Route("/tickets", func(tr chi.Router) {
					tr.Post("/", h.Ticket.Create)
					tr.Get("/", h.Ticket.List)
					tr.Post("/{id}/cancel", h.Ticket.Cancel)

					tr.Group(func(vr chi.Router) {
						vr.Use(auth.RequireCanViewTicket(sqlxDB, abac))
						vr.Get("/{id}", h.Ticket.Get)
					})

					tr.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManageTickets())
						mr.Patch("/{id}", h.Ticket.Update)
					})
				})
			}
		})
	})
}
