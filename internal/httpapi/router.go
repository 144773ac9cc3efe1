package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/civictrack/civictrackd/internal/auth"
	"github.com/civictrack/civictrackd/internal/domain"
)

// NewRouter wires every endpoint spec.md §6 lists under /api/v1: bearer
// auth first, then a per-route role guard, then the handler. corsOrigins
// configures the CORS middleware's allowed-origin list.
func NewRouter(h *Handler, resolver auth.Resolver, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	support := requireRole(domain.RoleSupport, domain.RoleManager)
	manager := requireRole(domain.RoleManager)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware(resolver))

		r.Route("/tickets", func(r chi.Router) {
			r.Post("/", h.createTicket)
			r.With(support).Get("/", h.listTickets)
			r.Get("/my", h.listMyTickets)
			r.With(support).Get("/assigned", h.listAssignedTickets)
			r.Get("/nearby", h.nearbyTickets)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.ticketDetail)
				r.Patch("/", h.updateTicket)
				r.Delete("/", h.deleteTicket)
				r.With(support).Patch("/status", h.updateTicketStatus)
				r.With(manager).Patch("/assign", h.assignTicketTeam)

				r.Post("/photos", h.uploadTicketPhoto)

				r.Post("/comments", h.addComment)
				r.Get("/comments", h.listComments)

				r.Post("/follow", h.followTicket)
				r.Delete("/follow", h.unfollowTicket)

				r.Post("/feedback", h.createFeedback)
				r.Get("/feedback", h.getFeedback)
			})
		})

		r.Route("/escalations", func(r chi.Router) {
			r.With(support).Post("/", h.createEscalation)
			r.Get("/", h.listEscalations)
			r.With(manager).Patch("/{id}/approve", h.approveEscalation)
			r.With(manager).Patch("/{id}/reject", h.rejectEscalation)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.listNotifications)
			r.Patch("/read-all", h.markAllNotificationsRead)
			r.Patch("/{id}/read", h.markNotificationRead)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", h.listAddresses)
			r.Post("/", h.createAddress)
			r.Put("/{id}", h.updateAddress)
			r.Delete("/{id}", h.deleteAddress)
		})

		r.Get("/categories", h.listCategories)
		r.Get("/teams", h.listTeams)
		r.Get("/districts", h.listDistricts)

		r.Route("/analytics", func(r chi.Router) {
			r.Use(manager)
			r.Get("/dashboard", h.analyticsDashboard)
			r.Get("/heatmap", h.analyticsHeatmap)
			r.Get("/teams", h.analyticsTeams)
			r.Get("/teams/{id}/members", h.analyticsTeamMembers)
			r.Get("/categories", h.analyticsCategories)
			r.Get("/neighborhoods", h.analyticsNeighborhoods)
			r.Get("/feedback-trends", h.analyticsFeedbackTrends)
		})
	})

	return r
}
