package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmoreau/gatherly-backend/api/controllers"
	"github.com/nmoreau/gatherly-backend/api/middleware"
	"github.com/nmoreau/gatherly-backend/internal/events"
	"github.com/nmoreau/gatherly-backend/internal/invitations"
	"github.com/nmoreau/gatherly-backend/internal/organizations"
	"github.com/nmoreau/gatherly-backend/internal/reservations"
	"github.com/nmoreau/gatherly-backend/pkg/config"
	"github.com/nmoreau/gatherly-backend/pkg/db"
	"github.com/nmoreau/gatherly-backend/pkg/logger"
	"github.com/nmoreau/gatherly-backend/pkg/metrics"
	"github.com/nmoreau/gatherly-backend/pkg/redis"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	Resolver     middleware.IdentityResolver
	HTTPMetrics  *metrics.HTTPMetrics
	MetricsHTTP  http.Handler
	Orgs         *organizations.Service
	Invitations  *invitations.Service
	Events       *events.Service
	Reservations *reservations.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(cfg.Mail.ClientURL),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, redisPinger(d.Redis)))
	})

	if d.MetricsHTTP == nil {
		d.MetricsHTTP = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", d.MetricsHTTP)

	bookingPolicy := middleware.NewBookingRateLimitPolicy(
		cfg.RateLimit.BookingWindow,
		cfg.RateLimit.BookingIPLimit,
		cfg.RateLimit.BookingEmailLimit,
	)

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/reservations/{eventID}", controllers.PublicGetEvent(d.Reservations, logg))

		book := r.With()
		if d.Redis != nil {
			book = r.With(middleware.BookingRateLimit(bookingPolicy, d.Redis, logg))
		}
		book.Post("/reservations/{eventID}", controllers.PublicBookEvent(d.Reservations, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Resolver, logg))

		r.Get("/me", controllers.Me(logg))

		r.Route("/invitations", func(r chi.Router) {
			r.Get("/", controllers.ListMyInvitations(d.Invitations, logg))
			r.Put("/{invitationID}", controllers.RespondToInvitation(d.Invitations, logg))
		})

		r.Route("/organizations", func(r chi.Router) {
			r.Post("/", controllers.CreateOrganization(d.Orgs, logg))
			r.Get("/", controllers.ListOrganizations(d.Orgs, logg))

			r.Route("/{orgID}", func(r chi.Router) {
				r.Get("/", controllers.GetOrganization(d.Orgs, logg))
				r.Put("/", controllers.UpdateOrganization(d.Orgs, logg))
				r.Delete("/", controllers.DeleteOrganization(d.Orgs, logg))

				r.Route("/members", func(r chi.Router) {
					r.Get("/", controllers.ListMembers(d.Orgs, logg))
					r.Put("/{userID}", controllers.ChangeMemberRole(d.Orgs, logg))
					r.Delete("/{userID}", controllers.RemoveMember(d.Orgs, logg))
				})

				r.Route("/invitations", func(r chi.Router) {
					r.Post("/", controllers.InviteMember(d.Invitations, logg))
					r.Get("/", controllers.ListOrganizationInvitations(d.Invitations, logg))
					r.Delete("/{invitationID}", controllers.RevokeInvitation(d.Invitations, logg))
				})

				r.Route("/events", func(r chi.Router) {
					r.Post("/", controllers.CreateEvent(d.Events, logg))
					r.Get("/", controllers.ListEvents(d.Events, logg))
					r.Route("/{eventID}", func(r chi.Router) {
						r.Get("/", controllers.GetEvent(d.Events, logg))
						r.Put("/", controllers.UpdateEvent(d.Events, logg))
						r.Delete("/", controllers.DeleteEvent(d.Events, logg))
						r.Get("/tickets", controllers.ListEventTickets(d.Events, logg))
					})
				})
			})
		})
	})

	return r
}

// redisPinger keeps a nil *redis.Client from becoming a non-nil interface.
func redisPinger(client *redis.Client) redis.Pinger {
	if client == nil {
		return nil
	}
	return client
}
