package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"lucky-wheel/internal/config"
	"lucky-wheel/internal/pkg/db"
	"lucky-wheel/internal/service"
)

// Dependencies holds all service references needed by the API layer.
type Dependencies struct {
	Config      *config.Config
	DB          *db.Pool
	Eligibility *service.EligibilityService
	Wheel       *service.WheelService
	Quota       *service.QuotaService
	Draws       *service.DrawService
	CheckIns    *service.CheckInService
}

// NewRouter creates and configures the chi router with all middleware and
// routes.
func NewRouter(deps *Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(RequestLogging)

	r.Get("/api/health", HealthHandler(deps.DB))

	// Wheel presentation: no account needed to see the wheel.
	r.Get("/api/merchants/eligible", EligibleMerchantsHandler(deps.Eligibility))
	r.Post("/api/wheel/allocate", AllocateWheelHandler(deps.Wheel))

	// Account-bound operations.
	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(deps.Config.Auth.JWTSecret, deps.Config.IsAdmin))
		r.Use(RateLimit(deps.Config.RateLimit.RequestsPerSecond, deps.Config.RateLimit.Burst))

		r.Get("/quota", QuotaStatusHandler(deps.Quota))
		r.Post("/draws", ConfirmDrawHandler(deps.Draws))
		r.Get("/draws", DrawHistoryHandler(deps.Draws))
		r.Post("/draws/{id}/share", ShareDrawHandler(deps.Draws))
		r.Post("/checkin", CheckInHandler(deps.CheckIns))
		r.Get("/checkin/status", CheckInStatusHandler(deps.CheckIns))
	})

	return r
}
