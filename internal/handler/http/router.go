package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Haarush2006/OpsBoard-BE/internal/service"
	"github.com/Haarush2006/OpsBoard-BE/pkg/health"
	"github.com/Haarush2006/OpsBoard-BE/pkg/middleware"
)

// RouterConfig carries the knobs the router needs from the app config.
type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter assembles the HTTP surface: public auth endpoints, authenticated
// session endpoints, health, and metrics.
func NewRouter(svc *service.AuthService, healthHandler *health.Handler, log *slog.Logger, cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(svc, log)

	verify := func(token string) (*middleware.Claims, error) {
		claims, err := svc.VerifyAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := chi.NewRouter()
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogging(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(ContentTypeJSON)

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		// Public endpoints sit behind the per-client rate limiter; password
		// hashing makes them the cheapest brute-force target.
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(verify))
			r.Post("/logout-all", authHandler.LogoutAll)
			r.Get("/me", authHandler.Me)
		})
	})

	return r
}
