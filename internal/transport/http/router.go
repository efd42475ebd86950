package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jobhub/identity-api/internal/application/account"
	"github.com/jobhub/identity-api/internal/application/otp"
	"github.com/jobhub/identity-api/internal/config"
	jwtinfra "github.com/jobhub/identity-api/internal/infrastructure/jwt"
	"github.com/jobhub/identity-api/internal/infrastructure/smtp"
	"github.com/jobhub/identity-api/internal/infrastructure/sns"
	"github.com/jobhub/identity-api/internal/transport/http/handler"
	appmiddleware "github.com/jobhub/identity-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo AccountRepository
	OTPRepo     OTPRepository
	Mailer      smtp.Mailer
	SMSSender   sns.SMSSender
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(otp.ServiceDeps{
		CodeRepo: deps.OTPRepo,
		Mailer:   deps.Mailer,
		TTL:      cfg.OTPTTL,
		Cooldown: cfg.OTPResendCooldown,
	})
	accountDeps := account.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		OTP:         otpSvc,
		SMSSender:   deps.SMSSender,
	}
	if deps.JWTProvider != nil {
		accountDeps.JWTProvider = deps.JWTProvider
	}
	accountSvc := account.NewService(accountDeps)

	healthH := handler.NewHealthHandler()
	accountH := handler.NewAccountHandler(accountSvc)
	sessionH := handler.NewSessionHandler(accountSvc)
	resetH := handler.NewPasswordResetHandler(accountSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/accounts", accountH.Register)
		r.With(sensitiveRL.Limit).Post("/accounts/verify-otp", accountH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/password-reset/{action}", resetH.Action)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/accounts/me", accountH.Me)
		})
	})

	return r
}
