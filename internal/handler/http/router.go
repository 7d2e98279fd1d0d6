package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/aqlhr/aqlhr-backend-go/internal/handler/http/middleware"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/jwt"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/metrics"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, m *metrics.Metrics, calendarHandler CalendarHandler, holidayHandler HolidayHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "aqlhr-calendar"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/calendar", func(r chi.Router) {
			// Public, company holidays only with a valid token
			r.With(jwtauth.Verifier(JWTService.JWTAuth()), middleware.OptionalClaims).Get("/today", calendarHandler.Today)
			r.Get("/convert", calendarHandler.Convert)
			r.Post("/convert/batch", calendarHandler.ConvertBatch)
			r.Get("/to-gregorian", calendarHandler.ToGregorian)
			r.Get("/source", calendarHandler.SourceStatus)

			// SSE authenticates with a query token
			r.Get("/stream", calendarHandler.Stream)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
				r.Use(middleware.RequireCompany)

				r.Get("/stream-token", calendarHandler.StreamToken)

				r.With(middleware.AdminOnly).Post("/sync", calendarHandler.Sync)
			})
		})

		// Requires authentication
		r.Route("/holidays", func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequireCompany)

			r.Get("/", holidayHandler.List)
			r.Get("/upcoming", holidayHandler.Upcoming)
			r.Get("/check", holidayHandler.Check)
			r.Get("/export", holidayHandler.Export)
			r.Get("/{id}", holidayHandler.Get)

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/", holidayHandler.Create)
				r.Post("/reseed", holidayHandler.Reseed)
				r.Put("/{id}", holidayHandler.Update)
				r.Delete("/{id}", holidayHandler.Delete)
			})
		})
	})
	return r
}
