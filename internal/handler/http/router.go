package http

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AppName        string
	AppVersion     string
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.AppVersion),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))
	if cfg.RequestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)
				r.Get("/status", attendanceHandler.Status)

				// Admin or owner only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(jwt.RoleAdmin, jwt.RoleOwner))
					r.Post("/sweep", attendanceHandler.RunSweep)
				})
			})
		})
	})
	return r
}
