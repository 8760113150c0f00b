package restapi

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/yusufsyaifudin/pnscred/internal/svc/credsvc"
	"github.com/yusufsyaifudin/pnscred/pkg/respbuilder"
	"github.com/yusufsyaifudin/pnscred/pkg/tracer"
	"github.com/yusufsyaifudin/pnscred/pkg/validator"
	"github.com/yusufsyaifudin/pnscred/transport/restapi/handlercred"
	"go.opentelemetry.io/otel"
)

type Config struct {
	AppServiceName string          `validate:"required"`
	AppVersion     string          `validate:"required"`
	CredService    credsvc.Service `validate:"required"`
}

type DefaultHTTP struct {
	router *chi.Mux
}

func NewHTTPTransport(cfg Config) (*DefaultHTTP, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("http transport cfg error: %w", err)
	}

	handlerCred, err := handlercred.NewHandler(handlercred.HandlerConfig{
		CredService: cfg.CredService,
	})
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	skip := func(r *http.Request) bool {
		switch strings.TrimSpace(path.Clean(r.URL.Path)) {
		case "/health",
			"/ping":
			return true
		}

		return false
	}

	router.Use(middleware.StripSlashes)
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match"},
		ExposedHeaders:   []string{"ETag", "Tracer-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	router.Use(func(next http.Handler) http.Handler {
		return tracer.Middleware(tracer.MiddlewareConfig{
			TracerName:     "github.com/yusufsyaifudin/pnscred",
			ServiceName:    cfg.AppServiceName,
			SkipFunc:       skip,
			TracerProvider: otel.GetTracerProvider(),    // global tracer provider
			TextPropagator: otel.GetTextMapPropagator(), // global text map propagator
		}, next)
	})

	// add trace id and also log request response
	router.Use(func(next http.Handler) http.Handler {
		return requestLogger(skip, next)
	})

	health := func(w http.ResponseWriter, r *http.Request) {
		respbuilder.WriteJSON(http.StatusOK, w, r, map[string]string{
			"service": cfg.AppServiceName,
			"version": cfg.AppVersion,
		})
	}

	router.Get("/health", health)
	router.Get("/ping", health)

	// Resource: push notification credentials
	router.Route("/api/v1/credentials", func(r chi.Router) {
		r.Post("/", handlerCred.Create())                     // register credential for client_id
		r.Post("/validate", handlerCred.Validate())           // dry run, nothing stored
		r.Get("/", handlerCred.List())                        // list credentials of client_id
		r.Get("/examples", handlerCred.Examples())            // example credential per platform
		r.Get("/{platform}/{label}", handlerCred.Get())       // get one, with ETag
		r.Delete("/{platform}/{label}", handlerCred.Delete()) // soft delete one
	})

	instance := &DefaultHTTP{
		router: router,
	}

	return instance, nil
}

// Server .
func (a *DefaultHTTP) Server() http.Handler {
	return a.router
}
