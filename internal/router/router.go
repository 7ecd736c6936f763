package router

import (
	"log/slog"
	"net/http"
	"time"

	"solicitations/internal/controller"
	"solicitations/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(c *controller.Controller, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(accessLog(log))
	router.Use(metrics.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(cors)

	router.NotFound(c.NotFound)
	router.MethodNotAllowed(c.MethodNotAllowed)

	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", c.Ping)
		r.Route("/solicitations", func(r chi.Router) {
			r.Get("/", c.GetSolicitations)
			r.Post("/", c.NewSolicitation)
			r.Put("/", c.EditSolicitation)
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", c.GetUsers)
			r.Post("/", c.NewUser)
			r.Patch("/", c.FindUser)
		})
	})

	router.Handle("/metrics", promhttp.Handler())

	return router
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Accept", "*/*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Debug("request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
