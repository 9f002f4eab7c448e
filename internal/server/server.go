// Package server exposes catalogue validation over HTTP.
//
// Routes:
//
//	GET  /health              liveness
//	GET  /metrics             Prometheus metrics
//	GET  /records             record and enumeration names
//	GET  /records/{record}    JSON Schema of one record type
//	POST /validate            validate a resource, typed by its discriminator
//	POST /validate/{record}   validate a document as the named record type
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/bind"
	"github.com/reoring/schemabind/internal/metrics"
	"github.com/reoring/schemabind/middleware"
	"github.com/reoring/schemabind/schema"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Parse    schemabind.ParseOpt
	Validate bind.ValidateOpt
	// Registry receives the server metrics. Nil creates a private registry.
	Registry *prometheus.Registry
	// RequestTimeout bounds each request. Zero means 30 seconds.
	RequestTimeout time.Duration
}

// Server validates documents against one catalogue.
type Server struct {
	cat     *schema.Catalog
	opt     Options
	log     zerolog.Logger
	reg     *prometheus.Registry
	metrics *metrics.Collector
	router  chi.Router
}

// New creates a server for cat.
func New(cat *schema.Catalog, log zerolog.Logger, opt Options) *Server {
	if opt.Registry == nil {
		opt.Registry = prometheus.NewRegistry()
	}
	if opt.RequestTimeout <= 0 {
		opt.RequestTimeout = 30 * time.Second
	}
	s := &Server{
		cat:     cat,
		opt:     opt,
		log:     log,
		reg:     opt.Registry,
		metrics: metrics.NewWithRegistry(opt.Registry),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(s.opt.RequestTimeout))
	r.Use(s.observe)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))

	r.Get("/records", s.listRecords)
	r.Get("/records/{record}", s.recordSchema)

	mwOpt := middleware.Options{
		Parse:    s.opt.Parse,
		Validate: s.opt.Validate,
		OnIssues: s.rejected,
	}
	r.With(middleware.Documents(s.cat, mwOpt)).Post("/validate", s.accepted)

	typed := mwOpt
	typed.RecordFunc = func(r *http.Request) string { return chi.URLParam(r, "record") }
	r.With(s.knownRecord, middleware.Documents(s.cat, typed)).Post("/validate/{record}", s.accepted)

	return r
}

func (s *Server) listRecords(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"records": s.cat.RecordNames(),
		"enums":   s.cat.EnumNames(),
	})
}

func (s *Server) recordSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "record")
	if _, ok := s.cat.Record(name); !ok {
		notFound(w, name)
		return
	}
	js, err := s.cat.JSONSchema(name)
	if err != nil {
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, js)
}

func (s *Server) knownRecord(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "record")
		if _, ok := s.cat.Record(name); !ok {
			notFound(w, name)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func notFound(w http.ResponseWriter, record string) {
	middleware.WriteJSON(w, http.StatusNotFound, middleware.ErrorPayload(schemabind.Issues{
		schemabind.Root().Issue(schemabind.CodeUnknownRecord, "record", record),
	}))
}

func (s *Server) accepted(w http.ResponseWriter, r *http.Request) {
	v, _ := middleware.ViewFromContext(r.Context())
	s.metrics.ObserveDocument(v.TypeName(), nil)
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":  true,
		"record": v.TypeName(),
	})
}

func (s *Server) rejected(r *http.Request, iss schemabind.Issues) {
	record := chi.URLParam(r, "record")
	s.metrics.ObserveDocument(record, iss.Codes())
	s.log.Debug().
		Str("record", record).
		Strs("codes", iss.Codes()).
		Str("request_id", chimw.GetReqID(r.Context())).
		Msg("document rejected")
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			return
		}
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http request")
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		s.metrics.RequestsInFlight.Inc()
		defer s.metrics.RequestsInFlight.Dec()

		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := metrics.StatusLabel(ww.Status())
		s.metrics.RequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		s.metrics.RequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
