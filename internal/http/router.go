package http

import (
	"log/slog"
	"net/http"
	"time"

	"swipehire/internal/domain/session"
	"swipehire/internal/http/handlers"
	httpmw "swipehire/internal/http/middleware"
	"swipehire/internal/metrics"
)

type RouterDependencies struct {
	ApplicationHandler *handlers.ApplicationHandler
	ConnectionHandler  *handlers.ConnectionHandler
	JobHandler         *handlers.JobHandler
	MetricsHandler     *handlers.MetricsHandler
	Realtime           http.Handler
	AuthMiddleware     *httpmw.AuthMiddleware
	Limiter            httpmw.Limiter
	ActionRateLimit    int
	Metrics            *metrics.Collector
	Logger             *slog.Logger
	RequestTimeout     time.Duration
}

type Router struct {
	deps     RouterDependencies
	api      http.Handler
	realtime http.Handler
	limit    httpmw.Middleware
}

const (
	maxBodyBytes    = 1 << 20
	rateLimitWindow = time.Minute
)

func NewRouter(deps RouterDependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	r := &Router{deps: deps}
	r.limit = httpmw.RateLimit(deps.Limiter, httpmw.ActorKey("actions"), deps.ActionRateLimit, rateLimitWindow)
	r.api = httpmw.Chain(r.baseHandler(), httpmw.RequestID, httpmw.Logging(deps.Logger), httpmw.BodyLimit(maxBodyBytes), httpmw.Recover(deps.Logger), httpmw.Metrics(deps.Metrics), httpmw.Timeout(deps.RequestTimeout))
	// long-lived upgrades skip the body limit and request timeout
	if deps.Realtime != nil {
		r.realtime = httpmw.Chain(deps.AuthMiddleware.Authenticate(deps.Realtime), httpmw.RequestID, httpmw.Logging(deps.Logger), httpmw.Recover(deps.Logger), httpmw.Metrics(deps.Metrics))
	}
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path == "/ws" && r.realtime != nil {
		r.realtime.ServeHTTP(w, req)
		return
	}
	r.api.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		switch {
		case req.Method == http.MethodGet && path == "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		case req.Method == http.MethodGet && path == "/metrics":
			r.deps.MetricsHandler.Get(w, req)
			return
		case req.Method == http.MethodPut && path == "/internal/jobs":
			r.deps.JobHandler.Sync(w, req)
			return
		}

		if path == "/applications" || path == "/connections" {
			protected := r.deps.AuthMiddleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				r.handleProtected(w, req)
			}))
			protected.ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	developer := httpmw.RequireRole(session.RoleDeveloper)

	switch {
	case req.Method == http.MethodGet && path == "/applications":
		r.deps.ApplicationHandler.List(w, req)
		return
	case req.Method == http.MethodPost && path == "/applications":
		httpmw.Chain(http.HandlerFunc(r.deps.ApplicationHandler.Swipe), developer, r.limit).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPut && path == "/applications":
		r.limit(http.HandlerFunc(r.deps.ApplicationHandler.Act)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/connections":
		developer(http.HandlerFunc(r.deps.ConnectionHandler.List)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && path == "/connections":
		httpmw.Chain(http.HandlerFunc(r.deps.ConnectionHandler.Swipe), developer, r.limit).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPut && path == "/connections":
		httpmw.Chain(http.HandlerFunc(r.deps.ConnectionHandler.Respond), developer, r.limit).ServeHTTP(w, req)
		return
	}

	w.Header().Set("Allow", "GET, POST, PUT")
	w.WriteHeader(http.StatusMethodNotAllowed)
}
