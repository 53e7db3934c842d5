package http

import (
	"context"
	"net/http"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Items      *ItemHandler
	Health     Pinger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Items != nil {
		mux.HandleFunc("GET "+BasePath, cfg.Items.List)
		mux.HandleFunc("GET "+BasePath+"/add", cfg.Items.AddForm)
		mux.HandleFunc("POST "+BasePath+"/add", cfg.Items.Add)
		mux.HandleFunc("GET "+BasePath+"/{itemId}", cfg.Items.Detail)
		mux.HandleFunc("GET "+BasePath+"/{itemId}/edit", cfg.Items.EditForm)
		mux.HandleFunc("POST "+BasePath+"/{itemId}/edit", cfg.Items.Edit)
		mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, BasePath, http.StatusFound)
		})
	}

	mux.HandleFunc("GET /healthz", healthHandler(cfg.Health))

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func healthHandler(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if pinger != nil {
			if err := pinger.Ping(r.Context()); err != nil {
				handlerLogger(r.Context(), nil, "HealthHandler", "Check").ErrorContext(r.Context(), "health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable\n"))
				return
			}
		}
		_, _ = w.Write([]byte("ok\n"))
	}
}
