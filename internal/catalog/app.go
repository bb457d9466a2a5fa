package catalog

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"MiniShop/pkg/kit"
)

type HTTPDeps = kit.RouterOptions

const readyTimeout = time.Second

// NewHandler serves the catalog API on its own, without views or sessions.
func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := kit.NewRouter(deps)
	r.Get("/readyz", s.readyz)
	r.Mount("/api/products", s.Routes())
	return r
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Manager.Ping(ctx); err != nil {
		kit.OrNop(s.Log).Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}
