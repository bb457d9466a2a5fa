package auth

import (
	"time"

	"github.com/go-chi/chi/v5"

	"MiniShop/pkg/kit"
)

const (
	loginLimitPerMin    = 5
	registerLimitPerMin = 3
	limitWindow         = 60 * time.Second
)

// RegisterRoutes adds the form and JSON endpoints for register, login and
// logout to r. Register and login are rate limited per client address.
func (s *Server) RegisterRoutes(r chi.Router) {
	loginLimiter := kit.RateLimitByIP(loginLimitPerMin, limitWindow)
	registerLimiter := kit.RateLimitByIP(registerLimitPerMin, limitWindow)

	r.With(registerLimiter).Post("/register", s.handleRegister)
	r.With(loginLimiter).Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.With(RequireUser).Get("/api/sessions/current", s.handleWhoAmI)
}
