package shop

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"MiniShop/internal/auth"
	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/internal/view"
	"MiniShop/pkg/kit"
)

type HTTPDeps = kit.RouterOptions

type Deps struct {
	Catalog *catalog.Manager
	Users   auth.UserStore
	Carts   *cart.Service
	JWT     *auth.TokenMaker
	Views   *view.Engine
}

const readyTimeout = 2 * time.Second

func (d Deps) validate() error {
	switch {
	case d.Catalog == nil:
		return errors.New("shop: catalog manager is required")
	case d.Users == nil:
		return errors.New("shop: user store is required")
	case d.Carts == nil:
		return errors.New("shop: cart service is required")
	case d.JWT == nil:
		return errors.New("shop: token maker is required")
	case d.Views == nil:
		return errors.New("shop: view engine is required")
	}
	return nil
}

// NewHandler wires the whole shop into one router: session endpoints, the
// product and cart APIs and the HTML pages.
func NewHandler(deps Deps, httpDeps HTTPDeps) (http.Handler, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	r := kit.NewRouter(httpDeps, auth.Authenticate(deps.JWT))
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	sessions := &auth.Server{
		Log:          httpDeps.Log,
		Store:        deps.Users,
		JWT:          deps.JWT,
		SecureCookie: httpDeps.Production,
	}
	sessions.RegisterRoutes(r)

	products := &catalog.Server{
		Manager: deps.Catalog,
		Log:     httpDeps.Log,
		Guard:   auth.RequireRole(auth.RoleAdmin),
	}
	r.Mount("/api/products", products.Routes())

	carts := &cart.Server{Service: deps.Carts, Log: httpDeps.Log}
	r.Mount("/api/carts", carts.Routes())

	pages := &view.Pages{
		Engine:  deps.Views,
		Catalog: deps.Catalog,
		Carts:   deps.Carts,
		Users:   deps.Users,
		Log:     httpDeps.Log,
	}
	pages.RegisterRoutes(r)
	r.NotFound(pages.NotFound)

	return r, nil
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	log = kit.OrNop(log)
	checks := []struct {
		name string
		ping func(context.Context) error
	}{
		{"catalog", deps.Catalog.Ping},
		{"users", deps.Users.Ping},
		{"carts", deps.Carts.Ping},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for _, c := range checks {
			if err := c.ping(ctx); err != nil {
				log.Warn("readyz failed: "+c.name, zap.Error(err))
				kit.WriteError(w, r, http.StatusServiceUnavailable, c.name+" not ready", nil)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
