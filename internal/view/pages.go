package view

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniShop/internal/auth"
	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/pkg/kit"
)

// Pages serves the HTML side of the shop.
type Pages struct {
	Engine  *Engine
	Catalog *catalog.Manager
	Carts   *cart.Service
	Users   auth.UserStore
	Log     *zap.Logger
}

// RegisterRoutes mounts the guest pages behind RequirePublic and the shopping
// pages behind RequirePrivate. auth.Authenticate must run earlier in the chain.
func (p *Pages) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequirePublic)
		r.Get("/", p.page("home", "Home"))
		r.Get("/register", p.page("register", "Register"))
		r.Get("/failregister", p.page("failregister", "Registration failed"))
		r.Get("/login", p.page("login", "Log in"))
	})
	r.Get("/faillogin", p.page("faillogin", "Login failed"))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequirePrivate)
		r.Get("/profile", p.profile)
		r.Get("/product", p.products)
		r.Get("/product/{pid}", p.product)
		r.Get("/cart", p.myCart)
		r.Get("/cart/{cid}", p.cartByID)
	})
}

// NotFound renders the 404 page for unknown routes.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusNotFound, "notfound", "Not found", nil)
}

func (p *Pages) page(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.render(w, r, http.StatusOK, name, title, nil)
	}
}

func (p *Pages) profile(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	u, err := p.Users.Get(r.Context(), claims.UserID)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		// a valid token can outlive an in-memory user store
		u = auth.User{ID: claims.UserID, Email: claims.Email, FirstName: claims.FirstName, Role: claims.Role}
	case err != nil:
		p.fail(w, r, err)
		return
	}
	p.render(w, r, http.StatusOK, "profile", "Profile", u)
}

func (p *Pages) products(w http.ResponseWriter, r *http.Request) {
	list, err := p.Catalog.List(r.Context())
	if err != nil {
		p.fail(w, r, err)
		return
	}
	p.render(w, r, http.StatusOK, "products", "Products", list)
}

func (p *Pages) product(w http.ResponseWriter, r *http.Request) {
	id, err := catalog.ParseID(chi.URLParam(r, "pid"))
	if err != nil {
		p.render(w, r, http.StatusNotFound, "notfound", "Not found", "No such product.")
		return
	}

	prod, err := p.Catalog.Get(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrInvalidID):
		p.render(w, r, http.StatusNotFound, "notfound", "Not found", "No such product.")
	case err != nil:
		p.fail(w, r, err)
	default:
		p.render(w, r, http.StatusOK, "product", prod.Title, prod)
	}
}

func (p *Pages) myCart(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	c, err := p.Carts.ForUser(r.Context(), claims.UserID)
	if err != nil {
		p.fail(w, r, err)
		return
	}
	p.renderCart(w, r, c)
}

func (p *Pages) cartByID(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	c, err := p.Carts.Get(r.Context(), chi.URLParam(r, "cid"), claims.UserID)
	switch {
	case errors.Is(err, cart.ErrNotFound):
		p.render(w, r, http.StatusNotFound, "notfound", "Not found", "No such cart.")
	case errors.Is(err, cart.ErrForbidden):
		p.render(w, r, http.StatusForbidden, "error", "Forbidden", "This cart belongs to someone else.")
	case err != nil:
		p.fail(w, r, err)
	default:
		p.renderCart(w, r, c)
	}
}

func (p *Pages) renderCart(w http.ResponseWriter, r *http.Request, c cart.Cart) {
	v, err := p.Carts.Price(r.Context(), c)
	if err != nil {
		p.fail(w, r, err)
		return
	}
	p.render(w, r, http.StatusOK, "cart", "Cart", v)
}

func (p *Pages) fail(w http.ResponseWriter, r *http.Request, err error) {
	kit.OrNop(p.Log).Error("page failed", zap.Error(err), zap.String("path", r.URL.Path))
	p.render(w, r, http.StatusInternalServerError, "error", "Server error", nil)
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	td := TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if c, ok := auth.ClaimsFromContext(r.Context()); ok {
		td.User = &c
	}

	if err := p.Engine.Render(w, status, name, td); err != nil {
		kit.OrNop(p.Log).Error("render failed", zap.Error(err), zap.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
