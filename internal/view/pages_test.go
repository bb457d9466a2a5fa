package view_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"MiniShop/internal/auth"
	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/internal/view"
)

type fixture struct {
	handler http.Handler
	users   *auth.MemStore
	carts   *cart.Service
	catalog *catalog.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	mgr := catalog.NewManager(catalog.NewMemStore(
		catalog.Product{
			ID: 1, Title: "Shirt", Description: "Blue shirt", Code: "SH01",
			Price: decimal.NewFromInt(20), Status: true, Stock: 5, Category: "apparel",
			Thumbnails: []string{"a.jpg"},
		},
		catalog.Product{
			ID: 2, Title: "Mug", Description: "Ceramic mug", Code: "MG01",
			Price: decimal.RequireFromString("7.5"), Status: true, Stock: 12, Category: "kitchen",
			Thumbnails: []string{},
		},
	), nil)
	require.NoError(t, mgr.Init(ctx))

	engine, err := view.NewEngine()
	require.NoError(t, err)

	users := auth.NewMemStore().WithCost(bcrypt.MinCost)
	carts := cart.NewService(cart.NewMemStore(), mgr, nil)

	pages := &view.Pages{Engine: engine, Catalog: mgr, Carts: carts, Users: users}

	r := chi.NewRouter()
	// stands in for auth.Authenticate
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid := r.Header.Get("X-Test-User"); uid != "" {
				r = r.WithContext(auth.ContextWithClaims(r.Context(), auth.Claims{
					UserID: uid, Email: uid + "@example.com", FirstName: "Tester", Role: auth.RoleUser,
				}))
			}
			next.ServeHTTP(w, r)
		})
	})
	pages.RegisterRoutes(r)
	r.NotFound(pages.NotFound)

	return &fixture{handler: r, users: users, carts: carts, catalog: mgr}
}

func (f *fixture) get(t *testing.T, path, user string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestPages_PublicPagesForGuests(t *testing.T) {
	f := newFixture(t)

	for path, want := range map[string]string{
		"/":             "Welcome to MiniShop",
		"/register":     `action="/register"`,
		"/failregister": "Registration failed",
		"/login":        `action="/login"`,
		"/faillogin":    "Wrong email or password",
	} {
		t.Run(path, func(t *testing.T) {
			rec := f.get(t, path, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), want)
		})
	}
}

func TestPages_PublicPagesRedirectSignedInUsers(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/", "/register", "/failregister", "/login"} {
		rec := f.get(t, path, "u1")
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/profile", rec.Header().Get("Location"), path)
	}
}

func TestPages_PrivatePagesRedirectGuests(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/profile", "/product", "/product/1", "/cart", "/cart/c_x"} {
		rec := f.get(t, path, "")
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestPages_Profile(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Create(context.Background(), auth.NewUser{
		ID: "u_ada", Email: "ada@example.com", Password: "supersecret", FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)

	rec := f.get(t, "/profile", u.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ada Lovelace")
	assert.Contains(t, rec.Body.String(), "ada@example.com")

	// the token outlived the user store: fall back to the claims
	rec = f.get(t, "/profile", "ghost")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ghost@example.com")
}

func TestPages_Products(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/product", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/product/1"`)
	assert.Contains(t, body, "Shirt")
	assert.Contains(t, body, "Mug")
	assert.Contains(t, body, "7.50")
}

func TestPages_ProductByID(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/product/1", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Blue shirt")
	assert.Contains(t, rec.Body.String(), "SH01")

	for _, path := range []string{"/product/99", "/product/abc", "/product/0"} {
		rec := f.get(t, path, "u1")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "No such product", path)
	}
}

func TestPages_Cart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.carts.ForUser(ctx, "u1")
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, c.ID, "u1", 1, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, c.ID, "u1", 2, 1)
	require.NoError(t, err)

	rec := f.get(t, "/cart", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Shirt")
	assert.Contains(t, body, "47.50")
	assert.Contains(t, body, c.ID)

	rec = f.get(t, "/cart/"+c.ID, "u1")
	assert.Equal(t, http.StatusOK, rec.Code)

	// a deleted product drops out of the view and is reported
	_, err = f.catalog.Delete(ctx, 2)
	require.NoError(t, err)
	rec = f.get(t, "/cart", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no longer sold")
	assert.Contains(t, rec.Body.String(), "40.00")
}

func TestPages_CartErrors(t *testing.T) {
	f := newFixture(t)

	c, err := f.carts.ForUser(context.Background(), "owner")
	require.NoError(t, err)

	rec := f.get(t, "/cart/"+c.ID, "intruder")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.get(t, "/cart/c_missing", "owner")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPages_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not exist")
}
