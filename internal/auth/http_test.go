package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"MiniShop/internal/auth"
)

const jwtSecret = "0123456789abcdef0123456789abcdef"

func newAuthRouter(t *testing.T) (http.Handler, *auth.TokenMaker) {
	t.Helper()

	tm := auth.NewTokenMaker(jwtSecret, time.Hour)
	s := &auth.Server{
		Log:   zap.NewNop(),
		Store: auth.NewMemStore().WithCost(bcrypt.MinCost),
		JWT:   tm,
	}

	r := chi.NewRouter()
	r.Use(auth.Authenticate(tm))
	s.RegisterRoutes(r)
	r.With(auth.RequirePrivate).Get("/profile", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.With(auth.RequirePublic).Get("/login", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r, tm
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postJSON(h http.Handler, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	return nil
}

func TestAuth_FormRegisterAndLogin(t *testing.T) {
	h, tm := newAuthRouter(t)

	rec := postForm(h, "/register", url.Values{
		"email":      {"ada@example.com"},
		"password":   {"password123"},
		"first_name": {"Ada"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = postForm(h, "/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"password123"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/product", rec.Header().Get("Location"))

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)

	claims, err := tm.Parse(c.Value)
	require.NoError(t, err)
	assert.Equal(t, "Ada", claims.FirstName)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(c)
	got := httptest.NewRecorder()
	h.ServeHTTP(got, req)
	assert.Equal(t, http.StatusOK, got.Code)

	// signed-in users are bounced from the login page
	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(c)
	got = httptest.NewRecorder()
	h.ServeHTTP(got, req)
	assert.Equal(t, http.StatusSeeOther, got.Code)
	assert.Equal(t, "/profile", got.Header().Get("Location"))
}

func TestAuth_FormFailuresRedirect(t *testing.T) {
	h, _ := newAuthRouter(t)

	rec := postForm(h, "/register", url.Values{"email": {"ada@example.com"}, "password": {"short"}})
	assert.Equal(t, "/failregister", rec.Header().Get("Location"))

	rec = postForm(h, "/register", url.Values{"email": {"ada@example.com"}, "password": {"password123"}})
	require.Equal(t, "/login", rec.Header().Get("Location"))

	rec = postForm(h, "/register", url.Values{"email": {"ADA@example.com"}, "password": {"password123"}})
	assert.Equal(t, "/failregister", rec.Header().Get("Location"))

	rec = postForm(h, "/login", url.Values{"email": {"ada@example.com"}, "password": {"wrong-pass"}})
	assert.Equal(t, "/faillogin", rec.Header().Get("Location"))
	assert.Nil(t, sessionCookie(rec))
}

func TestAuth_JSONFlow(t *testing.T) {
	h, _ := newAuthRouter(t)

	rec := postJSON(h, "/register", map[string]any{"email": "bob@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = postJSON(h, "/register", map[string]any{"email": "bob@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = postJSON(h, "/login", map[string]any{"email": "bob@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(h, "/login", map[string]any{"email": "bob@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var lr struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lr))
	require.NotEmpty(t, lr.AccessToken)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/current", nil)
	req.Header.Set("Authorization", "Bearer "+lr.AccessToken)
	got := httptest.NewRecorder()
	h.ServeHTTP(got, req)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Contains(t, got.Body.String(), "bob@example.com")

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/current", nil)
	got = httptest.NewRecorder()
	h.ServeHTTP(got, req)
	assert.Equal(t, http.StatusUnauthorized, got.Code)
}

func TestAuth_PrivateRedirectsAnonymous(t *testing.T) {
	h, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "garbage"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestAuth_LogoutClearsCookie(t *testing.T) {
	h, _ := newAuthRouter(t)

	rec := postForm(h, "/logout", url.Values{})
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestRequireRole(t *testing.T) {
	tm := auth.NewTokenMaker(jwtSecret, time.Hour)

	r := chi.NewRouter()
	r.Use(auth.Authenticate(tm))
	r.With(auth.RequireRole(auth.RoleAdmin)).Post("/admin", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name string
		role string
		want int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"shopper", auth.RoleUser, http.StatusForbidden},
		{"admin", auth.RoleAdmin, http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			if tc.role != "" {
				tok, err := tm.New(auth.User{ID: "u_1", Email: "x@example.com", Role: tc.role})
				require.NoError(t, err)
				req.Header.Set("Authorization", "Bearer "+tok)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
