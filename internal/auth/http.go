package auth

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MiniShop/pkg/kit"
)

const (
	SessionCookie  = "minishop_session"
	minPasswordLen = 8
)

type Server struct {
	Log   *zap.Logger
	Store UserStore
	JWT   *TokenMaker

	// SecureCookie marks the session cookie HTTPS-only.
	SecureCookie bool
}

type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
}

var (
	errCredentialsRequired = errors.New("email/password required")
	errPasswordTooShort    = errors.New("password too short")
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	asJSON := isJSON(r)

	var req registerReq
	if err := decodeForm(w, r, &req, func(f formValues) {
		req.Email = f.Get("email")
		req.Password = f.Get("password")
		req.FirstName = f.Get("first_name")
		req.LastName = f.Get("last_name")
	}); err != nil {
		s.registerFailed(w, r, asJSON, http.StatusBadRequest, "bad request", err)
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Password = normalizePassword(req.Password)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if req.Email == "" || req.Password == "" {
		s.registerFailed(w, r, asJSON, http.StatusBadRequest, errCredentialsRequired.Error(), nil)
		return
	}
	if len(req.Password) < minPasswordLen {
		s.registerFailed(w, r, asJSON, http.StatusBadRequest, errPasswordTooShort.Error(), nil)
		return
	}

	_, err := s.Store.Create(r.Context(), NewUser{
		ID:        "u_" + uuid.NewString(),
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      RoleUser,
	})
	if errors.Is(err, ErrEmailExists) {
		s.registerFailed(w, r, asJSON, http.StatusConflict, err.Error(), nil)
		return
	}
	if err != nil {
		kit.OrNop(s.Log).Error("create user failed", zap.Error(err))
		s.registerFailed(w, r, asJSON, http.StatusInternalServerError, "server error", nil)
		return
	}

	if asJSON {
		w.WriteHeader(http.StatusCreated)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) registerFailed(w http.ResponseWriter, r *http.Request, asJSON bool, status int, msg string, cause error) {
	if asJSON {
		var details any
		if cause != nil {
			details = map[string]any{"cause": cause.Error()}
		}
		kit.WriteError(w, r, status, msg, details)
		return
	}
	http.Redirect(w, r, "/failregister", http.StatusSeeOther)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	asJSON := isJSON(r)

	var req loginReq
	if err := decodeForm(w, r, &req, func(f formValues) {
		req.Email = f.Get("email")
		req.Password = f.Get("password")
	}); err != nil {
		s.loginFailed(w, r, asJSON, http.StatusBadRequest, "bad request")
		return
	}

	if normalizeEmail(req.Email) == "" || normalizePassword(req.Password) == "" {
		s.loginFailed(w, r, asJSON, http.StatusBadRequest, errCredentialsRequired.Error())
		return
	}

	u, err := s.Store.Verify(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		s.loginFailed(w, r, asJSON, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		kit.OrNop(s.Log).Error("verify user failed", zap.Error(err))
		s.loginFailed(w, r, asJSON, http.StatusInternalServerError, "server error")
		return
	}

	tok, err := s.JWT.New(u)
	if err != nil {
		kit.OrNop(s.Log).Error("token issue", zap.Error(err))
		s.loginFailed(w, r, asJSON, http.StatusInternalServerError, "server error")
		return
	}

	if asJSON {
		kit.WriteJSON(w, http.StatusOK, loginResp{AccessToken: tok})
		return
	}

	http.SetCookie(w, s.sessionCookie(tok, int(s.JWT.TTL().Seconds())))
	http.Redirect(w, r, "/product", http.StatusSeeOther)
}

func (s *Server) loginFailed(w http.ResponseWriter, r *http.Request, asJSON bool, status int, msg string) {
	if asJSON {
		kit.WriteError(w, r, status, msg, nil)
		return
	}
	http.Redirect(w, r, "/faillogin", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.sessionCookie("", -1))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":    claims.UserID,
		"email":      claims.Email,
		"first_name": claims.FirstName,
		"role":       claims.Role,
	})
}

func (s *Server) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

type formValues interface {
	Get(key string) string
}

// decodeForm fills dst from a JSON body, or calls fromForm with the parsed
// urlencoded/multipart form otherwise.
func decodeForm(w http.ResponseWriter, r *http.Request, dst any, fromForm func(formValues)) error {
	if isJSON(r) {
		return kit.DecodeJSON(w, r, dst)
	}

	r.Body = http.MaxBytesReader(w, r.Body, kit.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm(r.PostForm)
	return nil
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
