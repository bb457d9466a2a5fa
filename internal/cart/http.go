package cart

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniShop/internal/auth"
	"MiniShop/internal/catalog"
	"MiniShop/pkg/kit"
)

type Server struct {
	Service *Service
	Log     *zap.Logger
}

// Routes expects auth.Authenticate upstream; every route needs a user.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireUser)

	r.Get("/mine", s.mine)
	r.Get("/{cid}", s.get)
	r.Post("/{cid}/products/{pid}", s.addItem)

	return r
}

func (s *Server) mine(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	c, err := s.Service.ForUser(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeView(w, r, c, http.StatusOK)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	c, err := s.Service.Get(r.Context(), chi.URLParam(r, "cid"), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeView(w, r, c, http.StatusOK)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	pid, err := catalog.ParseID(chi.URLParam(r, "pid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	qty := 1
	if raw := r.URL.Query().Get("qty"); raw != "" {
		qty, err = strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, ErrBadQty)
			return
		}
	}

	c, err := s.Service.AddItem(r.Context(), chi.URLParam(r, "cid"), claims.UserID, pid, qty)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeView(w, r, c, http.StatusOK)
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request, c Cart, status int) {
	v, err := s.Service.Price(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, status, v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "cart not found", nil)
	case errors.Is(err, ErrForbidden):
		kit.WriteError(w, r, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, ErrBadQty):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrInsufficientStock):
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrInvalidID):
		kit.WriteError(w, r, catalog.StatusFor(err), err.Error(), nil)
	default:
		kit.OrNop(s.Log).Error("cart request failed", zap.Error(err), zap.String("path", r.URL.Path))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
