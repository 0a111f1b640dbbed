package server

import (
	"context"
	"net/http"

	"github.com/artpar/portfolio/internal/auth"
	"github.com/artpar/portfolio/internal/portfolio"
	"github.com/go-chi/chi/v5"
)

// list adapts a read-only service call to a JSON handler.
func list[T any](s *Server, fn func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if out == nil {
			out = []T{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func galleryQuery(r *http.Request) portfolio.GalleryQuery {
	q := r.URL.Query()
	return portfolio.GalleryQuery{Category: q.Get("category"), Query: q.Get("q")}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	list(s, s.portfolio.Categories)(w, r)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	g, err := s.portfolio.Items(r.Context(), galleryQuery(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	g, err := s.portfolio.Popular(r.Context(), galleryQuery(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleABTests(w http.ResponseWriter, r *http.Request) {
	list(s, s.portfolio.ABTests)(w, r)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	list(s, s.portfolio.Achievements)(w, r)
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	list(s, s.portfolio.Reviews)(w, r)
}

func (s *Server) handleFAQs(w http.ResponseWriter, r *http.Request) {
	list(s, s.portfolio.FAQs)(w, r)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.portfolio.Progress(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleVerifyPrivate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := s.portfolio.CheckPrivatePassword(body.Password); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitPrivate(w http.ResponseWriter, r *http.Request) {
	var form portfolio.PrivateForm
	if !decodeJSON(w, r, &form) {
		return
	}
	sub, err := s.portfolio.SubmitPrivateForm(r.Context(), form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleRequestTag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestedTag string `json:"requested_tag"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	req, err := s.portfolio.RequestTag(r.Context(), body.RequestedTag)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

type countBody struct {
	Count int64 `json:"count"`
}

func (s *Server) handleTrackVisit(w http.ResponseWriter, r *http.Request) {
	n, err := s.portfolio.TrackVisit(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countBody{Count: n})
}

func (s *Server) handleTrackClick(w http.ResponseWriter, r *http.Request) {
	n, err := s.portfolio.TrackClick(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countBody{Count: n})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	session, err := s.auth.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(r.Context(), bearerToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		s.writeError(w, r, auth.ErrNoSession)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
