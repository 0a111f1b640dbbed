package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/artpar/portfolio/internal/auth"
	"github.com/artpar/portfolio/internal/content"
	"github.com/artpar/portfolio/internal/portfolio"
	"github.com/artpar/portfolio/internal/star"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps an operation error to a status and a message safe to
// show to users.
func statusFor(err error) (int, string) {
	var ve *portfolio.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Error()
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, auth.ErrNoSession):
		return http.StatusUnauthorized, "Please sign in"
	case errors.Is(err, content.ErrNotFound), errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, star.ErrLimitReached):
		return http.StatusConflict, fmt.Sprintf("You can only star up to %d items per category", star.MaxPerCategory)
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict, "User already exists"
	}

	var op *portfolio.OpError
	if errors.As(err, &op) {
		return http.StatusInternalServerError, op.Message()
	}
	return http.StatusInternalServerError, "Something went wrong. Please try again."
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return false
	}
	return true
}
