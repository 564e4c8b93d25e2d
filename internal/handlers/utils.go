// internal/handlers/utils.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/yamabiko/liveroom/internal/models"
)

// bearerToken extracts the credential from an "Authorization: Bearer ..."
// header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// authenticate resolves the request's bearer token to a user, writing the
// 401 itself when that fails.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return nil, false
	}

	u, err := s.users.Authenticate(r.Context(), token)
	if errors.Is(err, models.ErrUserNotFound) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return nil, false
	}
	if err != nil {
		s.logger.WithError(err).Error("token lookup failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return u, true
}

// decode parses the JSON request body into dst, writing the 400 itself on
// failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
