// internal/handlers/user.go
package handlers

import (
	"net/http"
)

type createUserRequest struct {
	UserName     string `json:"user_name"`
	LeaderCardID int64  `json:"leader_card_id"`
}

type createUserResponse struct {
	UserToken string `json:"user_token"`
}

// CreateUser registers a new user and returns their bearer token.
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserName == "" {
		http.Error(w, "user_name is required", http.StatusBadRequest)
		return
	}

	token, err := s.users.Register(r.Context(), req.UserName, req.LeaderCardID)
	if err != nil {
		s.logger.WithError(err).Error("user registration failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, createUserResponse{UserToken: token})
}

// Me returns the caller's profile, token excluded.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	writeJSON(w, u)
}

// UpdateUser rewrites the caller's profile.
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req createUserRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserName == "" {
		http.Error(w, "user_name is required", http.StatusBadRequest)
		return
	}

	if err := s.users.Update(r.Context(), u.Token, req.UserName, req.LeaderCardID); err != nil {
		s.logger.WithError(err).Error("user update failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, struct{}{})
}
