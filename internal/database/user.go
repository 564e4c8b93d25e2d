// internal/database/user.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yamabiko/liveroom/internal/models"
)

// CreateUser registers a new user and issues their opaque bearer token.
func (s *Store) CreateUser(ctx context.Context, name string, leaderCardID int64) (*models.User, error) {
	u := models.User{
		Name:         name,
		LeaderCardID: leaderCardID,
		Token:        uuid.NewString(),
	}

	q := `INSERT INTO users (name, token, leader_card_id) VALUES ($1, $2, $3) RETURNING id`
	if err := s.db.QueryRow(ctx, q, u.Name, u.Token, u.LeaderCardID).Scan(&u.ID); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// UserByToken resolves a bearer token to its user, returning
// models.ErrUserNotFound for unknown tokens.
func (s *Store) UserByToken(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	q := `SELECT id, name, leader_card_id FROM users WHERE token = $1`
	err := s.db.QueryRow(ctx, q, token).Scan(&u.ID, &u.Name, &u.LeaderCardID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by token: %w", err)
	}
	u.Token = token
	return &u, nil
}

// UpdateUser rewrites the profile fields of the token's owner.
func (s *Store) UpdateUser(ctx context.Context, token, name string, leaderCardID int64) error {
	q := `UPDATE users SET name = $2, leader_card_id = $3 WHERE token = $1`
	tag, err := s.db.Exec(ctx, q, token, name, leaderCardID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
