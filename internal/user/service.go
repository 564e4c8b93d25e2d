// internal/user/service.go
package user

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/yamabiko/liveroom/internal/cache"
	"github.com/yamabiko/liveroom/internal/models"
)

// Store is the persistence the user directory needs.
type Store interface {
	CreateUser(ctx context.Context, name string, leaderCardID int64) (*models.User, error)
	UserByToken(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, token, name string, leaderCardID int64) error
}

// Service is the user directory: it issues bearer tokens at registration and
// resolves them on every authenticated request, with an optional Redis
// read-through cache on the lookup path.
type Service struct {
	store  Store
	cache  *cache.Client
	logger *log.Logger
}

// NewService returns a Service. tokenCache may be nil to disable caching.
func NewService(store Store, tokenCache *cache.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New()
	}
	return &Service{store: store, cache: tokenCache, logger: logger}
}

// Register creates a user and returns their freshly issued bearer token.
func (s *Service) Register(ctx context.Context, name string, leaderCardID int64) (string, error) {
	u, err := s.store.CreateUser(ctx, name, leaderCardID)
	if err != nil {
		return "", fmt.Errorf("register user: %w", err)
	}
	s.logger.WithFields(log.Fields{
		"user_id": u.ID,
		"name":    u.Name,
	}).Info("user registered")
	return u.Token, nil
}

// Authenticate resolves a bearer token to its user, returning
// models.ErrUserNotFound for unknown tokens. Cache errors degrade to a
// direct store lookup rather than failing the request.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if u, err := s.cache.GetUser(ctx, token); err != nil {
		s.logger.WithError(err).Debug("token cache read failed")
	} else if u != nil {
		return u, nil
	}

	u, err := s.store.UserByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetUser(ctx, u); err != nil {
		s.logger.WithError(err).Debug("token cache write failed")
	}
	return u, nil
}

// Update rewrites the token owner's profile and invalidates the cached copy.
func (s *Service) Update(ctx context.Context, token, name string, leaderCardID int64) error {
	if err := s.store.UpdateUser(ctx, token, name, leaderCardID); err != nil {
		return err
	}
	if err := s.cache.DeleteUser(ctx, token); err != nil {
		s.logger.WithError(err).Debug("token cache invalidation failed")
	}
	return nil
}
