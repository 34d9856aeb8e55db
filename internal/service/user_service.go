// Package service orchestrates user lifecycle operations on top of the
// store and the credential-hashing collaborator.
package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nwmlabs/nwm-api/internal/domain"
	"github.com/nwmlabs/nwm-api/internal/service/auth"
	"github.com/nwmlabs/nwm-api/internal/store"
)

// NonActivationAge is how long a never-logged-in, non-activated account may
// linger before PurgeStaleSignups removes it.
const NonActivationAge = 30 * 24 * time.Hour

const apiKeyBytes = 12

// UserService implements the user lifecycle: registration defaults,
// credential hashing, status transitions, and signup hygiene.
type UserService struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a UserService.
func NewUserService(users store.UserStore, hasher auth.PasswordHasher, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:  users,
		hasher: hasher,
		logger: logger.With(slog.String("component", "user_service")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithTx returns a UserService whose store is bound to the transaction.
func (s *UserService) WithTx(tx *sql.Tx) *UserService {
	return &UserService{
		users:  s.users.WithTx(tx),
		hasher: s.hasher,
		logger: s.logger,
		now:    s.now,
	}
}

// Register finishes a new user record and persists it: email is
// lowercased, the api key generated, signup stamped, and any plaintext
// password replaced by its hash before the record touches the store.
func (s *UserService) Register(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	user.Signup = s.now()
	user.Status = domain.StatusNonActivated

	key, err := generateAPIKey()
	if err != nil {
		return fmt.Errorf("generating api key: %w", err)
	}
	user.APIKey = key

	if user.Password != "" {
		hashed, err := s.hasher.Hash(user.Password)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		user.Password = hashed
	}

	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return nil
}

// Save validates and persists an updated user record, lowercasing the
// email and hashing a newly supplied plaintext password.
func (s *UserService) Save(ctx context.Context, user *domain.User, newPassword string) error {
	user.Email = strings.ToLower(user.Email)

	if newPassword != "" {
		hashed, err := s.hasher.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		user.Password = hashed
	}

	return s.users.Update(ctx, user)
}

// Activate performs the named status transition and persists it.
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Activate()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user activated", slog.String("user_id", id.String()))
	return user, nil
}

// Deactivate performs the named status transition and persists it.
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Deactivate()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user deactivated", slog.String("user_id", id.String()))
	return user, nil
}

// VerifyAPIKey checks a presented api key against a user's stored key.
func (s *UserService) VerifyAPIKey(ctx context.Context, username, key string) (bool, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return user.APIKey == key, nil
}

// PurgeStaleSignups deletes non-activated accounts older than
// NonActivationAge that never logged in. It runs in its own transaction;
// it is maintenance work, not request work.
func (s *UserService) PurgeStaleSignups(ctx context.Context, db *sql.DB) (int64, error) {
	cutoff := s.now().Add(-NonActivationAge)

	var purged int64
	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		n, err := s.users.WithTx(tx).DeleteStaleSignups(ctx, cutoff)
		if err != nil {
			return err
		}
		purged = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	if purged > 0 {
		s.logger.Info("purged stale signups",
			slog.Int64("count", purged),
			slog.Time("cutoff", cutoff))
	}
	return purged, nil
}

// generateAPIKey returns a random hex api key.
func generateAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
