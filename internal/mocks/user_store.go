// Package mocks provides in-memory test doubles for the store interfaces.
package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nwmlabs/nwm-api/internal/domain"
	"github.com/nwmlabs/nwm-api/internal/query"
	"github.com/nwmlabs/nwm-api/internal/store"
)

// UserStore is an in-memory store.UserStore. Reads return copies so a test
// mutating a fetched record does not silently change the stored one, which
// mirrors how rows behave against a real database.
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	// Err, when set, is returned by every operation. It simulates a
	// database that has gone away.
	Err error
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*domain.User)}
}

var _ store.UserStore = (*UserStore)(nil)

func clone(u *domain.User) *domain.User {
	c := *u
	if u.InvitedBy != nil {
		v := *u.InvitedBy
		c.InvitedBy = &v
	}
	if u.LastLogin != nil {
		v := *u.LastLogin
		c.LastLogin = &v
	}
	return &c
}

// Create implements store.UserStore.Create, enforcing the username and
// email uniqueness the real schema guarantees.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	s.users[user.ID] = clone(user)
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return clone(user), nil
}

// GetByUsername implements store.UserStore.GetByUsername.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			return clone(user), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return clone(user), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// List implements store.UserStore.List. Equality predicates and pagination
// are honored; everything else a handler test needs goes through them.
func (s *UserStore) List(ctx context.Context, opts query.Options) ([]*domain.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []*domain.User
	for _, user := range s.users {
		if matches(user, opts.Filter) {
			users = append(users, clone(user))
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Signup.Before(users[j].Signup)
	})

	offset := int64(0)
	if opts.Page.Offset != nil {
		offset = *opts.Page.Offset
	}
	if offset > int64(len(users)) {
		offset = int64(len(users))
	}
	users = users[offset:]
	if opts.Page.Limit != nil && *opts.Page.Limit < int64(len(users)) {
		users = users[:*opts.Page.Limit]
	}
	return users, nil
}

// Count implements store.UserStore.Count.
func (s *UserStore) Count(ctx context.Context, filter query.Filter) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, user := range s.users {
		if matches(user, filter) {
			n++
		}
	}
	return n, nil
}

// Update implements store.UserStore.Update.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	for _, existing := range s.users {
		if existing.ID == user.ID {
			continue
		}
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	s.users[user.ID] = clone(user)
	return nil
}

// Delete implements store.UserStore.Delete.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// DeleteStaleSignups implements store.UserStore.DeleteStaleSignups.
func (s *UserStore) DeleteStaleSignups(ctx context.Context, before time.Time) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, user := range s.users {
		if user.Status == domain.StatusNonActivated && user.LastLogin == nil && user.Signup.Before(before) {
			delete(s.users, id)
			n++
		}
	}
	return n, nil
}

// WithTx implements store.UserStore.WithTx. The in-memory store has no
// transactions, so the same instance serves either way.
func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return s
}

func matches(user *domain.User, filter query.Filter) bool {
	for _, p := range filter.Predicates {
		v := user.Get(p.Field)
		switch p.Op {
		case query.OpEq:
			if v != p.Value {
				return false
			}
		case query.OpNe:
			if v == p.Value {
				return false
			}
		case query.OpIn:
			found := false
			for _, candidate := range p.Value.([]any) {
				if v == candidate {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			// Range and pattern operators are exercised against the real
			// database; handler tests do not rely on them.
		}
	}
	return true
}
