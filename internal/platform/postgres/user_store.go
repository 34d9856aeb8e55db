// Package postgres implements the store interfaces against PostgreSQL.
// All SQL is built with goqu and executed through the caller's DBTX, so
// the same code runs against a pool or a request-scoped transaction.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"

	"github.com/nwmlabs/nwm-api/internal/domain"
	"github.com/nwmlabs/nwm-api/internal/query"
	"github.com/nwmlabs/nwm-api/internal/record"
	"github.com/nwmlabs/nwm-api/internal/store"
)

var pg = goqu.Dialect("postgres")

// UserStore implements store.UserStore against PostgreSQL.
type UserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewUserStore creates the PostgreSQL user store. It accepts a connection
// pool or transaction managed by the caller.
func NewUserStore(db store.DBTX, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*UserStore)(nil)

// WithTx returns a UserStore bound to the given transaction.
func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &UserStore{db: tx, logger: s.logger}
}

// userColumns returns the column list in schema declaration order, so scan
// order and wire order never drift apart.
func userColumns() []any {
	cols := domain.UserSchema.Columns()
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

// Create implements store.UserStore.Create.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	row, err := userRow(user)
	if err != nil {
		return err
	}

	sqlStr, args, err := pg.Insert(domain.UserSchema.Table).
		Prepared(true).
		Rows(row).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return MapError(err)
	}
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getBy(ctx, goqu.C("id").Eq(id))
}

// GetByUsername implements store.UserStore.GetByUsername.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getBy(ctx, goqu.C("username").Eq(username))
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getBy(ctx, goqu.C("email").Eq(email))
}

func (s *UserStore) getBy(ctx context.Context, cond goqu.Expression) (*domain.User, error) {
	sqlStr, args, err := pg.From(domain.UserSchema.Table).
		Prepared(true).
		Select(userColumns()...).
		Where(cond).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	row := s.db.QueryRowContext(ctx, sqlStr, args...)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List implements store.UserStore.List. When no sort is requested, rows
// come back in signup order so pagination stays deterministic.
func (s *UserStore) List(ctx context.Context, opts query.Options) ([]*domain.User, error) {
	ds := pg.From(domain.UserSchema.Table).
		Prepared(true).
		Select(userColumns()...)
	if opts.Sort.IsZero() {
		ds = ds.Order(goqu.I("signup").Asc())
	}
	ds = query.Apply(ds, opts)

	sqlStr, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return users, nil
}

// Count implements store.UserStore.Count.
func (s *UserStore) Count(ctx context.Context, filter query.Filter) (int64, error) {
	ds := pg.From(domain.UserSchema.Table).
		Prepared(true).
		Select(goqu.COUNT(goqu.Star()))
	ds = query.ApplyFilter(ds, filter)

	sqlStr, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building count: %w", err)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// Update implements store.UserStore.Update.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	row, err := userRow(user)
	if err != nil {
		return err
	}
	delete(row, "id")

	sqlStr, args, err := pg.Update(domain.UserSchema.Table).
		Prepared(true).
		Set(row).
		Where(goqu.C("id").Eq(user.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return MapError(err)
	}
	return requireAffected(res)
}

// Delete implements store.UserStore.Delete.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	sqlStr, args, err := pg.Delete(domain.UserSchema.Table).
		Prepared(true).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return MapError(err)
	}
	return requireAffected(res)
}

// DeleteStaleSignups implements store.UserStore.DeleteStaleSignups.
func (s *UserStore) DeleteStaleSignups(ctx context.Context, before time.Time) (int64, error) {
	sqlStr, args, err := pg.Delete(domain.UserSchema.Table).
		Prepared(true).
		Where(
			goqu.C("status").Eq(domain.StatusNonActivated),
			goqu.C("last_login").IsNull(),
			goqu.C("signup").Lt(before.UTC()),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if n == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// userRow builds the column map for insert/update statements.
func userRow(user *domain.User) (goqu.Record, error) {
	profile, err := record.EncodeStored(user.Profile)
	if err != nil {
		return nil, fmt.Errorf("%w: profile: %v", store.ErrInvalidEntity, err)
	}

	row := goqu.Record{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"status":   user.Status,
		"api_key":  user.APIKey,
		"signup":   user.Signup.UTC(),
	}

	if user.InvitedBy != nil {
		row["invited_by"] = *user.InvitedBy
	} else {
		row["invited_by"] = nil
	}
	if user.LastLogin != nil {
		row["last_login"] = user.LastLogin.UTC()
	} else {
		row["last_login"] = nil
	}
	if profile != nil {
		row["profile"] = *profile
	} else {
		row["profile"] = nil
	}
	if user.Password != "" {
		row["password"] = user.Password
	} else {
		row["password"] = nil
	}
	return row, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser reads one row in schema column order. A profile column that
// fails to parse is surfaced as a corruption fault, not a client error.
func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user      domain.User
		invitedBy sql.NullString
		lastLogin sql.NullTime
		profile   sql.NullString
		password  sql.NullString
	)

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Status,
		&user.APIKey,
		&invitedBy,
		&user.Signup,
		&lastLogin,
		&profile,
		&password,
	)
	if err != nil {
		return nil, MapError(err)
	}

	if invitedBy.Valid {
		user.InvitedBy = &invitedBy.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		user.LastLogin = &t
	}
	if profile.Valid {
		doc, decErr := record.DecodeStored(profile.String)
		if decErr != nil {
			return nil, decErr
		}
		user.Profile = doc
	}
	if password.Valid {
		user.Password = password.String
	}
	user.Signup = user.Signup.UTC()

	return &user, nil
}
