// Package domain holds the record types managed by the API.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nwmlabs/nwm-api/internal/record"
)

// ErrValidation is the base error every field-level validation error wraps.
var ErrValidation = errors.New("invalid user")

// Field-level validation errors.
var (
	ErrEmptyUserID   = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyUsername = fmt.Errorf("%w: username cannot be empty", ErrValidation)
	ErrEmptyEmail    = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrInvalidEmail  = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrInvalidStatus = fmt.Errorf("%w: unknown status", ErrValidation)
)

// User account statuses. The set is closed; filters and updates naming a
// value outside it are rejected.
const (
	StatusNonActivated = "non_activated"
	StatusActive       = "active"
	StatusDisabled     = "disabled"
)

// Statuses lists the closed status value set in a stable order.
var Statuses = []string{StatusNonActivated, StatusActive, StatusDisabled}

// UserSchema is the static field-descriptor table for User. The mapper and
// query builder operate over this table; field order here is wire order.
var UserSchema = &record.Schema{
	Name:  "User",
	Table: "users",
	Fields: []record.Field{
		{Name: "id", Type: record.UUID, PrimaryKey: true},
		{Name: "username", Type: record.String},
		{Name: "email", Type: record.String},
		{Name: "status", Type: record.String, Enum: Statuses, HasDefault: true},
		{Name: "api_key", Type: record.String, Generated: true},
		{Name: "invited_by", Type: record.String, Nullable: true},
		{Name: "signup", Type: record.Timestamp, Generated: true},
		{Name: "last_login", Type: record.Timestamp, Nullable: true},
		{Name: "profile", Type: record.Document, Nullable: true},
		{Name: "password", Type: record.String, Nullable: true, Hidden: true},
	},
}

// User represents one account. Nullable fields use pointers so a stored
// null survives the round trip through the mapper.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Status    string
	APIKey    string
	InvitedBy *string
	Signup    time.Time
	LastLogin *time.Time
	Profile   any
	Password  string // hashed at rest; never serialized to the wire
}

// NewUser returns a User with a fresh ID and the default status. The
// service layer fills in the server-owned fields before persisting.
func NewUser() *User {
	return &User{
		ID:     uuid.New(),
		Status: StatusNonActivated,
	}
}

// Schema implements record.Record.
func (u *User) Schema() *record.Schema {
	return UserSchema
}

// Get implements record.Record. Null-valued fields return nil.
func (u *User) Get(field string) any {
	switch field {
	case "id":
		return u.ID
	case "username":
		return u.Username
	case "email":
		return u.Email
	case "status":
		return u.Status
	case "api_key":
		return u.APIKey
	case "invited_by":
		if u.InvitedBy == nil {
			return nil
		}
		return *u.InvitedBy
	case "signup":
		return u.Signup
	case "last_login":
		if u.LastLogin == nil {
			return nil
		}
		return *u.LastLogin
	case "profile":
		return u.Profile
	case "password":
		if u.Password == "" {
			return nil
		}
		return u.Password
	default:
		return nil
	}
}

// Set implements record.Record. A nil value resets the field to its
// default: null for nullable fields, the zero value otherwise, and the
// default status for the status enum.
func (u *User) Set(field string, value any) error {
	switch field {
	case "id":
		if value == nil {
			u.ID = uuid.Nil
			return nil
		}
		id, ok := value.(uuid.UUID)
		if !ok {
			return fmt.Errorf("%w: id must be a uuid", record.ErrInvalidValue)
		}
		u.ID = id
	case "username":
		return setString(&u.Username, field, value)
	case "email":
		return setString(&u.Email, field, value)
	case "status":
		if value == nil {
			u.Status = StatusNonActivated
			return nil
		}
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: status must be a string", record.ErrInvalidValue)
		}
		u.Status = s
	case "api_key":
		return setString(&u.APIKey, field, value)
	case "invited_by":
		return setNullString(&u.InvitedBy, field, value)
	case "signup":
		if value == nil {
			u.Signup = time.Time{}
			return nil
		}
		ts, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("%w: signup must be a timestamp", record.ErrInvalidValue)
		}
		u.Signup = ts
	case "last_login":
		if value == nil {
			u.LastLogin = nil
			return nil
		}
		ts, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("%w: last_login must be a timestamp", record.ErrInvalidValue)
		}
		u.LastLogin = &ts
	case "profile":
		u.Profile = value
	case "password":
		return setString(&u.Password, field, value)
	default:
		return fmt.Errorf("%w: %q", record.ErrUnknownField, field)
	}
	return nil
}

func setString(dst *string, field string, value any) error {
	if value == nil {
		*dst = ""
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: %s must be a string", record.ErrInvalidValue, field)
	}
	*dst = s
	return nil
}

func setNullString(dst **string, field string, value any) error {
	if value == nil {
		*dst = nil
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: %s must be a string", record.ErrInvalidValue, field)
	}
	*dst = &s
	return nil
}

// Validate checks the User's data before persistence.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Username == "" {
		return ErrEmptyUsername
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmail(u.Email) {
		return ErrInvalidEmail
	}
	switch u.Status {
	case StatusNonActivated, StatusActive, StatusDisabled:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, u.Status)
	}
	return nil
}

// Activate marks the account active. Status transitions are explicit named
// operations; nothing else flips status as a side effect.
func (u *User) Activate() {
	u.Status = StatusActive
}

// Deactivate disables the account.
func (u *User) Deactivate() {
	u.Status = StatusDisabled
}

// validEmail is a deliberately small structural check: one @ with a dotted
// domain after it. Anything stricter belongs to a mail-delivery layer.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
