package record

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Codec errors.
var (
	// ErrInvalidValue is returned when a wire value cannot be converted to
	// the field's declared type.
	ErrInvalidValue = errors.New("invalid value")

	// ErrCorruptStoredValue is returned when store-written JSON text fails
	// to parse. This signals a data integrity fault, never client input.
	ErrCorruptStoredValue = errors.New("corrupt stored value")
)

// wireTimeLayout renders timestamps with millisecond precision and a
// literal Z suffix, always in UTC.
const wireTimeLayout = "2006-01-02T15:04:05.000Z"

// timeLayouts are accepted on decode, tried in order. Layouts without a
// zone are interpreted as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Encode converts a typed in-memory value to its wire-safe JSON scalar.
// A nil value encodes to nil regardless of type.
func Encode(v any, t Type) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch t {
	case UUID:
		u, ok := v.(uuid.UUID)
		if !ok {
			return nil, fmt.Errorf("%w: expected uuid, got %T", ErrInvalidValue, v)
		}
		return hex.EncodeToString(u[:]), nil

	case Timestamp:
		ts, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: expected timestamp, got %T", ErrInvalidValue, v)
		}
		return ts.UTC().Truncate(time.Millisecond).Format(wireTimeLayout), nil

	case String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string, got %T", ErrInvalidValue, v)
		}
		return s, nil

	case Integer:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		default:
			return nil, fmt.Errorf("%w: expected integer, got %T", ErrInvalidValue, v)
		}

	case Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: expected boolean, got %T", ErrInvalidValue, v)
		}
		return b, nil

	case Document:
		// Opaque documents are the identity transform against parsed JSON.
		return v, nil

	default:
		return nil, fmt.Errorf("%w: unknown type tag %d", ErrInvalidValue, t)
	}
}

// Decode converts a wire scalar (as produced by a JSON parser) into the
// typed in-memory value for the given type tag. A nil input decodes to nil.
func Decode(raw any, t Type) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch t {
	case UUID:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: uuid must be a string, got %T", ErrInvalidValue, raw)
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a uuid", ErrInvalidValue, s)
		}
		return u, nil

	case Timestamp:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: timestamp must be a string, got %T", ErrInvalidValue, raw)
		}
		return decodeTimestamp(s)

	case String:
		switch s := raw.(type) {
		case string:
			if !utf8.ValidString(s) {
				return nil, fmt.Errorf("%w: string is not valid UTF-8", ErrInvalidValue)
			}
			return s, nil
		case []byte:
			if !utf8.Valid(s) {
				return nil, fmt.Errorf("%w: bytes are not valid UTF-8", ErrInvalidValue)
			}
			return string(s), nil
		default:
			return nil, fmt.Errorf("%w: expected string, got %T", ErrInvalidValue, raw)
		}

	case Integer:
		switch n := raw.(type) {
		case float64:
			if n != float64(int64(n)) {
				return nil, fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, n)
			}
			return int64(n), nil
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case jsoniter.Number:
			i, err := n.Int64()
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, n.String())
			}
			return i, nil
		default:
			return nil, fmt.Errorf("%w: expected integer, got %T", ErrInvalidValue, raw)
		}

	case Boolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: expected boolean, got %T", ErrInvalidValue, raw)
		}
		return b, nil

	case Document:
		return raw, nil

	default:
		return nil, fmt.Errorf("%w: unknown type tag %d", ErrInvalidValue, t)
	}
}

// decodeTimestamp accepts ISO-8601 text with or without an offset.
// Offset-bearing inputs are converted to UTC; naive inputs are assumed UTC.
func decodeTimestamp(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not an ISO-8601 timestamp", ErrInvalidValue, s)
}

// EncodeStored serializes an opaque document value to the text form held
// in the backing store. A nil document serializes to nil.
func EncodeStored(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	s := string(b)
	return &s, nil
}

// DecodeStored parses document text read back from the store. Failure here
// should never happen for store-written data and is reported as a
// corruption fault rather than a client error.
func DecodeStored(text string) (any, error) {
	var v any
	if err := json.UnmarshalFromString(text, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStoredValue, err)
	}
	return v, nil
}
