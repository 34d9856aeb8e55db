package shared

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"log/slog"

	"github.com/nwmlabs/nwm-api/internal/query"
)

// Key type for context values.
type ContextKey string

const (
	// TraceIDKey is the key for the trace ID in the request context.
	TraceIDKey ContextKey = "traceID"

	// TxKey holds the request's transaction handle.
	TxKey ContextKey = "tx"

	// BodyKey holds the parsed JSON request body.
	BodyKey ContextKey = "body"

	// QueryOptionsKey holds the parsed filter/sort/page options.
	QueryOptionsKey ContextKey = "queryOptions"

	// PrettyKey holds the parsed pretty flag.
	PrettyKey ContextKey = "pretty"

	// traceIDLength is the number of random bytes in a trace ID.
	traceIDLength = 16
)

// SetTraceID adds a fresh trace ID to the context for log correlation.
func SetTraceID(ctx context.Context) context.Context {
	b := make([]byte, traceIDLength)
	if _, err := rand.Read(b); err != nil {
		slog.Error("failed to generate trace ID", "error", err)
		return ctx
	}
	return context.WithValue(ctx, TraceIDKey, hex.EncodeToString(b))
}

// GetTraceID retrieves the trace ID, or "" when none was set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithTx attaches the request's transaction handle. The pipeline owns the
// handle; operations only borrow it for the request's lifetime.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, TxKey, tx)
}

// TxFromContext returns the request's transaction, or nil when the request
// runs outside a transactional pipeline (tests, health checks).
func TxFromContext(ctx context.Context) *sql.Tx {
	tx, ok := ctx.Value(TxKey).(*sql.Tx)
	if !ok {
		return nil
	}
	return tx
}

// WithBody attaches the parsed request body document.
func WithBody(ctx context.Context, doc any) context.Context {
	return context.WithValue(ctx, BodyKey, doc)
}

// BodyFromContext returns the parsed body and whether one was present.
func BodyFromContext(ctx context.Context) (any, bool) {
	doc := ctx.Value(BodyKey)
	return doc, doc != nil
}

// WithQueryOptions attaches the parsed query-shaping options.
func WithQueryOptions(ctx context.Context, opts query.Options) context.Context {
	return context.WithValue(ctx, QueryOptionsKey, opts)
}

// QueryOptionsFromContext returns the parsed options, zero when absent.
func QueryOptionsFromContext(ctx context.Context) query.Options {
	opts, ok := ctx.Value(QueryOptionsKey).(query.Options)
	if !ok {
		return query.Options{}
	}
	return opts
}

// WithPretty records whether the response should be indented.
func WithPretty(ctx context.Context, pretty bool) context.Context {
	return context.WithValue(ctx, PrettyKey, pretty)
}

// PrettyFromContext reports whether indented output was requested.
func PrettyFromContext(ctx context.Context) bool {
	pretty, ok := ctx.Value(PrettyKey).(bool)
	return ok && pretty
}
