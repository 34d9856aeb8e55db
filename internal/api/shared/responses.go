package shared

import (
	"fmt"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const contentTypeJSON = "application/json; charset=utf-8"

// RespondWithJSON writes a JSON response with the given status code and
// data, indenting the output when the request asked for pretty.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	var (
		body []byte
		err  error
	)
	if PrettyFromContext(r.Context()) {
		body, err = json.MarshalIndent(data, "", "  ")
	} else {
		body, err = json.Marshal(data)
	}
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// RespondWithError translates err into the uniform error document and
// writes it. Server-side faults are logged with full detail here; the
// client only ever sees the sanitized document.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status, errDoc := Translate(err)
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("error", err.Error()),
		slog.String("error_type", fmt.Sprintf("%T", err)),
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	}
	slog.LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, errDoc)
}
