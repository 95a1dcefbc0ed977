package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// ContextKey namespaces request context values set by the API.
type ContextKey string

const (
	// LearnerIDContextKey holds the authenticated domain.LearnerID.
	LearnerIDContextKey ContextKey = "learnerID"

	// TraceIDKey holds the request trace id.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace id (32 hex characters).
	TraceIDLength = 16
)

// SetTraceID adds a freshly generated trace id to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace id stored in ctx, or "" if there is none.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithLearnerID stores the authenticated learner in the context.
func WithLearnerID(ctx context.Context, id domain.LearnerID) context.Context {
	return context.WithValue(ctx, LearnerIDContextKey, id)
}

// LearnerIDFromContext returns the authenticated learner. ok is false when the
// request was not authenticated or carries the nil id.
func LearnerIDFromContext(ctx context.Context) (domain.LearnerID, bool) {
	id, ok := ctx.Value(LearnerIDContextKey).(domain.LearnerID)
	if !ok || id.IsZero() {
		return domain.NilLearnerID, false
	}
	return id, true
}

func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if n, err := rand.Read(b); err != nil || n != TraceIDLength {
		slog.Error("failed to generate random trace ID, using time-based fallback",
			slog.Any("error", err),
			slog.Int("bytes_read", n))
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

func fallbackTraceID() string {
	b := make([]byte, TraceIDLength)
	now := time.Now()
	binary.BigEndian.PutUint64(b[:8], uint64(now.UnixNano()))
	binary.BigEndian.PutUint64(b[8:], uint64(now.Unix())^uint64(now.Nanosecond())<<20)
	return hex.EncodeToString(b)
}
