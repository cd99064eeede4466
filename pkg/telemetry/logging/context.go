package logging

import (
	"context"
	"strconv"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for validation run IDs.
	RunIDKey contextKey = "run_id"

	// RequestIDKey is the context key for HTTP request IDs.
	RequestIDKey contextKey = "request_id"

	// RowKey is the context key for the record being validated.
	RowKey contextKey = "row"

	// ColumnKey is the context key for the column being validated.
	ColumnKey contextKey = "column"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRow adds a zero-based record index to the context.
func WithRow(ctx context.Context, row int) context.Context {
	return context.WithValue(ctx, RowKey, row)
}

// GetRow retrieves the record index from the context.
func GetRow(ctx context.Context) (int, bool) {
	row, ok := ctx.Value(RowKey).(int)
	return row, ok
}

// WithColumn adds a column name to the context.
func WithColumn(ctx context.Context, column string) context.Context {
	return context.WithValue(ctx, ColumnKey, column)
}

// GetColumn retrieves the column name from the context.
func GetColumn(ctx context.Context) string {
	if column, ok := ctx.Value(ColumnKey).(string); ok {
		return column
	}
	return ""
}

// ContextFields returns the context's log fields as key-value pairs suitable
// for slog.Logger.With or the Context variants of the slog methods.
func ContextFields(ctx context.Context) []any {
	var fields []any

	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, "run_id", runID)
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if row, ok := GetRow(ctx); ok {
		fields = append(fields, "row", strconv.Itoa(row))
	}
	if column := GetColumn(ctx); column != "" {
		fields = append(fields, "column", column)
	}

	return fields
}
