package logging

import "log/slog"

// Common structured log field keys to keep logs searchable/consistent.
const (
	FieldService    = "service"
	FieldVersion    = "version"
	FieldSource     = "source"
	FieldRequestID  = "request_id"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldError      = "error"

	FieldBatchSize   = "batch_size"
	FieldConverted   = "converted"
	FieldFailed      = "failed"
	FieldRecordIndex = "record_index"
	FieldScreenID    = "screen_id"
	FieldField       = "field"
	FieldEvent       = "event"
	FieldTotal       = "total"
	FieldFallback    = "fallback"
	FieldClass       = "class"
	FieldRetryAfter  = "retry_after"
)

// WithCommon appends service/version fields when provided.
func WithCommon(attrs []slog.Attr, service, version string) []slog.Attr {
	if service != "" {
		attrs = append(attrs, slog.String(FieldService, service))
	}
	if version != "" {
		attrs = append(attrs, slog.String(FieldVersion, version))
	}
	return attrs
}
