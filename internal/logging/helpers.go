package logging

import (
	"maps"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// WithFields returns logger enriched with a copy of fields. Loggers without
// the FieldsLogger extension are returned unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return logger
	}
	if enriched, ok := logger.(interfaces.FieldsLogger); ok {
		return enriched.WithFields(maps.Clone(fields))
	}
	return logger
}
