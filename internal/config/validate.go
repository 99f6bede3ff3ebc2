package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult holds the results of config validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

func (r *ValidationResult) addError(field, format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarning(field, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err joins the errors into one, or returns nil when the config is valid.
func (r *ValidationResult) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Error())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(parts, "; "))
}

// Validate checks a merged configuration.
func Validate(cfg Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
		result.addError("server.addr", "must be host:port, got %q", cfg.Server.Addr)
	}
	if strings.TrimSpace(cfg.Catalog.Database) == "" {
		result.addError("catalog.database", "must not be empty")
	}
	if strings.TrimSpace(cfg.Auth.Username) == "" {
		result.addError("auth.username", "must not be empty")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Log.Level)) {
	case "off", "quiet", "normal", "info", "verbose", "debug":
	default:
		result.addError("log.level", "must be off, normal or verbose, got %q", cfg.Log.Level)
	}

	if cfg.Auth.Username == "admin" && cfg.Auth.Password == "admin123" {
		result.addWarning("auth", "using the built-in admin credentials")
	}
	if cfg.Catalog.Watch && len(cfg.Catalog.Seeds) == 0 {
		result.addWarning("catalog.watch", "enabled without any seeds")
	}
	return result
}
