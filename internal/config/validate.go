package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidGuardFallback indicates an unsupported guard naming convention
	ErrInvalidGuardFallback = errors.New("invalid guard fallback")

	// ErrInvalidGuardName indicates a guard name that is not a C identifier
	ErrInvalidGuardName = errors.New("invalid guard name")

	// ErrInvalidMarker indicates a marker macro name that is empty or not an identifier
	ErrInvalidMarker = errors.New("invalid marker name")

	// ErrInvalidOutputSuffix indicates an unusable generated file suffix
	ErrInvalidOutputSuffix = errors.New("invalid output suffix")

	// ErrInvalidConcurrency indicates a non-positive batch concurrency
	ErrInvalidConcurrency = errors.New("invalid batch concurrency")

	// ErrInvalidWatchSettings indicates invalid watch mode configuration
	ErrInvalidWatchSettings = errors.New("invalid watch settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateGuard(&cfg.Guard); err != nil {
		errs = append(errs, err)
	}

	if err := validateMarkers(&cfg.Markers); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if cfg.Batch.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConcurrency, cfg.Batch.Concurrency))
	}

	if err := validateWatch(&cfg.Watch); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateGuard(cfg *GuardConfig) error {
	var errs []error

	switch strings.ToLower(cfg.Fallback) {
	case FallbackNone, FallbackBasename, FallbackPath:
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'none', 'basename' or 'path', got '%s'", ErrInvalidGuardFallback, cfg.Fallback))
	}

	if cfg.Name != "" && !isIdentifier(cfg.Name) {
		errs = append(errs, fmt.Errorf("%w: '%s' is not a C identifier", ErrInvalidGuardName, cfg.Name))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateMarkers(cfg *MarkersConfig) error {
	var errs []error

	if !isIdentifier(cfg.Public) {
		errs = append(errs, fmt.Errorf("%w: public marker '%s' is not a C identifier", ErrInvalidMarker, cfg.Public))
	}
	if !isIdentifier(cfg.Private) {
		errs = append(errs, fmt.Errorf("%w: private marker '%s' is not a C identifier", ErrInvalidMarker, cfg.Private))
	}
	if cfg.Public != "" && cfg.Public == cfg.Private {
		errs = append(errs, fmt.Errorf("%w: public and private markers are both '%s'", ErrInvalidMarker, cfg.Public))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	for _, suffix := range []string{cfg.PublicSuffix, cfg.PrivateSuffix} {
		if strings.TrimSpace(suffix) == "" {
			errs = append(errs, fmt.Errorf("%w: suffix is required", ErrInvalidOutputSuffix))
		} else if suffix == ".c" {
			errs = append(errs, fmt.Errorf("%w: '%s' would overwrite the source", ErrInvalidOutputSuffix, suffix))
		}
	}
	if cfg.PublicSuffix != "" && cfg.PublicSuffix == cfg.PrivateSuffix {
		errs = append(errs, fmt.Errorf("%w: public and private suffixes are both '%s'", ErrInvalidOutputSuffix, cfg.PublicSuffix))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateWatch(cfg *WatchConfig) error {
	var errs []error

	if cfg.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidWatchSettings, cfg.DebounceMS))
	}
	if cfg.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size must be positive, got %d", ErrInvalidWatchSettings, cfg.CacheSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func isIdentifier(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '_' && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The result still matches every sentinel with errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return &validationError{msg: "validation failed:\n  - " + strings.Join(msgs, "\n  - "), errs: errs}
}

type validationError struct {
	msg  string
	errs []error
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() []error { return e.errs }
