package domain

import "strings"

// ValidationResult is the outcome of validating one entity candidate.
// Errors maps field name to a display message; it is never nil.
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

// Err returns nil for a valid result and a field-keyed AppError otherwise.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return ErrFieldValidation(r.Errors)
}

// fieldErrors accumulates violations. The first message recorded for a field wins.
type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

// seeded starts a collection from the errors recorded while decoding.
func seeded(decoded fieldErrors) fieldErrors {
	errs := fieldErrors{}
	for field, message := range decoded {
		errs.add(field, message)
	}
	return errs
}

func (f fieldErrors) check(ok bool, field, message string) {
	if !ok {
		f.add(field, message)
	}
}

func (f fieldErrors) has(field string) bool {
	_, ok := f[field]
	return ok
}

func (f fieldErrors) result() ValidationResult {
	return ValidationResult{IsValid: len(f) == 0, Errors: map[string]string(f)}
}

func minLen(s string, n int) bool {
	return len([]rune(strings.TrimSpace(s))) >= n
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func in[T comparable](v T, list ...T) bool {
	for _, item := range list {
		if v == item {
			return true
		}
	}
	return false
}
