package validator

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	EmailRX = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
	SlugRX  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	PhoneRX = regexp.MustCompile(`^\+79\d{9}$`)
)

type Validator struct {
	Errors map[string]string
}

// ValidationError carries the per-field messages collected by a Validator.
// It is returned by the data layer before anything is written.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	builder.WriteString("validation failed: ")
	for i, key := range keys {
		if i > 0 {
			builder.WriteString("; ")
		}
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(e.Fields[key])
	}

	return builder.String()
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

func (v *Validator) IsValid() bool {
	return len(v.Errors) == 0
}

// Err returns the collected messages as a *ValidationError, or nil when
// every check passed.
func (v *Validator) Err() error {
	if v.IsValid() {
		return nil
	}
	return &ValidationError{Fields: v.Errors}
}

func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

func (v *Validator) CheckNotBlank(value, key, message string) {
	v.Check(strings.TrimSpace(value) != "", key, message)
}

func (v *Validator) CheckMaxLength(value string, limit int, key, message string) {
	v.Check(utf8.RuneCountInString(value) <= limit, key, message)
}

func (v *Validator) CheckEmail(value, key, message string) {
	v.Check(v.IsMatch(value, EmailRX), key, message)
}

func (v *Validator) CheckMatch(value string, rx *regexp.Regexp, key, message string) {
	v.Check(v.IsMatch(value, rx), key, message)
}

func (v *Validator) IsMatch(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

func (v *Validator) IsUnique(value []string) bool {
	uniqueValues := make(map[string]bool)

	for _, val := range value {
		if _, exists := uniqueValues[val]; exists {
			return false
		}
		uniqueValues[val] = true
	}
	return true
}
