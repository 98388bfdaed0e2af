// Package validator provides functionality for validating and sanitizing data.
package validator

import (
	"html"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Validator collects field errors, the first error of a field wins.
type Validator struct {
	FieldErrors map[string]string
}

// Valid returns true if no field errors were added.
func (v *Validator) Valid() bool {
	return len(v.FieldErrors) == 0
}

// AddFieldError adds an error message to the FieldErrors map.
func (v *Validator) AddFieldError(key, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}

	if _, exists := v.FieldErrors[key]; !exists {
		v.FieldErrors[key] = message
	}
}

// CheckField adds an error message for key if ok is false.
func (v *Validator) CheckField(ok bool, key, message string) {
	if !ok {
		v.AddFieldError(key, message)
	}
}

// NotBlank returns true if a value is not an empty string.
func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MaxChars returns true if the trimmed value has no more than n characters. Runes are counted, not bytes.
func MaxChars(value string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) <= n
}

// IsHTTPURL returns true if value is an absolute http or https url with a host.
func IsHTTPURL(value string) bool {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// PermittedValue returns true if value is in the list of permitted values.
func PermittedValue[T comparable](value T, permitted ...T) bool {
	return slices.Contains(permitted, value)
}

var strict = bluemonday.StrictPolicy()

// StripTags removes all html from value and trims surrounding spaces.
func StripTags(value string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(value)))
}
