package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_CheckField(t *testing.T) {
	v := Validator{}
	assert.True(t, v.Valid(), "zero validator is valid")

	v.CheckField(NotBlank("hello"), "content", "content is required")
	v.CheckField(PermittedValue("text", "url", "text"), "type", "type must be url or text")
	assert.True(t, v.Valid())
	assert.Empty(t, v.FieldErrors)

	v.CheckField(NotBlank(" "), "content", "content is required")
	v.CheckField(MaxChars("too long", 3), "content", "content is too long")
	v.CheckField(PermittedValue("image", "url", "text"), "type", "type must be url or text")
	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"content": "content is required", "type": "type must be url or text"}, v.FieldErrors,
		"first error of a field is kept")
}

func TestNotBlank(t *testing.T) {
	assert.True(t, NotBlank("lobby door"))
	assert.True(t, NotBlank(" x "))
	assert.False(t, NotBlank(""))
	assert.False(t, NotBlank(" \t\n"))
}

func TestMaxChars(t *testing.T) {
	tests := []struct {
		name  string
		value string
		n     int
		want  bool
	}{
		{"ascii at limit", strings.Repeat("x", 700), 700, true},
		{"ascii over limit", strings.Repeat("x", 701), 700, false},
		{"multibyte counted as runes", strings.Repeat("ж", 700), 700, true},
		{"multibyte over limit", strings.Repeat("ж", 101), 100, false},
		{"surrounding spaces ignored", "  " + strings.Repeat("x", 100) + "  ", 100, true},
		{"empty", "", 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxChars(tt.value, tt.n))
		})
	}
}

func TestIsHTTPURL(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?q=1", true},
		{" https://example.com ", true},
		{"https://", false},
		{"ftp://example.com", false},
		{"javascript:alert(1)", false},
		{"example.com", false},
		{"/relative/path", false},
		{"", false},
		{"http://[::1", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHTTPURL(tt.value))
		})
	}
}

func TestPermittedValue(t *testing.T) {
	assert.True(t, PermittedValue("url", "url", "text"))
	assert.True(t, PermittedValue("text", "url", "text"))
	assert.False(t, PermittedValue("image", "url", "text"))
	assert.False(t, PermittedValue("", "url", "text"))
	assert.False(t, PermittedValue("url"))
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		value, want string
	}{
		{"my code", "my code"},
		{" <b>bold</b> name ", "bold name"},
		{"<script>alert(1)</script>menu", "menu"},
		{"fish & chips", "fish & chips"},
		{"<i></i>", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTags(tt.value))
		})
	}
}
