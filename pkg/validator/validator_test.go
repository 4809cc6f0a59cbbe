package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"Valid simple", "ana.lopez@example.com", true},
		{"Valid with dash", "ana-lopez@my-company.com", true},
		{"Valid uppercase", "ANA@EXAMPLE.COM", true},
		{"Valid with surrounding spaces", "  ana@example.com  ", true},
		{"Missing at sign", "ana.example.com", false},
		{"Missing domain", "ana@", false},
		{"Missing TLD", "ana@example", false},
		{"Empty", "", false},
		{"Double at", "ana@@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmail(tt.email))
		})
	}
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("https://github.com/talentogt/hr-api"))
	assert.True(t, IsHTTPURL("http://demo.example.com"))
	assert.False(t, IsHTTPURL("ftp://example.com"))
	assert.False(t, IsHTTPURL("github.com/talentogt"))
	assert.False(t, IsHTTPURL(""))
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"Plain digits", "55512345", "55512345"},
		{"With spaces", "5551 2345", "55512345"},
		{"With dashes", "5551-2345", "55512345"},
		{"With country code", "+502 5551 2345", "+50255512345"},
		{"With parentheses", "(502) 5551-2345", "50255512345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizePhone(tt.phone))
		})
	}
}

func TestIsPhone(t *testing.T) {
	assert.True(t, IsPhone("55512345"))
	assert.True(t, IsPhone("+502 5551 2345"))
	assert.False(t, IsPhone("1234567"))          // too short
	assert.False(t, IsPhone("1234567890123456")) // too long
	assert.False(t, IsPhone("5551234a"))
	assert.False(t, IsPhone(""))
}
