package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mailroom/pkg/sanitizer"
)

func TestEmailPolicy_Sanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "strips scripts",
			input:    `<p>Hello</p><script>alert('xss')</script>`,
			contains: []string{"<p>Hello</p>"},
			excludes: []string{"script", "alert"},
		},
		{
			name:     "strips event handlers",
			input:    `<img src="https://example.com/logo.png" onerror="alert(1)">`,
			contains: []string{`src="https://example.com/logo.png"`},
			excludes: []string{"onerror"},
		},
		{
			name:     "strips javascript urls",
			input:    `<a href="javascript:alert(1)">click</a>`,
			contains: []string{"click"},
			excludes: []string{"javascript"},
		},
		{
			name:     "keeps table layout",
			input:    `<table width="600" cellpadding="0"><tr><td align="center" bgcolor="#ffffff">Hi</td></tr></table>`,
			contains: []string{`width="600"`, `cellpadding="0"`, `align="center"`, `bgcolor="#ffffff"`},
		},
		{
			name:     "keeps safe inline styles",
			input:    `<div style="color: #333333; padding: 8px 16px; text-align: center">Hi</div>`,
			contains: []string{"color: #333333", "padding: 8px 16px", "text-align: center"},
		},
		{
			name:     "drops unsafe styles",
			input:    `<div style="background-image: url(javascript:alert(1)); position: fixed">Hi</div>`,
			contains: []string{"Hi"},
			excludes: []string{"background-image", "position"},
		},
		{
			name:     "strips forms",
			input:    `<form action="https://evil.example"><input name="password"></form>`,
			excludes: []string{"form", "input"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := sanitizer.EmailPolicy().Sanitize(tt.input)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, got, bad)
			}
		})
	}
}

func TestEmailPolicy_Shared(t *testing.T) {
	t.Parallel()
	assert.Same(t, sanitizer.EmailPolicy(), sanitizer.EmailPolicy())
}
