package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldIgnore(t *testing.T) {
	excludes := []string{"vendor/", ".min.js", "go.sum", "*.lock"}

	tests := []struct {
		path string
		want bool
	}{
		{"vendor/lib/util.go", true},
		{"app.min.js", true},
		{"go.sum", true},
		{"Cargo.lock", true},
		{"cmd/main.go", false},
		{"internal/vendorless.go", false},
		{"docs/minjs.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldIgnore(tt.path, excludes))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"", true, false},
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"false", false, false},
		{"0", false, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		got, err := ParseBoolString(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
