package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectRegion(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		want     string
	}{
		{"sao paulo", "America/Sao_Paulo", "BR"},
		{"manaus", "America/Manaus", "BR"},
		{"case insensitive", "america/sao_paulo", "BR"},
		{"lisbon", "Europe/Lisbon", "PT"},
		{"buenos aires", "America/Argentina/Buenos_Aires", "AR"},
		{"new york", "America/New_York", "US"},
		{"unknown zone falls back", "Europe/London", DefaultRegion},
		{"utc falls back", "UTC", DefaultRegion},
		{"empty falls back", "", DefaultRegion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectRegion(tt.timezone))
		})
	}
}
