package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	name := Name("Franklin", "Saint", "AY 2024")
	assert.Equal(t, "Algebra 1 - Franklin Saint (AY 2024)", name)
}

func TestNamePreservesCasing(t *testing.T) {
	name := Name("deShawn", "mcDonald", "AY 2025")
	assert.Equal(t, "Algebra 1 - deShawn mcDonald (AY 2025)", name)
}

func TestShortname(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		lastName  string
		yearShort string
		nonce     int
		want      string
	}{
		{
			name:      "no nonce",
			firstName: "Franklin",
			lastName:  "Saint",
			yearShort: "AY24",
			want:      "Alg1 FS AY24",
		},
		{
			name:      "first retry",
			firstName: "Franklin",
			lastName:  "Saint",
			yearShort: "AY24",
			nonce:     1,
			want:      "Alg1 FS1 AY24",
		},
		{
			name:      "later retry",
			firstName: "Reed",
			lastName:  "Thompson",
			yearShort: "AY24",
			nonce:     12,
			want:      "Alg1 RT12 AY24",
		},
		{
			name:      "lowercase initials preserved",
			firstName: "deShawn",
			lastName:  "mcDonald",
			yearShort: "AY25",
			want:      "Alg1 dm AY25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Shortname(tt.firstName, tt.lastName, tt.yearShort, tt.nonce)
			assert.Equal(t, tt.want, got)
		})
	}
}
