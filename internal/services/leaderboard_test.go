package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCensorName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Al", "Al"},
		{"Amélie", "Am*****e"},
		{"Bob", "Bo*****b"},
		{"Zoë", "Zo*****ë"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, censorName(tt.in), tt.in)
	}
}
