package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenSetValid(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	skew := 5 * time.Minute

	tests := []struct {
		name string
		ts   TokenSet
		want bool
	}{
		{
			name: "empty token is invalid",
			ts:   TokenSet{},
			want: false,
		},
		{
			name: "zero expiry never expires",
			ts:   TokenSet{AccessToken: "at"},
			want: true,
		},
		{
			name: "fresh token is valid",
			ts:   TokenSet{AccessToken: "at", Expiry: now.Add(time.Hour)},
			want: true,
		},
		{
			name: "expired token is invalid",
			ts:   TokenSet{AccessToken: "at", Expiry: now.Add(-time.Minute)},
			want: false,
		},
		{
			name: "token inside the skew window is invalid",
			ts:   TokenSet{AccessToken: "at", Expiry: now.Add(3 * time.Minute)},
			want: false,
		},
		{
			name: "token just outside the skew window is valid",
			ts:   TokenSet{AccessToken: "at", Expiry: now.Add(6 * time.Minute)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ts.Valid(now, skew))
		})
	}
}
