package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountryAssigner_Deterministic(t *testing.T) {
	c := NewCountryAssigner([]string{"KY", "KP", "RU", "PA", "SY", "IR"})

	first := c.Assign("account-123")
	second := c.Assign("account-123")

	assert.Equal(t, first, second, "assignment must be deterministic for the same account ID")
}

func TestCountryAssigner_DifferentAccountsCanDiffer(t *testing.T) {
	c := NewCountryAssigner([]string{"KY", "KP", "RU", "PA", "SY", "IR"})

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		seen[c.Assign(accountID(i))] = struct{}{}
	}

	assert.Greater(t, len(seen), 1, "the 36 distinct generated account IDs should not all land on the same country")
}

func TestCountryAssigner_IsHighRisk(t *testing.T) {
	c := NewCountryAssigner([]string{"KY", "KP"})

	assert.True(t, c.IsHighRisk("KY"))
	assert.False(t, c.IsHighRisk("US"))
}

func accountID(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 8)
	for j := range b {
		b[j] = letters[(i+j*7)%len(letters)]
	}
	return string(b)
}
