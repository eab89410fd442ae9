package engine

import (
	"crypto/md5"
	"math/big"
)

// standardCountries and highRiskCountries are the two jurisdiction pools
// spec.md §4.2 assigns accounts into deterministically.
var standardCountries = []string{"IN", "US", "GB", "AE", "SG"}

// CountryAssigner deterministically maps account IDs to a country, using
// the same md5-digest scheme as the prior-art implementation
// (original_source/backend/engine.py): roughly 8% of accounts land in a
// high-risk jurisdiction, the rest in a standard one, both picked by
// hashing the account ID so the assignment is stable across runs.
type CountryAssigner struct {
	highRiskCountries []string
}

// NewCountryAssigner builds a CountryAssigner using the configured
// high-risk country list.
func NewCountryAssigner(highRiskCountries []string) *CountryAssigner {
	return &CountryAssigner{highRiskCountries: highRiskCountries}
}

// Assign returns the deterministic country for an account ID.
func (c *CountryAssigner) Assign(accountID string) string {
	sum := md5.Sum([]byte(accountID))
	h := new(big.Int).SetBytes(sum[:])

	mod100 := new(big.Int).Mod(h, big.NewInt(100)).Int64()
	if mod100 < 8 && len(c.highRiskCountries) > 0 {
		idx := new(big.Int).Mod(h, big.NewInt(int64(len(c.highRiskCountries)))).Int64()
		return c.highRiskCountries[idx]
	}

	idx := new(big.Int).Mod(h, big.NewInt(int64(len(standardCountries)))).Int64()
	return standardCountries[idx]
}

// IsHighRisk reports whether country is in the configured high-risk list.
func (c *CountryAssigner) IsHighRisk(country string) bool {
	for _, hr := range c.highRiskCountries {
		if hr == country {
			return true
		}
	}
	return false
}
