package sdk

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Amount is a 256 bit unsigned token quantity, same width the token ledgers use.
type Amount = uint256.Int

// ParseAmount reads a base-10 amount. Empty text is zero.
// Example payload: sdk.ParseAmount("1500")
func ParseAmount(s string) (*Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(Amount), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// MustAmount is ParseAmount for constants and tests.
func MustAmount(s string) *Amount {
	v, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return v
}

// NewAmount wraps a plain uint64.
// Example payload: sdk.NewAmount(100)
func NewAmount(v uint64) *Amount {
	return uint256.NewInt(v)
}

// FormatAmount prints the decimal form, nil prints as 0.
func FormatAmount(v *Amount) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
