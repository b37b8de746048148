package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places carried by an Amount.
const AmountScale = 12

// ErrAmountRange indicates a value that is negative or does not fit into 128 bits.
var ErrAmountRange = errors.New("amount out of range")

var lowMask = new(big.Int).SetUint64(^uint64(0))

// Amount is a non-negative fixed-point number held as an unsigned 128-bit count of 1e-12 units.
// The zero value is 0.
type Amount struct {
	hi, lo uint64
}

// NewAmount wraps a raw unit count.
func NewAmount(raw *big.Int) (Amount, error) {
	if raw == nil || raw.Sign() < 0 || raw.BitLen() > 128 {
		return Amount{}, fmt.Errorf("%w: %v", ErrAmountRange, raw)
	}
	return Amount{
		hi: new(big.Int).Rsh(raw, 64).Uint64(),
		lo: new(big.Int).And(raw, lowMask).Uint64(),
	}, nil
}

// AmountFromUint64 wraps a raw unit count that fits into 64 bits.
func AmountFromUint64(raw uint64) Amount {
	return Amount{lo: raw}
}

// AmountFromDecimal converts a human value such as 12.789 into an Amount, truncating digits
// beyond AmountScale.
func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, fmt.Errorf("%w: %s is negative", ErrAmountRange, d)
	}
	return NewAmount(d.Shift(AmountScale).Truncate(0).BigInt())
}

// ParseAmount parses a human decimal string such as "0.00000007978".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return AmountFromDecimal(d)
}

// Raw returns the unit count.
func (a Amount) Raw() *big.Int {
	raw := new(big.Int).SetUint64(a.hi)
	raw.Lsh(raw, 64)
	return raw.Or(raw, new(big.Int).SetUint64(a.lo))
}

// Uint128 returns the unit count for path calculations.
func (a Amount) Uint128() (*big.Int, error) {
	return a.Raw(), nil
}

// FromUint128 builds an Amount from a unit count produced by a path calculation.
func (Amount) FromUint128(raw *big.Int) (Amount, error) {
	return NewAmount(raw)
}

// Decimal returns the human value, e.g. 12.789 for 12_789_000_000_000 units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.Raw(), -AmountScale)
}

func (a Amount) String() string {
	return a.Decimal().String()
}

// IsZero reports whether the amount is 0.
func (a Amount) IsZero() bool {
	return a.hi == 0 && a.lo == 0
}

// Cmp returns -1, 0 or +1 when a is less than, equal to or greater than b.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a.hi < b.hi:
		return -1
	case a.hi > b.hi:
		return 1
	case a.lo < b.lo:
		return -1
	case a.lo > b.lo:
		return 1
	}
	return 0
}

// MarshalJSON encodes the human value as a string to keep every digit.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a human value as a JSON string or number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// BreachesTolerance reports whether the relative change from prev to next, in parts per million
// and rounded down, exceeds ppm. A change away from zero always breaches.
func BreachesTolerance(prev, next Amount, ppm uint64) bool {
	if prev.IsZero() {
		return !next.IsZero()
	}
	base := prev.Raw()
	delta := next.Raw()
	delta.Sub(delta, base).Abs(delta)
	delta.Mul(delta, big.NewInt(1_000_000))
	delta.Quo(delta, base)
	return delta.Cmp(new(big.Int).SetUint64(ppm)) > 0
}
