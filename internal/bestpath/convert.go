package bestpath

import (
	"fmt"
	"math"
	"math/big"
)

// Precision is the scale of fixed-point amounts: 1.0 is stored as 1e12.
const Precision = 1_000_000_000_000

var maxUint128 = new(big.Int).Lsh(big.NewInt(1), 128)

// ToFloat converts a raw fixed-point value into a float rate.
func ToFloat(raw *big.Int) (float64, error) {
	if raw == nil || raw.Sign() < 0 || raw.Cmp(maxUint128) >= 0 {
		return 0, fmt.Errorf("%w: %v out of uint128 range", ErrConversion, raw)
	}
	f, _ := new(big.Float).SetInt(raw).Float64()
	return f / Precision, nil
}

// FromFloat converts a float rate into a raw fixed-point value, truncating toward zero.
// A positive rate below one raw unit underflows and is an error.
func FromFloat(f float64) (*big.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil, fmt.Errorf("%w: %v is not a finite non-negative rate", ErrConversion, f)
	}
	raw, _ := new(big.Float).SetFloat64(f * Precision).Int(nil)
	if raw.Cmp(maxUint128) >= 0 {
		return nil, fmt.Errorf("%w: %v overflows uint128", ErrConversion, f)
	}
	if f > 0 && raw.Sign() == 0 {
		return nil, fmt.Errorf("%w: %v underflows precision %d", ErrConversion, f, Precision)
	}
	return raw, nil
}

func amountToFloat[A FixedPoint[A]](a A) (float64, error) {
	raw, err := a.Uint128()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversion, err)
	}
	return ToFloat(raw)
}

func floatToAmount[A FixedPoint[A]](f float64) (A, error) {
	var zero A
	raw, err := FromFloat(f)
	if err != nil {
		return zero, err
	}
	a, err := zero.FromUint128(raw)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrConversion, err)
	}
	return a, nil
}
