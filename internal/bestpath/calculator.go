// Package bestpath turns price observations keyed by domain identities into a best conversion
// path table. Implementations of Calculator are pure: no I/O, no shared state, no logging.
package bestpath

import (
	"cmp"
	"errors"
	"math/big"

	"github.com/mtlprog/bestpath/internal/pathfinding"
)

var (
	// ErrNegativeCycles is returned when the observed prices contain an arbitrage loop.
	ErrNegativeCycles = pathfinding.ErrNegativeCycles
	// ErrConversion is returned when an amount cannot be moved between fixed point and float.
	ErrConversion = errors.New("amount conversion failed")
)

// FixedPoint is an amount type representable as an unsigned 128-bit integer scaled by Precision.
// FromUint128 is called on the zero value and must not depend on the receiver.
type FixedPoint[A any] interface {
	Uint128() (*big.Int, error)
	FromUint128(raw *big.Int) (A, error)
}

// Calculator computes the best path for every reachable pair of currencies.
type Calculator[C, P cmp.Ordered, A FixedPoint[A]] interface {
	Calculate(observations []Observation[C, P, A]) (Table[C, P, A], error)
}
