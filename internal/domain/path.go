package domain

import (
	"time"

	"github.com/mtlprog/bestpath/internal/bestpath"
)

// Concrete instantiations of the best-path vocabulary.
type (
	Pair         = bestpath.Pair[Currency]
	ProviderPair = bestpath.ProviderPair[Currency, Provider]
	Observation  = bestpath.Observation[Currency, Provider, Amount]
	PathStep     = bestpath.PathStep[Currency, Provider, Amount]
	PricePath    = bestpath.PricePath[Currency, Provider, Amount]
	PathEntry    = bestpath.Entry[Currency, Provider, Amount]
	PathTable    = bestpath.Table[Currency, Provider, Amount]
	Calculator   = bestpath.Calculator[Currency, Provider, Amount]
)

// Calculator names accepted in configuration.
const (
	CalculatorFloydWarshall = "floyd-warshall"
	CalculatorNoop          = "noop"
)

// NewCalculator returns the calculator registered under name.
func NewCalculator(name string) (Calculator, bool) {
	switch name {
	case CalculatorFloydWarshall:
		return bestpath.FloydWarshall[Currency, Provider, Amount]{}, true
	case CalculatorNoop:
		return bestpath.Noop[Currency, Provider, Amount]{}, true
	}
	return nil, false
}

// PathChange updates or inserts the stored best path of a pair.
type PathChange struct {
	Pair Pair      `json:"pair"`
	Path PricePath `json:"path"`
}

// StoredPath is a best path as persisted, with the time it last changed.
type StoredPath struct {
	Pair      Pair      `json:"pair"`
	Path      PricePath `json:"path"`
	UpdatedAt time.Time `json:"updatedAt"`
}
