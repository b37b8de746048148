package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Currency is a ticker symbol such as "BTC" or "USDT".
type Currency string

// NewCurrency trims and upper-cases a ticker symbol.
func NewCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if c == "" {
		return "", errors.New("empty currency")
	}
	return c, nil
}

// Provider identifies a price source.
type Provider string

// CryptoCompare is the min-api.cryptocompare.com price source.
const CryptoCompare Provider = "CRYPTOCOMPARE"

// knownProviders lists every provider a price can be fetched from.
var knownProviders = []Provider{CryptoCompare}

// ParseProvider resolves a provider name case-insensitively.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range knownProviders {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

// Operation is a change applied to the set of monitored provider pairs.
type Operation string

const (
	OperationAdd Operation = "add"
	OperationDel Operation = "del"
)

// ParseOperation resolves "add" or "del".
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(strings.ToLower(strings.TrimSpace(s))); op {
	case OperationAdd, OperationDel:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operation %q", s)
	}
}

// ProviderPairOperation adds or removes one monitored provider pair.
type ProviderPairOperation struct {
	ProviderPair ProviderPair `json:"providerPair"`
	Operation    Operation    `json:"operation"`
}
