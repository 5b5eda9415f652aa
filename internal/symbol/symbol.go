// Package symbol maps portfolio ticker notation to provider query symbols.
package symbol

import "strings"

// knownExchanges is the fixed set of exchange codes recognized in ticker
// notation, in either "EXCHANGE:BASE" or "BASE:EXCHANGE" position.
var knownExchanges = map[string]bool{
	"NASDAQ": true,
	"NYSE":   true,
	"AMEX":   true,
	"TWSE":   true,
	"TPEX":   true,
	"TSE":    true,
	"JPX":    true,
	"HKEX":   true,
	"HKG":    true,
	"LSE":    true,
}

// providerSuffix maps an exchange code to the suffix the provider expects
// on query symbols. Exchanges absent from this map (US markets) pass the
// base symbol through unchanged.
var providerSuffix = map[string]string{
	"TWSE": ".TW",
	"TPEX": ".TWO",
	"TSE":  ".T",
	"JPX":  ".T",
	"HKEX": ".HK",
	"HKG":  ".HK",
	"LSE":  ".L",
}

// Resolve splits a portfolio ticker into its exchange hint and base
// symbol. The exchange may appear on either side of the ":" delimiter.
// When neither side is a known exchange code the whole ticker is the base
// symbol with no exchange.
func Resolve(ticker string) (exchange, base string) {
	parts := strings.SplitN(ticker, ":", 2)
	if len(parts) != 2 {
		return "", ticker
	}
	left := strings.ToUpper(strings.TrimSpace(parts[0]))
	right := strings.ToUpper(strings.TrimSpace(parts[1]))
	switch {
	case knownExchanges[left]:
		return left, strings.TrimSpace(parts[1])
	case knownExchanges[right]:
		return right, strings.TrimSpace(parts[0])
	default:
		return "", ticker
	}
}

// ProviderSymbol converts an (exchange, base) pair into the provider's
// query symbol by appending the exchange-specific suffix. Unrecognized and
// US exchanges leave the base unchanged.
func ProviderSymbol(exchange, base string) string {
	if suffix, ok := providerSuffix[strings.ToUpper(exchange)]; ok {
		return base + suffix
	}
	return base
}
