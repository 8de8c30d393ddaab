package core

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeAddress returns the canonical form of an address-like value (hex
// address, ENS name, wallet). Surrounding whitespace is dropped and the value is
// lower-cased with Unicode rules, so "0xAbC" and " 0xabc" normalize identically.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	// cases.Caser is stateful and must not be shared between goroutines.
	return cases.Lower(language.Und).String(addr)
}

// NormalizeAddresses normalizes every element, dropping empty values. The result
// is never nil.
func NormalizeAddresses(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if n := NormalizeAddress(a); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// SameAddress reports whether two address-like values are equal once normalized.
// Empty values never match.
func SameAddress(a, b string) bool {
	na, nb := NormalizeAddress(a), NormalizeAddress(b)
	return na != "" && na == nb
}

// FormatAgentKey builds the chain-scoped agent identifier "chainId:agentId".
func FormatAgentKey(chainID int64, agentID string) string {
	return fmt.Sprintf("%d:%s", chainID, agentID)
}

// ParseAgentKey splits an identifier of the form "chainId:agentId". A bare agent
// id returns hasChain == false.
func ParseAgentKey(id string) (chainID int64, agentID string, hasChain bool) {
	prefix, rest, found := strings.Cut(id, ":")
	if !found {
		return 0, id, false
	}
	n, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, id, false
	}
	return n, rest, true
}
