// internal/blockchain/tokens.go
package blockchain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NativeSymbol is the chain's gas token; it has no contract address.
const NativeSymbol = "IP"

// Token is a resolved payment token. Native is true for the gas token.
type Token struct {
	Symbol  string         `json:"symbol,omitempty"`
	Address common.Address `json:"address"`
	Native  bool           `json:"native"`
}

// TokenShortcuts maps upper-cased symbols to token contract addresses.
type TokenShortcuts map[string]common.Address

// DefaultTokenShortcuts returns the built-in symbol table for a network.
func DefaultTokenShortcuts(wip common.Address) TokenShortcuts {
	return TokenShortcuts{
		"WIP": wip,
	}
}

// WithOverrides returns a copy of the table with extra symbols merged in.
func (t TokenShortcuts) WithOverrides(overrides map[string]string) (TokenShortcuts, error) {
	merged := make(TokenShortcuts, len(t)+len(overrides))
	for k, v := range t {
		merged[k] = v
	}
	for symbol, addr := range overrides {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == NativeSymbol {
			return nil, fmt.Errorf("token shortcut %q is reserved for the native token", symbol)
		}
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("token shortcut %s has invalid address %q", symbol, addr)
		}
		merged[symbol] = common.HexToAddress(addr)
	}
	return merged, nil
}

// Resolve accepts a shortcut symbol or a hex address.
func (t TokenShortcuts) Resolve(token string) (Token, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Token{}, fmt.Errorf("token is required")
	}

	symbol := strings.ToUpper(token)
	if symbol == NativeSymbol {
		return Token{Symbol: NativeSymbol, Native: true}, nil
	}
	if addr, ok := t[symbol]; ok {
		return Token{Symbol: symbol, Address: addr}, nil
	}
	if common.IsHexAddress(token) {
		addr := common.HexToAddress(token)
		for sym, known := range t {
			if known == addr {
				return Token{Symbol: sym, Address: addr}, nil
			}
		}
		return Token{Address: addr}, nil
	}

	return Token{}, fmt.Errorf("unknown token %q; use an address or one of %s", token, strings.Join(t.Symbols(), ", "))
}

// Symbols lists the known shortcuts including the native token.
func (t TokenShortcuts) Symbols() []string {
	symbols := make([]string, 0, len(t)+1)
	symbols = append(symbols, NativeSymbol)
	for sym := range t {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols[1:])
	return symbols
}
