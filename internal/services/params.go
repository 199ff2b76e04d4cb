// internal/services/params.go
package services

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/javajoker/story-mcp/internal/blockchain"
	"github.com/javajoker/story-mcp/internal/pil"
)

func invalidField(field, format string, args ...interface{}) *pil.ValidationError {
	return &pil.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func parseAddress(field, v string) (common.Address, error) {
	v = strings.TrimSpace(v)
	if !common.IsHexAddress(v) {
		return common.Address{}, invalidField(field, "%q is not a valid address", v)
	}
	return common.HexToAddress(v), nil
}

// parseOptionalAddress returns fallback when v is empty.
func parseOptionalAddress(field, v string, fallback common.Address) (common.Address, error) {
	if strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	return parseAddress(field, v)
}

// parseID parses a positive on-chain integer id such as a license terms id.
func parseID(field string, v interface{}) (*big.Int, error) {
	id, err := pil.ParseBaseUnits(field, v)
	if err != nil {
		return nil, err
	}
	if id.Sign() == 0 {
		return nil, invalidField(field, "must be greater than zero")
	}
	return id, nil
}

// parseTokenID parses an NFT token id, where zero is valid.
func parseTokenID(field string, v interface{}) (*big.Int, error) {
	return pil.ParseBaseUnits(field, v)
}

// parseHash accepts an optional 0x-prefixed 32-byte hex digest.
func parseHash(field, v string) (common.Hash, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return common.Hash{}, nil
	}
	raw := strings.TrimPrefix(v, "0x")
	if len(raw) != 64 {
		return common.Hash{}, invalidField(field, "must be a 32-byte hex digest")
	}
	for _, r := range raw {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return common.Hash{}, invalidField(field, "must be a 32-byte hex digest")
		}
	}
	return common.HexToHash(v), nil
}

func resolveToken(tokens blockchain.TokenShortcuts, field, v string) (blockchain.Token, error) {
	tok, err := tokens.Resolve(v)
	if err != nil {
		return blockchain.Token{}, invalidField(field, "%s", err.Error())
	}
	return tok, nil
}

func explorerTxURL(base string, tx *blockchain.TxResult) string {
	if base == "" || tx == nil {
		return ""
	}
	return strings.TrimRight(base, "/") + "/tx/" + tx.TxHash.Hex()
}
