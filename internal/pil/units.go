// internal/pil/units.go
package pil

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is the base-unit exponent of IP and WIP.
const DefaultDecimals int32 = 18

// ToBaseUnits scales a decimal token amount to integer base units. The
// multiplication is exact; truncation toward zero happens only when the
// scaled value is converted to an integer.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, invalid("amount", "must not be negative, got %s", amount.String())
	}
	return amount.Shift(decimals).BigInt(), nil
}

// FromBaseUnits renders base units as a decimal token string.
func FromBaseUnits(value *big.Int, decimals int32) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -decimals).String()
}

// ParseAmount accepts the shapes a JSON decoder or form field can produce
// for a decimal amount. float64 values go through their shortest decimal
// representation so no binary rounding leaks into base units.
func ParseAmount(field string, v interface{}) (decimal.Decimal, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return decimal.Zero, invalid(field, "must not be empty")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, invalid(field, "%q is not a decimal number", val)
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, invalid(field, "%q is not a decimal number", val.String())
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(val), nil
	case float32:
		return decimal.NewFromFloat32(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(val), 0), nil
	default:
		return decimal.Zero, invalid(field, "unsupported amount type %T", v)
	}
}

// ParseBaseUnits parses a non-negative integer already expressed in base
// units, such as a revenue ceiling or an explicit max fee.
func ParseBaseUnits(field string, v interface{}) (*big.Int, error) {
	d, err := ParseAmount(field, v)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, invalid(field, "must not be negative, got %s", d.String())
	}
	if !d.Equal(d.Truncate(0)) {
		return nil, invalid(field, "must be a whole number of base units, got %s", d.String())
	}
	return d.BigInt(), nil
}

// MustBaseUnits is for package-level constants.
func MustBaseUnits(amount string, decimals int32) *big.Int {
	v, err := ToBaseUnits(decimal.RequireFromString(amount), decimals)
	if err != nil {
		panic(fmt.Sprintf("pil: %v", err))
	}
	return v
}
