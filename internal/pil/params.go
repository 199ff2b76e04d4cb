// internal/pil/params.go
package pil

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPreset is used when the caller names none.
const DefaultPreset = PresetCommercialRemix

// Input keys accepted by ParseParams.
const (
	KeyPreset                 = "preset"
	KeyTransferable           = "transferable"
	KeyCommercialUse          = "commercial_use"
	KeyCommercialAttribution  = "commercial_attribution"
	KeyCommercialRevShare     = "commercial_rev_share"
	KeyCommercialRevCeiling   = "commercial_rev_ceiling"
	KeyDerivativesAllowed     = "derivatives_allowed"
	KeyDerivativesAttribution = "derivatives_attribution"
	KeyDerivativesApproval    = "derivatives_approval"
	KeyDerivativesReciprocal  = "derivatives_reciprocal"
	KeyDerivativeRevCeiling   = "derivative_rev_ceiling"
	KeyMintingFee             = "minting_fee"
	KeyExpiration             = "expiration"
	KeyURI                    = "uri"
	KeyDescription            = "description"
)

// ParseParams converts loosely typed tool arguments (JSON numbers, strings
// such as "true" or "2.5") into a preset and Params. Unknown keys are
// ignored so tool-specific arguments can share the same map.
func ParseParams(raw map[string]interface{}) (Preset, Params, error) {
	var p Params
	preset := DefaultPreset

	if v, ok := present(raw, KeyPreset); ok {
		s, isString := v.(string)
		if !isString {
			return "", p, invalid(KeyPreset, "must be a string")
		}
		preset = Preset(strings.ToLower(strings.TrimSpace(s)))
		if !preset.Valid() {
			return "", p, invalid(KeyPreset, "unknown preset %q", s)
		}
	}

	bools := []struct {
		key string
		dst **bool
	}{
		{KeyTransferable, &p.Transferable},
		{KeyCommercialUse, &p.CommercialUse},
		{KeyCommercialAttribution, &p.CommercialAttribution},
		{KeyDerivativesAllowed, &p.DerivativesAllowed},
		{KeyDerivativesAttribution, &p.DerivativesAttribution},
		{KeyDerivativesApproval, &p.DerivativesApproval},
		{KeyDerivativesReciprocal, &p.DerivativesReciprocal},
	}
	for _, b := range bools {
		v, ok := present(raw, b.key)
		if !ok {
			continue
		}
		parsed, err := ParseBool(b.key, v)
		if err != nil {
			return "", p, err
		}
		*b.dst = &parsed
	}

	if v, ok := present(raw, KeyCommercialRevShare); ok {
		share, err := parsePercent(KeyCommercialRevShare, v)
		if err != nil {
			return "", p, err
		}
		p.CommercialRevShare = &share
	}

	if v, ok := present(raw, KeyMintingFee); ok {
		fee, err := ParseAmount(KeyMintingFee, v)
		if err != nil {
			return "", p, err
		}
		if fee.IsNegative() {
			return "", p, invalid(KeyMintingFee, "must not be negative, got %s", fee.String())
		}
		p.MintingFee = &fee
	}

	ints := []struct {
		key string
		dst **big.Int
	}{
		{KeyCommercialRevCeiling, &p.CommercialRevCeiling},
		{KeyDerivativeRevCeiling, &p.DerivativeRevCeiling},
		{KeyExpiration, &p.Expiration},
	}
	for _, n := range ints {
		v, ok := present(raw, n.key)
		if !ok {
			continue
		}
		parsed, err := ParseBaseUnits(n.key, v)
		if err != nil {
			return "", p, err
		}
		*n.dst = parsed
	}

	if v, ok := present(raw, KeyURI); ok {
		s, isString := v.(string)
		if !isString {
			return "", p, invalid(KeyURI, "must be a string")
		}
		p.URI = strings.TrimSpace(s)
	}

	if v, ok := present(raw, KeyDescription); ok {
		s, isString := v.(string)
		if !isString {
			return "", p, invalid(KeyDescription, "must be a string")
		}
		p.Description = s
	}

	return preset, p, nil
}

// ParseBool accepts a JSON boolean or a string strconv.ParseBool understands.
func ParseBool(field string, v interface{}) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return false, invalid(field, "%q is not a boolean", val)
		}
		return b, nil
	default:
		return false, invalid(field, "must be a boolean, got %T", v)
	}
}

func parsePercent(field string, v interface{}) (int64, error) {
	d, err := ParseAmount(field, v)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, invalid(field, "must be a whole percentage, got %s", d.String())
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return 0, invalid(field, "must be between 0 and 100, got %s", d.String())
	}
	return d.IntPart(), nil
}

// present treats a nil or empty-string value as absent.
func present(raw map[string]interface{}, key string) (interface{}, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" && key != KeyDescription {
		return nil, false
	}
	return v, true
}
