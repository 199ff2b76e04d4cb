// internal/pil/types.go
package pil

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Preset names a fixed set of license defaults.
type Preset string

const (
	PresetCommercialRemix Preset = "commercial_remix"
	PresetNonCommercial   Preset = "non_commercial"
	PresetCommercialUse   Preset = "commercial_use"
	PresetCustom          Preset = "custom"
)

// Presets lists every preset in the order they are documented to agents.
var Presets = []Preset{
	PresetCommercialRemix,
	PresetNonCommercial,
	PresetCommercialUse,
	PresetCustom,
}

func (p Preset) Valid() bool {
	for _, known := range Presets {
		if p == known {
			return true
		}
	}
	return false
}

// LicenseTerms is the Programmable IP License record submitted to the
// license template contract. Zero addresses stand for "none".
type LicenseTerms struct {
	Transferable           bool           `json:"transferable"`
	RoyaltyPolicy          common.Address `json:"royalty_policy"`
	DefaultMintingFee      *big.Int       `json:"default_minting_fee"`
	Expiration             *big.Int       `json:"expiration"`
	CommercialUse          bool           `json:"commercial_use"`
	CommercialAttribution  bool           `json:"commercial_attribution"`
	CommercialRevShare     uint32         `json:"commercial_rev_share"`
	CommercialRevCeiling   *big.Int       `json:"commercial_rev_ceiling"`
	DerivativesAllowed     bool           `json:"derivatives_allowed"`
	DerivativesAttribution bool           `json:"derivatives_attribution"`
	DerivativesApproval    bool           `json:"derivatives_approval"`
	DerivativesReciprocal  bool           `json:"derivatives_reciprocal"`
	DerivativeRevCeiling   *big.Int       `json:"derivative_rev_ceiling"`
	Currency               common.Address `json:"currency"`
	URI                    string         `json:"uri"`
}

// HasRoyaltyPolicy reports whether a royalty policy contract is referenced.
func (t LicenseTerms) HasRoyaltyPolicy() bool {
	return t.RoyaltyPolicy != (common.Address{})
}

// Params carries caller input. Nil pointers mean "not supplied" and fall back
// to the preset default.
type Params struct {
	Transferable           *bool
	CommercialUse          *bool
	CommercialAttribution  *bool
	CommercialRevShare     *int64
	CommercialRevCeiling   *big.Int
	DerivativesAllowed     *bool
	DerivativesAttribution *bool
	DerivativesApproval    *bool
	DerivativesReciprocal  *bool
	DerivativeRevCeiling   *big.Int
	MintingFee             *decimal.Decimal
	Expiration             *big.Int
	URI                    string
	Description            string
}

// FeeQuote is the fee arithmetic for one mint request.
type FeeQuote struct {
	PerTokenFee    *big.Int `json:"per_token_fee"`
	Quantity       int64    `json:"quantity"`
	Total          *big.Int `json:"total"`
	Ceiling        *big.Int `json:"ceiling"`
	CallerSupplied bool     `json:"caller_supplied_ceiling"`
}

// BuildResult pairs built terms with any non-fatal parsing warnings.
type BuildResult struct {
	Preset   Preset                     `json:"preset"`
	Terms    LicenseTerms               `json:"terms"`
	Warnings []AmbiguousOverrideWarning `json:"warnings,omitempty"`
}
