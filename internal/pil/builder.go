// internal/pil/builder.go
package pil

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Builder turns presets and caller parameters into LicenseTerms. It holds
// only the protocol addresses it stamps into the record, so Build is pure.
type Builder struct {
	RoyaltyPolicy common.Address
	Currency      common.Address
	Decimals      int32
}

func NewBuilder(royaltyPolicy, currency common.Address) *Builder {
	return &Builder{
		RoyaltyPolicy: royaltyPolicy,
		Currency:      currency,
		Decimals:      DefaultDecimals,
	}
}

// draft is the mutable working set between defaults and the final record.
type draft struct {
	transferable           bool
	commercialUse          bool
	commercialAttribution  bool
	commercialRevShare     int64
	revShareFromText       bool
	revShareOutOfRange     string
	commercialRevCeiling   *big.Int
	derivativesAllowed     bool
	derivativesAttribution bool
	derivativesApproval    bool
	derivativesReciprocal  bool
	derivativeRevCeiling   *big.Int
	mintingFee             decimal.Decimal
	expiration             *big.Int
	uri                    string
}

func presetDefaults(preset Preset) draft {
	d := draft{
		transferable:         true,
		commercialRevCeiling: new(big.Int),
		derivativeRevCeiling: new(big.Int),
		mintingFee:           decimal.Zero,
		expiration:           new(big.Int),
	}

	switch preset {
	case PresetCommercialRemix:
		d.commercialUse = true
		d.commercialAttribution = true
		d.commercialRevShare = 5
		d.derivativesAllowed = true
		d.derivativesAttribution = true
		d.derivativesReciprocal = true
		d.mintingFee = decimal.NewFromInt(1)
	case PresetNonCommercial:
		d.derivativesAllowed = true
		d.derivativesAttribution = true
		d.derivativesReciprocal = true
	case PresetCommercialUse:
		d.commercialUse = true
		d.commercialAttribution = true
		d.mintingFee = decimal.NewFromInt(1)
	}

	return d
}

// applyParams layers caller input over the defaults.
func (d *draft) applyParams(p Params) {
	setBool(&d.transferable, p.Transferable)
	setBool(&d.commercialUse, p.CommercialUse)
	setBool(&d.commercialAttribution, p.CommercialAttribution)
	setBool(&d.derivativesAllowed, p.DerivativesAllowed)
	setBool(&d.derivativesAttribution, p.DerivativesAttribution)
	setBool(&d.derivativesApproval, p.DerivativesApproval)
	setBool(&d.derivativesReciprocal, p.DerivativesReciprocal)

	if p.CommercialRevShare != nil {
		d.commercialRevShare = *p.CommercialRevShare
	}
	if p.CommercialRevCeiling != nil {
		d.commercialRevCeiling = new(big.Int).Set(p.CommercialRevCeiling)
	}
	if p.DerivativeRevCeiling != nil {
		d.derivativeRevCeiling = new(big.Int).Set(p.DerivativeRevCeiling)
	}
	if p.MintingFee != nil {
		d.mintingFee = *p.MintingFee
	}
	if p.Expiration != nil {
		d.expiration = new(big.Int).Set(p.Expiration)
	}
	d.uri = p.URI
}

// enforcePreset pins the fields a preset does not let callers change.
func (d *draft) enforcePreset(preset Preset) {
	switch preset {
	case PresetCommercialRemix:
		d.commercialUse = true
		d.derivativesAllowed = true
		d.derivativesAttribution = true
		d.derivativesReciprocal = true
		d.derivativesApproval = false
	case PresetNonCommercial:
		d.commercialUse = false
		d.mintingFee = decimal.Zero
		d.derivativesAllowed = true
		d.derivativesAttribution = true
		d.derivativesReciprocal = true
		d.derivativesApproval = false
	case PresetCommercialUse:
		d.commercialUse = true
		d.derivativesAllowed = false
	}
}

// normalize clears fields whose gate is off. A revenue share that came from
// the description survives a disabled commercial gate; the licensing
// contract ignores it in that case.
func (d *draft) normalize() {
	if !d.commercialUse {
		d.commercialAttribution = false
		d.commercialRevCeiling = new(big.Int)
		if !d.revShareFromText {
			d.commercialRevShare = 0
		}
	}
	if !d.derivativesAllowed {
		d.derivativesAttribution = false
		d.derivativesApproval = false
		d.derivativesReciprocal = false
		d.derivativeRevCeiling = new(big.Int)
	}
}

func (d *draft) validate() error {
	if d.revShareOutOfRange != "" {
		return invalid("commercial_rev_share", "must be between 0 and 100, got %s", d.revShareOutOfRange)
	}
	if d.commercialRevShare < 0 || d.commercialRevShare > 100 {
		return invalid("commercial_rev_share", "must be between 0 and 100, got %d", d.commercialRevShare)
	}
	if d.mintingFee.IsNegative() {
		return invalid("minting_fee", "must not be negative, got %s", d.mintingFee.String())
	}
	for field, v := range map[string]*big.Int{
		"commercial_rev_ceiling": d.commercialRevCeiling,
		"derivative_rev_ceiling": d.derivativeRevCeiling,
		"expiration":             d.expiration,
	} {
		if v.Sign() < 0 {
			return invalid(field, "must not be negative, got %s", v.String())
		}
	}
	return nil
}

// Build produces the license terms for preset with params layered on top.
func (b *Builder) Build(preset Preset, params Params) (*BuildResult, error) {
	if !preset.Valid() {
		return nil, invalid("preset", "unknown preset %q", string(preset))
	}

	d := presetDefaults(preset)
	d.applyParams(params)
	if err := d.validate(); err != nil {
		return nil, err
	}
	d.enforcePreset(preset)

	var warnings []AmbiguousOverrideWarning
	if preset == PresetCustom && params.Description != "" {
		warnings = applyOverrides(params.Description, &d)
		if err := d.validate(); err != nil {
			return nil, err
		}
	}

	d.normalize()

	fee, err := ToBaseUnits(d.mintingFee, b.decimals())
	if err != nil {
		return nil, invalid("minting_fee", "must not be negative, got %s", d.mintingFee.String())
	}

	terms := LicenseTerms{
		Transferable:           d.transferable,
		DefaultMintingFee:      fee,
		Expiration:             d.expiration,
		CommercialUse:          d.commercialUse,
		CommercialAttribution:  d.commercialAttribution,
		CommercialRevShare:     uint32(d.commercialRevShare),
		CommercialRevCeiling:   d.commercialRevCeiling,
		DerivativesAllowed:     d.derivativesAllowed,
		DerivativesAttribution: d.derivativesAttribution,
		DerivativesApproval:    d.derivativesApproval,
		DerivativesReciprocal:  d.derivativesReciprocal,
		DerivativeRevCeiling:   d.derivativeRevCeiling,
		Currency:               b.Currency,
		URI:                    d.uri,
	}

	if preset == PresetNonCommercial {
		terms.Currency = common.Address{}
	} else if d.commercialUse && d.commercialRevShare > 0 {
		terms.RoyaltyPolicy = b.RoyaltyPolicy
	}

	return &BuildResult{Preset: preset, Terms: terms, Warnings: warnings}, nil
}

func (b *Builder) decimals() int32 {
	if b.Decimals == 0 {
		return DefaultDecimals
	}
	return b.Decimals
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
