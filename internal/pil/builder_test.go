// internal/pil/builder_test.go
package pil

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testLAP = common.HexToAddress("0xBe54FB168b3c982b7AaE60dB6CF75Bd8447b390E")
	testWIP = common.HexToAddress("0x1514000000000000000000000000000000000000")
)

func newTestBuilder() *Builder {
	return NewBuilder(testLAP, testWIP)
}

func boolPtr(b bool) *bool { return &b }

func sharePtr(v int64) *int64 { return &v }

func feePtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestBuildCommercialRemixDefaults(t *testing.T) {
	res, err := newTestBuilder().Build(PresetCommercialRemix, Params{})
	require.NoError(t, err)

	terms := res.Terms
	assert.True(t, terms.Transferable)
	assert.True(t, terms.CommercialUse)
	assert.True(t, terms.CommercialAttribution)
	assert.Equal(t, uint32(5), terms.CommercialRevShare)
	assert.True(t, terms.DerivativesAllowed)
	assert.True(t, terms.DerivativesAttribution)
	assert.True(t, terms.DerivativesReciprocal)
	assert.False(t, terms.DerivativesApproval)
	assert.Equal(t, testLAP, terms.RoyaltyPolicy)
	assert.Equal(t, testWIP, terms.Currency)
	assert.Equal(t, "1000000000000000000", terms.DefaultMintingFee.String())
	assert.Equal(t, int64(0), terms.Expiration.Int64())
	assert.Empty(t, res.Warnings)
}

func TestBuildCommercialRemixZeroShareHasNoRoyaltyPolicy(t *testing.T) {
	res, err := newTestBuilder().Build(PresetCommercialRemix, Params{
		CommercialRevShare: sharePtr(0),
		MintingFee:         feePtr("2.5"),
	})
	require.NoError(t, err)
	assert.False(t, res.Terms.HasRoyaltyPolicy())
	assert.Equal(t, "2500000000000000000", res.Terms.DefaultMintingFee.String())
}

func TestBuildCommercialRemixIgnoresDerivativeOverrides(t *testing.T) {
	res, err := newTestBuilder().Build(PresetCommercialRemix, Params{
		DerivativesAllowed:  boolPtr(false),
		DerivativesApproval: boolPtr(true),
		CommercialUse:       boolPtr(false),
	})
	require.NoError(t, err)
	assert.True(t, res.Terms.CommercialUse)
	assert.True(t, res.Terms.DerivativesAllowed)
	assert.False(t, res.Terms.DerivativesApproval)
}

func TestBuildNonCommercial(t *testing.T) {
	res, err := newTestBuilder().Build(PresetNonCommercial, Params{
		CommercialUse:      boolPtr(true),
		CommercialRevShare: sharePtr(30),
		MintingFee:         feePtr("9"),
	})
	require.NoError(t, err)

	terms := res.Terms
	assert.False(t, terms.CommercialUse)
	assert.False(t, terms.CommercialAttribution)
	assert.Zero(t, terms.CommercialRevShare)
	assert.Zero(t, terms.DefaultMintingFee.Sign())
	assert.Equal(t, common.Address{}, terms.RoyaltyPolicy)
	assert.Equal(t, common.Address{}, terms.Currency)
	assert.True(t, terms.DerivativesAllowed)
	assert.True(t, terms.DerivativesAttribution)
	assert.True(t, terms.DerivativesReciprocal)
	assert.False(t, terms.DerivativesApproval)
}

func TestBuildCommercialUseForcesNoDerivatives(t *testing.T) {
	res, err := newTestBuilder().Build(PresetCommercialUse, Params{
		DerivativesAllowed:     boolPtr(true),
		DerivativesAttribution: boolPtr(true),
		DerivativesApproval:    boolPtr(true),
		DerivativesReciprocal:  boolPtr(true),
		DerivativeRevCeiling:   big.NewInt(500),
	})
	require.NoError(t, err)

	terms := res.Terms
	assert.True(t, terms.CommercialUse)
	assert.False(t, terms.DerivativesAllowed)
	assert.False(t, terms.DerivativesAttribution)
	assert.False(t, terms.DerivativesApproval)
	assert.False(t, terms.DerivativesReciprocal)
	assert.Zero(t, terms.DerivativeRevCeiling.Sign())
	assert.False(t, terms.HasRoyaltyPolicy(), "commercial_use defaults to zero revenue share")
}

func TestBuildCommercialUseWithShareHasRoyaltyPolicy(t *testing.T) {
	res, err := newTestBuilder().Build(PresetCommercialUse, Params{CommercialRevShare: sharePtr(10)})
	require.NoError(t, err)
	assert.Equal(t, testLAP, res.Terms.RoyaltyPolicy)
}

func TestBuildCommercialGateClearsFields(t *testing.T) {
	res, err := newTestBuilder().Build(PresetCustom, Params{
		CommercialUse:         boolPtr(false),
		CommercialAttribution: boolPtr(true),
		CommercialRevShare:    sharePtr(40),
		CommercialRevCeiling:  big.NewInt(1000),
	})
	require.NoError(t, err)

	terms := res.Terms
	assert.False(t, terms.CommercialAttribution)
	assert.Zero(t, terms.CommercialRevShare)
	assert.Zero(t, terms.CommercialRevCeiling.Sign())
	assert.False(t, terms.HasRoyaltyPolicy())
}

func TestBuildDerivativesGateClearsFields(t *testing.T) {
	for _, preset := range Presets {
		t.Run(string(preset), func(t *testing.T) {
			res, err := newTestBuilder().Build(preset, Params{
				DerivativesAllowed:     boolPtr(false),
				DerivativesAttribution: boolPtr(true),
				DerivativesApproval:    boolPtr(true),
				DerivativesReciprocal:  boolPtr(true),
			})
			require.NoError(t, err)
			if res.Terms.DerivativesAllowed {
				return
			}
			assert.False(t, res.Terms.DerivativesAttribution)
			assert.False(t, res.Terms.DerivativesApproval)
			assert.False(t, res.Terms.DerivativesReciprocal)
		})
	}
}

func TestBuildRoyaltyPolicyFollowsRevenueShare(t *testing.T) {
	presets := []Preset{PresetCommercialRemix, PresetCommercialUse, PresetCustom}
	for _, preset := range presets {
		for _, commercial := range []bool{true, false} {
			for _, share := range []int64{0, 1, 50, 100} {
				res, err := newTestBuilder().Build(preset, Params{
					CommercialUse:      boolPtr(commercial),
					CommercialRevShare: sharePtr(share),
				})
				require.NoError(t, err)
				terms := res.Terms
				want := terms.CommercialUse && terms.CommercialRevShare > 0
				assert.Equal(t, want, terms.HasRoyaltyPolicy(),
					"preset=%s commercial=%v share=%d", preset, commercial, share)
			}
		}
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name   string
		preset Preset
		params Params
		field  string
	}{
		{"unknown preset", Preset("exclusive"), Params{}, "preset"},
		{"share above range", PresetCustom, Params{CommercialRevShare: sharePtr(101)}, "commercial_rev_share"},
		{"negative share", PresetCommercialRemix, Params{CommercialRevShare: sharePtr(-1)}, "commercial_rev_share"},
		{"negative fee", PresetCustom, Params{MintingFee: feePtr("-0.5")}, "minting_fee"},
		{"negative expiration", PresetCustom, Params{Expiration: big.NewInt(-1)}, "expiration"},
		{"negative ceiling", PresetCustom, Params{CommercialRevCeiling: big.NewInt(-10)}, "commercial_rev_ceiling"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestBuilder().Build(tt.preset, tt.params)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestBuildDescriptionOverrides(t *testing.T) {
	res, err := newTestBuilder().Build(PresetCustom, Params{
		CommercialUse: boolPtr(true),
		MintingFee:    feePtr("3"),
		Description:   "no commercial, free minting, 20% revenue share",
	})
	require.NoError(t, err)

	terms := res.Terms
	assert.False(t, terms.CommercialUse)
	assert.Zero(t, terms.DefaultMintingFee.Sign())
	assert.Equal(t, uint32(20), terms.CommercialRevShare, "revenue share from text is kept")
	assert.False(t, terms.HasRoyaltyPolicy())
}

func TestBuildDescriptionOnlyForCustom(t *testing.T) {
	res, err := newTestBuilder().Build(PresetCommercialRemix, Params{
		Description: "no derivatives, $7",
	})
	require.NoError(t, err)
	assert.True(t, res.Terms.DerivativesAllowed)
	assert.Equal(t, "1000000000000000000", res.Terms.DefaultMintingFee.String())
	assert.Empty(t, res.Warnings)
}

func TestBuildDescriptionShareOutOfRange(t *testing.T) {
	_, err := newTestBuilder().Build(PresetCustom, Params{Description: "commercial with 250% share"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "commercial_rev_share", verr.Field)
}

func TestBuildDescriptionShareTooLargeToParse(t *testing.T) {
	res, err := newTestBuilder().Build(PresetCustom, Params{Description: "commercial with 18446744073709551666% share"})
	assert.Nil(t, res)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "commercial_rev_share", verr.Field)
	assert.Contains(t, verr.Message, "18446744073709551666")
}

func TestBuildIsDeterministic(t *testing.T) {
	params := Params{
		CommercialUse:        boolPtr(true),
		CommercialRevShare:   sharePtr(12),
		MintingFee:           feePtr("0.125"),
		CommercialRevCeiling: big.NewInt(9000),
		Expiration:           big.NewInt(1893456000),
		URI:                  "ipfs://terms",
		Description:          "remixes welcome, $0.5 each",
	}

	first, err := newTestBuilder().Build(PresetCustom, params)
	require.NoError(t, err)
	second, err := newTestBuilder().Build(PresetCustom, params)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, first, second)
}

func TestBuildDoesNotAliasCallerValues(t *testing.T) {
	ceiling := big.NewInt(100)
	res, err := newTestBuilder().Build(PresetCommercialRemix, Params{CommercialRevCeiling: ceiling})
	require.NoError(t, err)

	ceiling.SetInt64(1)
	assert.Equal(t, int64(100), res.Terms.CommercialRevCeiling.Int64())
}
