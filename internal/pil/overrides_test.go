// internal/pil/overrides_test.go
package pil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func freshDraft() draft {
	d := presetDefaults(PresetCustom)
	d.commercialUse = true
	d.derivativesAllowed = true
	d.mintingFee = decimal.NewFromInt(4)
	return d
}

func TestApplyOverridesRules(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		commercial  bool
		derivatives bool
		fee         string
		share       int64
		warnings    int
	}{
		{"non-commercial", "Non-Commercial only", false, true, "4", 0, 0},
		{"no remixes", "No remixes please", true, false, "4", 0, 0},
		{"no fee", "no fee for fans", true, true, "0", 0, 0},
		{"dollar price", "costs $2.50 per license", true, true, "2.5", 0, 0},
		{"wip price", "charge 3 WIP to mint", true, true, "3", 0, 0},
		{"usd price", "12 usd", true, true, "12", 0, 0},
		{"percentage", "take 15% of revenue", true, true, "4", 15, 0},
		{"spaced percentage", "7 % cut", true, true, "4", 7, 0},
		{"free beats price", "free to mint, otherwise $5", true, true, "0", 0, 1},
		{"first percentage wins", "10% now, 20% later", true, true, "4", 10, 1},
		{"nothing matched", "a lovely painting", true, true, "4", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := freshDraft()
			warnings := applyOverrides(tt.text, &d)
			assert.Equal(t, tt.commercial, d.commercialUse)
			assert.Equal(t, tt.derivatives, d.derivativesAllowed)
			assert.Equal(t, tt.fee, d.mintingFee.String())
			assert.Equal(t, tt.share, d.commercialRevShare)
			assert.Len(t, warnings, tt.warnings)
		})
	}
}

func TestApplyOverridesEmptyDescription(t *testing.T) {
	d := freshDraft()
	assert.Nil(t, applyOverrides("   ", &d))
	assert.True(t, d.commercialUse)
}

func TestApplyOverridesPriceOrder(t *testing.T) {
	d := freshDraft()
	applyOverrides("2 usd or $9", &d)
	assert.Equal(t, "2", d.mintingFee.String())

	d = freshDraft()
	applyOverrides("$9 or 2 usd", &d)
	assert.Equal(t, "9", d.mintingFee.String())
}

func TestApplyOverridesMarksTextShare(t *testing.T) {
	d := freshDraft()
	applyOverrides("5%", &d)
	assert.True(t, d.revShareFromText)
}
