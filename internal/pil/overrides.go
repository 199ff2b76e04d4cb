// internal/pil/overrides.go
package pil

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// overrideRule is one keyword rule. Rules are evaluated in slice order
// against the original lower-cased description; the first rule to set a
// field owns it and later rules for that field are reported and skipped.
type overrideRule struct {
	name  string
	field string
	match func(text string) (apply func(d *draft), extra string, ok bool)
}

var (
	percentPattern = regexp.MustCompile(`(?:^|[^\d.])(\d+)\s*%`)
	dollarPattern  = regexp.MustCompile(`\$\s*(\d+(?:\.\d+)?)`)
	unitPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:wip|dollars|usd)\b`)
)

var overrideRules = []overrideRule{
	{
		name:  "no_commercial",
		field: "commercial_use",
		match: func(text string) (func(*draft), string, bool) {
			if !containsAny(text, "no commercial", "non-commercial") {
				return nil, "", false
			}
			return func(d *draft) { d.commercialUse = false }, "", true
		},
	},
	{
		name:  "no_derivatives",
		field: "derivatives_allowed",
		match: func(text string) (func(*draft), string, bool) {
			if !containsAny(text, "no derivatives", "no remixes") {
				return nil, "", false
			}
			return func(d *draft) { d.derivativesAllowed = false }, "", true
		},
	},
	{
		name:  "free",
		field: "minting_fee",
		match: func(text string) (func(*draft), string, bool) {
			if !containsAny(text, "free", "no fee") {
				return nil, "", false
			}
			return func(d *draft) { d.mintingFee = decimal.Zero }, "", true
		},
	},
	{
		name:  "percentage",
		field: "commercial_rev_share",
		match: func(text string) (func(*draft), string, bool) {
			matches := percentPattern.FindAllStringSubmatch(text, -1)
			if len(matches) == 0 {
				return nil, "", false
			}
			share, err := strconv.ParseInt(matches[0][1], 10, 64)
			if err != nil {
				raw := matches[0][1]
				return func(d *draft) {
					d.revShareOutOfRange = raw
					d.revShareFromText = true
				}, "", true
			}
			extra := ""
			if len(matches) > 1 {
				extra = "several percentages found, using " + matches[0][1] + "%"
			}
			return func(d *draft) {
				d.commercialRevShare = share
				d.revShareFromText = true
			}, extra, true
		},
	},
	{
		name:  "price",
		field: "minting_fee",
		match: func(text string) (func(*draft), string, bool) {
			raw := firstAmount(text)
			if raw == "" {
				return nil, "", false
			}
			fee, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, "", false
			}
			return func(d *draft) { d.mintingFee = fee }, "", true
		},
	},
}

// applyOverrides mutates d according to the description and returns any
// ambiguity warnings.
func applyOverrides(description string, d *draft) []AmbiguousOverrideWarning {
	text := strings.ToLower(strings.TrimSpace(description))
	if text == "" {
		return nil
	}

	var warnings []AmbiguousOverrideWarning
	owner := make(map[string]string)

	for _, rule := range overrideRules {
		apply, extra, ok := rule.match(text)
		if !ok {
			continue
		}
		if first, taken := owner[rule.field]; taken {
			warnings = append(warnings, AmbiguousOverrideWarning{
				Field:   rule.field,
				Rule:    rule.name,
				Message: "ignored, field already set by rule " + first,
			})
			continue
		}
		owner[rule.field] = rule.name
		apply(d)
		if extra != "" {
			warnings = append(warnings, AmbiguousOverrideWarning{
				Field:   rule.field,
				Rule:    rule.name,
				Message: extra,
			})
		}
	}

	if len(owner) == 0 {
		warnings = append(warnings, AmbiguousOverrideWarning{
			Message: "description did not match any override rule",
		})
	}

	return warnings
}

// firstAmount returns the earliest "$N" or "N wip|dollars|usd" amount.
func firstAmount(text string) string {
	best, bestAt := "", -1
	if loc := dollarPattern.FindStringSubmatchIndex(text); loc != nil {
		best, bestAt = text[loc[2]:loc[3]], loc[0]
	}
	if loc := unitPattern.FindStringSubmatchIndex(text); loc != nil {
		if bestAt < 0 || loc[0] < bestAt {
			best = text[loc[2]:loc[3]]
		}
	}
	return best
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
