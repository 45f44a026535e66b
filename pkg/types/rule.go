// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// LayoutRule selects the overlay drawn beside the page images.
type LayoutRule string

const (
	RuleLined   LayoutRule = "lined"
	RuleGrid    LayoutRule = "grid"
	RuleUnruled LayoutRule = "unruled"
)

// ruleAliases maps accepted input spellings onto the canonical rules.
// "blank" and "neither" are older names for the unruled layout.
var ruleAliases = map[string]LayoutRule{
	"lined":   RuleLined,
	"ruled":   RuleLined,
	"grid":    RuleGrid,
	"unruled": RuleUnruled,
	"blank":   RuleUnruled,
	"neither": RuleUnruled,
	"none":    RuleUnruled,
}

// ParseLayoutRule converts user input into a canonical LayoutRule.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseLayoutRule(s string) (LayoutRule, error) {
	if r, ok := ruleAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return r, nil
	}
	return "", fmt.Errorf("unknown layout rule %q: use lined, grid, or unruled", s)
}

// Valid reports whether r is one of the canonical rules.
func (r LayoutRule) Valid() bool {
	switch r {
	case RuleLined, RuleGrid, RuleUnruled:
		return true
	}
	return false
}

// HasHorizontal reports whether the rule draws horizontal writing lines.
func (r LayoutRule) HasHorizontal() bool {
	return r == RuleLined || r == RuleGrid
}

// HasVertical reports whether the rule draws vertical grid lines.
func (r LayoutRule) HasVertical() bool {
	return r == RuleGrid
}

func (r LayoutRule) String() string { return string(r) }
