package reconcile

import (
	"fmt"
	"strings"
)

// Rule says when a strategy may act on its own.
type Rule int

const (
	// RuleNever never acts automatically.
	RuleNever Rule = iota
	// RuleMajority acts only when more than half of the nodes agree.
	RuleMajority
	// RulePlurality acts on the largest group, which subsumes majority.
	RulePlurality
)

func (r Rule) String() string {
	switch r {
	case RuleMajority:
		return "majority"
	case RulePlurality:
		return "plurality"
	default:
		return "never"
	}
}

func (r Rule) coversMajority() bool {
	return r == RuleMajority || r == RulePlurality
}

// Fallback says what happens to documents a strategy cannot resolve.
type Fallback int

const (
	// FallbackSkip leaves the document unresolved.
	FallbackSkip Fallback = iota
	// FallbackAsk hands the document to the operator.
	FallbackAsk
)

func (f Fallback) String() string {
	if f == FallbackAsk {
		return "ask"
	}
	return "skip"
}

// ParseFallback parses "ask" or "skip".
func ParseFallback(s string) (Fallback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ask":
		return FallbackAsk, nil
	case "skip":
		return FallbackSkip, nil
	default:
		return FallbackSkip, fmt.Errorf("invalid fallback %q: must be ask or skip", s)
	}
}

// Strategy is the automatic resolution policy for a run. A nil *Strategy
// means every document is handed to the operator.
type Strategy struct {
	Keep     Rule
	Delete   Rule
	Fallback Fallback
}

func (s *Strategy) String() string {
	if s == nil {
		return StrategyAsk
	}
	return fmt.Sprintf("keep=%s delete=%s fallback=%s", s.Keep, s.Delete, s.Fallback)
}

// StrategyAsk is the strategy name that disables automatic resolution.
const StrategyAsk = "ask"

type rulePair struct {
	keep, del Rule
}

var strategyNames = []string{
	StrategyAsk,
	"majority",
	"majorityDeletePluralityKeep",
	"majorityKeepPluralityDelete",
	"plurality",
	"majorityKeepNeverDelete",
	"pluralityKeepNeverDelete",
	"majorityDeleteNeverKeep",
	"pluralityDeleteNeverKeep",
}

var strategyRules = map[string]rulePair{
	"majority":                    {keep: RuleMajority, del: RuleMajority},
	"majorityDeletePluralityKeep": {keep: RulePlurality, del: RuleMajority},
	"majorityKeepPluralityDelete": {keep: RuleMajority, del: RulePlurality},
	"plurality":                   {keep: RulePlurality, del: RulePlurality},
	"majorityKeepNeverDelete":     {keep: RuleMajority, del: RuleNever},
	"pluralityKeepNeverDelete":    {keep: RulePlurality, del: RuleNever},
	"majorityDeleteNeverKeep":     {keep: RuleNever, del: RuleMajority},
	"pluralityDeleteNeverKeep":    {keep: RuleNever, del: RulePlurality},
}

// StrategyNames returns the accepted --strategy values in display order.
func StrategyNames() []string {
	out := make([]string, len(strategyNames))
	copy(out, strategyNames)
	return out
}

// ParseStrategy maps a strategy name and fallback onto a Strategy.
// "ask" returns nil: the fallback is irrelevant because nothing is automatic.
func ParseStrategy(name string, fallback Fallback) (*Strategy, error) {
	if name == StrategyAsk {
		return nil, nil
	}
	rules, ok := strategyRules[name]
	if !ok {
		return nil, fmt.Errorf("invalid strategy %q: must be one of %s", name, strings.Join(strategyNames, ", "))
	}
	return &Strategy{Keep: rules.keep, Delete: rules.del, Fallback: fallback}, nil
}
