package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy_Table(t *testing.T) {
	tests := []struct {
		name string
		keep Rule
		del  Rule
	}{
		{"majority", RuleMajority, RuleMajority},
		{"majorityDeletePluralityKeep", RulePlurality, RuleMajority},
		{"majorityKeepPluralityDelete", RuleMajority, RulePlurality},
		{"plurality", RulePlurality, RulePlurality},
		{"majorityKeepNeverDelete", RuleMajority, RuleNever},
		{"pluralityKeepNeverDelete", RulePlurality, RuleNever},
		{"majorityDeleteNeverKeep", RuleNever, RuleMajority},
		{"pluralityDeleteNeverKeep", RuleNever, RulePlurality},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseStrategy(tt.name, FallbackAsk)
			require.NoError(t, err)
			require.NotNil(t, s)
			assert.Equal(t, Strategy{Keep: tt.keep, Delete: tt.del, Fallback: FallbackAsk}, *s)
		})
	}
	assert.Len(t, StrategyNames(), len(tests)+1)
}

func TestParseStrategy_Ask(t *testing.T) {
	s, err := ParseStrategy("ask", FallbackSkip)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, "ask", s.String())
}

func TestParseStrategy_Invalid(t *testing.T) {
	_, err := ParseStrategy("Majority", FallbackSkip)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pluralityDeleteNeverKeep")
}

func TestParseFallback(t *testing.T) {
	f, err := ParseFallback("ASK")
	require.NoError(t, err)
	assert.Equal(t, FallbackAsk, f)

	f, err = ParseFallback("skip")
	require.NoError(t, err)
	assert.Equal(t, FallbackSkip, f)

	_, err = ParseFallback("maybe")
	assert.Error(t, err)
}

func TestStrategy_String(t *testing.T) {
	s := &Strategy{Keep: RulePlurality, Delete: RuleNever, Fallback: FallbackSkip}
	assert.Equal(t, "keep=plurality delete=never fallback=skip", s.String())
}
