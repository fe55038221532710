package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rsrepair/internal/reconcile"
)

func ptr[T any](v T) *T { return &v }

func TestLoad_YAML(t *testing.T) {
	f, err := Load("testdata/repair.yaml")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/rsrepair/catalog.db", *f.DB)
	assert.Equal(t, "majorityKeepNeverDelete", *f.Strategy)
	assert.Equal(t, "ask", *f.Fallback)
	assert.False(t, *f.DryRun)
	assert.Nil(t, f.Verbose)
	assert.Nil(t, f.Format)
}

func TestLoad_TOML(t *testing.T) {
	f, err := Load("testdata/repair.toml")
	require.NoError(t, err)

	assert.Equal(t, "catalog.db", *f.DB)
	assert.Equal(t, "plurality", *f.Strategy)
	assert.True(t, *f.Verbose)
	assert.Equal(t, "json", *f.Format)
	assert.Nil(t, f.DryRun)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("testdata/missing.yaml")
	assert.ErrorContains(t, err, "read config")

	_, err = Load("testdata/unknown.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dryrun")
}

func TestParse_SchemaRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown strategy", "strategy: quorum\n"},
		{"unknown fallback", "fallback: retry\n"},
		{"unknown format", "format: xml\n"},
		{"empty db", "db: \"\"\n"},
		{"wrong type", "dry_run: sometimes\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), ".yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestParse_AcceptsEveryStrategy(t *testing.T) {
	for _, name := range reconcile.StrategyNames() {
		f, err := Parse([]byte("strategy = \""+name+"\"\n"), ".toml")
		require.NoError(t, err, name)
		assert.Equal(t, name, *f.Strategy)
	}
}

func TestParse_EmptyAndUnsupported(t *testing.T) {
	f, err := Parse(nil, ".yml")
	require.NoError(t, err)
	assert.Equal(t, &File{}, f)

	_, err = Parse([]byte("{}"), ".json")
	assert.ErrorContains(t, err, "unsupported config file extension")
}

func TestResolve_Defaults(t *testing.T) {
	s, err := Resolve(nil, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, Settings{
		DB:           DefaultDB,
		StrategyName: "ask",
		Fallback:     reconcile.FallbackSkip,
		DryRun:       true,
		Format:       "text",
	}, s)
	assert.Nil(t, s.Strategy, "ask asks about every document")
}

func TestResolve_FlagsOverrideFile(t *testing.T) {
	f, err := Load("testdata/repair.yaml")
	require.NoError(t, err)

	s, err := Resolve(f, Overrides{Strategy: ptr("majority"), DryRun: ptr(true)})
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/rsrepair/catalog.db", s.DB)
	assert.Equal(t, "majority", s.StrategyName)
	assert.Equal(t, &reconcile.Strategy{Keep: reconcile.RuleMajority, Delete: reconcile.RuleMajority, Fallback: reconcile.FallbackAsk}, s.Strategy)
	assert.True(t, s.DryRun)
}

func TestResolve_DryRun(t *testing.T) {
	s, err := Resolve(nil, Overrides{NoDryRun: ptr(true)})
	require.NoError(t, err)
	assert.False(t, s.DryRun)

	f := &File{DryRun: ptr(false)}
	s, err = Resolve(f, Overrides{})
	require.NoError(t, err)
	assert.False(t, s.DryRun)

	_, err = Resolve(nil, Overrides{DryRun: ptr(true), NoDryRun: ptr(true)})
	assert.ErrorContains(t, err, "cannot be used together")
}

func TestResolve_Invalid(t *testing.T) {
	_, err := Resolve(nil, Overrides{Strategy: ptr("quorum")})
	assert.ErrorContains(t, err, "invalid strategy")

	_, err = Resolve(nil, Overrides{Fallback: ptr("retry")})
	assert.ErrorContains(t, err, "invalid fallback")

	_, err = Resolve(nil, Overrides{Format: ptr("xml")})
	assert.ErrorContains(t, err, "invalid format")

	_, err = Resolve(nil, Overrides{DB: ptr("")})
	assert.ErrorContains(t, err, "must not be empty")
}
