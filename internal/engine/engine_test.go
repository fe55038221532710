package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rsrepair/internal/model"
	"github.com/roach88/rsrepair/internal/prompt"
	"github.com/roach88/rsrepair/internal/reconcile"
	"github.com/roach88/rsrepair/internal/store"
	"github.com/roach88/rsrepair/internal/testutil"
)

var (
	orders = model.Namespace{DB: "shop", Collection: "orders"}
	quiet  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func strategy(t *testing.T, name string) *reconcile.Strategy {
	t.Helper()
	s, err := reconcile.ParseStrategy(name, reconcile.FallbackSkip)
	require.NoError(t, err)
	return s
}

func find(t *testing.T, s *store.Store, ns model.Namespace, id model.ID) string {
	t.Helper()
	d, err := s.Collection(ns).FindByID(context.Background(), id)
	if errors.Is(err, store.ErrNotFound) {
		return ""
	}
	require.NoError(t, err)
	return string(d.Raw())
}

func fixedDocs(t *testing.T, s *store.Store) []string {
	t.Helper()
	ranges, err := s.ScannedRanges(context.Background())
	require.NoError(t, err)
	var ids []string
	for _, r := range ranges {
		for _, id := range r.FixedDocs.IDs() {
			ids = append(ids, id.String())
		}
	}
	return ids
}

func TestRun_ScenarioDDryRun(t *testing.T) {
	s := testutil.SeedStore(t, "testdata/scenario_a.yaml")
	before := find(t, s, orders, model.IntID(7))

	var out bytes.Buffer
	e := New(s, Options{Strategy: strategy(t, "majority"), DryRun: true},
		WithReporter(NewTextReporter(&out)),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
		WithLogger(quiet),
	)
	summary, err := e.Run(context.Background())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "scenario_d_dry_run", out.Bytes())

	assert.Equal(t, before, find(t, s, orders, model.IntID(7)), "dry run must not write")
	assert.Empty(t, fixedDocs(t, s), "dry run must not record fixes")
	entries, err := s.Journal(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Equal(t, Summary{RunID: "run-1", DryRun: true, Ranges: 1, Processed: 1, Replaced: 1}, summary)
}

func TestRun_ScenarioAReplaces(t *testing.T) {
	s := testutil.SeedStore(t, "testdata/scenario_a.yaml")

	var out bytes.Buffer
	e := New(s, Options{Strategy: strategy(t, "majority")},
		WithReporter(NewTextReporter(&out)),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
		WithLogger(quiet),
	)
	summary, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, `{"_id":7,"name":"widget","notes":"only in the snapshot","qty":3}`, find(t, s, orders, model.IntID(7)))
	assert.Equal(t, []string{"7"}, fixedDocs(t, s))
	assert.Empty(t, out.String(), "not verbose, not a dry run")
	assert.Equal(t, 1, summary.Replaced)

	entries, err := s.Journal(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.ActionReplace, entries[0].Action)
	assert.Equal(t, 3, entries[0].Agreeing)
	assert.Equal(t, 5, entries[0].Total)

	// The unscanned range is never touched.
	assert.Equal(t, `{"_id":150,"name":"gadget"}`, find(t, s, orders, model.IntID(150)))
}

func TestRun_ScenarioCDeletes(t *testing.T) {
	s := testutil.SeedStore(t, "testdata/scenario_c.yaml")

	var out bytes.Buffer
	e := New(s, Options{Strategy: strategy(t, "majorityDeleteNeverKeep"), Verbose: true},
		WithReporter(NewTextReporter(&out)),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
		WithLogger(quiet),
	)
	_, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Document in 'shop.orders' with _id \"sku-1\" was deleted (missing on 2/3 nodes)\n", out.String())
	assert.Empty(t, find(t, s, orders, model.StringID("sku-1")))
	assert.Equal(t, []string{`"sku-1"`}, fixedDocs(t, s))
}

func TestRun_NeverDeleteLeavesMajorityMissing(t *testing.T) {
	s := testutil.SeedStore(t, "testdata/scenario_c.yaml")

	var out bytes.Buffer
	e := New(s, Options{Strategy: strategy(t, "majorityKeepNeverDelete"), Verbose: true},
		WithReporter(NewJSONReporter(&out)),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
		WithLogger(quiet),
	)
	summary, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.JSONEq(t, `{"namespace":{"db":"shop","collection":"orders"},"id":"sku-1","outcome":"unresolved","agreeing":0,"total":3,"dry_run":false}`, out.String())
	assert.Equal(t, `{"_id":"sku-1","price":10}`, find(t, s, orders, model.StringID("sku-1")))
	assert.Empty(t, fixedDocs(t, s))
	assert.Equal(t, 1, summary.Unresolved)
}

func TestRun_ResumesAtFirstUnfixedDocument(t *testing.T) {
	s := testutil.SeedStore(t, "testdata/resume.yaml")
	ids := testutil.NewSequentialRunIDs()
	ctx := context.Background()

	// First run: the operator keeps version 1 twice, then input closes.
	first := testutil.NewScriptedResolver(
		testutil.Decide(reconcile.Keep(0)),
		testutil.Decide(reconcile.Keep(0)),
	)
	_, err := New(s, Options{}, WithResolver(first), WithRunIDGenerator(ids), WithLogger(quiet)).Run(ctx)
	require.Error(t, err)
	assert.True(t, IsPromptClosed(err), "got %v", err)
	assert.Equal(t, []string{"1", "3", "4"}, first.Asked(), "2 was already fixed")
	assert.ElementsMatch(t, []string{"1", "2", "3"}, fixedDocs(t, s))

	// Second run picks up at 4 and asks about each remaining id once.
	second := testutil.NewScriptedResolver().Always(testutil.Decide(reconcile.Skip()))
	summary, err := New(s, Options{}, WithResolver(second), WithRunIDGenerator(ids), WithLogger(quiet)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", `"a"`}, second.Asked())
	assert.Equal(t, 3, summary.AlreadyFixed)
	assert.Equal(t, 2, summary.Unresolved)

	// Skipped ids stay pending for the next run.
	third := testutil.NewScriptedResolver().Always(testutil.Decide(reconcile.Skip()))
	_, err = New(s, Options{}, WithResolver(third), WithRunIDGenerator(ids), WithLogger(quiet)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", `"a"`}, third.Asked())

	entries, err := s.Journal(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	entries, err = s.Journal(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_StrategyDecidesWithoutAsking(t *testing.T) {
	s := testutil.SeedStore(t, "testdata/resume.yaml")
	resolver := testutil.NewScriptedResolver()

	summary, err := New(s, Options{Strategy: strategy(t, "majority")},
		WithResolver(resolver),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
		WithLogger(quiet),
	).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, resolver.Asked(), "fallback is skip")
	assert.Equal(t, Summary{RunID: "run-1", Ranges: 1, Processed: 4, Replaced: 3, Unresolved: 1, AlreadyFixed: 1}, summary)
	for _, id := range []int64{1, 3, 4} {
		assert.Equal(t, `{"_id":`+model.IntID(id).String()+`,"v":1}`, find(t, s, orders, model.IntID(id)))
	}
	assert.Empty(t, find(t, s, orders, model.StringID("a")))
}

func TestRun_AskFallbackUsesResolver(t *testing.T) {
	s := testutil.SeedStore(t, "testdata/resume.yaml")
	strat, err := reconcile.ParseStrategy("majority", reconcile.FallbackAsk)
	require.NoError(t, err)
	resolver := testutil.NewScriptedResolver(testutil.Decide(reconcile.Delete()))

	_, err = New(s, Options{Strategy: strat},
		WithResolver(resolver),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
		WithLogger(quiet),
	).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{`"a"`}, resolver.Asked())
	assert.Contains(t, fixedDocs(t, s), `"a"`)
}

func TestRun_ProjectionReadsScanSource(t *testing.T) {
	s := testutil.SeedStore(t, "testdata/scenario_a.yaml")

	var projected string
	resolver := testutil.NewScriptedResolver(func(ctx context.Context, req prompt.Request) (reconcile.Decision, error) {
		p, err := model.ParseProjection(`{"notes": 1, "_id": 0}`)
		if err != nil {
			return reconcile.Decision{}, err
		}
		d, err := req.Project(ctx, req.Classes[0].Sources[0], req.ID, p)
		if err != nil {
			return reconcile.Decision{}, err
		}
		projected = string(d.Raw())
		return reconcile.Skip(), nil
	})

	_, err := New(s, Options{DryRun: true},
		WithResolver(resolver),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
		WithLogger(quiet),
	).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"notes":"only in the snapshot"}`, projected)
}

func TestRun_NoResolverForDeferredDocument(t *testing.T) {
	s := testutil.SeedStore(t, "testdata/scenario_a.yaml")

	_, err := New(s, Options{}, WithRunIDGenerator(NewFixedGenerator("run-1")), WithLogger(quiet)).Run(context.Background())
	assert.True(t, IsPromptClosed(err), "got %v", err)
}

func TestRun_CatalogUnavailable(t *testing.T) {
	s := testutil.OpenStore(t)
	require.NoError(t, s.Close())

	_, err := New(s, Options{}, WithLogger(quiet)).Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsCatalogUnavailable(err), "got %v", err)
}

func TestRun_Cancelled(t *testing.T) {
	s := testutil.SeedStore(t, "testdata/resume.yaml")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(s, Options{Strategy: strategy(t, "majority")},
		WithRunIDGenerator(NewFixedGenerator("run-1")),
		WithLogger(quiet),
	).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
