package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want ID
	}{
		{"string", "abc", StringID("abc")},
		{"json int", json.Number("42"), IntID(42)},
		{"json float", json.Number("1.5"), FloatID(1.5)},
		{"integral float collapses", json.Number("7.0"), IntID(7)},
		{"yaml int", 3, IntID(3)},
		{"int64", int64(-9), IntID(-9)},
		{"float64", 2.25, FloatID(2.25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDValue(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestParseIDValue_Unsupported(t *testing.T) {
	_, err := ParseIDValue(map[string]any{"a": 1})
	assert.Error(t, err)

	_, err = ParseIDValue(true)
	assert.Error(t, err)
}

func TestIDText_RoundTrip(t *testing.T) {
	for _, id := range []ID{IntID(0), IntID(-12), FloatID(0.125), StringID(`a"b<c>`), StringID("")} {
		got, err := ParseIDText(id.String())
		require.NoError(t, err)
		assert.True(t, id.Equal(got), "%s", id)
	}
	assert.Equal(t, `"a<b"`, StringID("a<b").String())
}

func TestCompareIDs_NumbersBeforeStrings(t *testing.T) {
	assert.Negative(t, CompareIDs(IntID(1000), StringID("0")))
	assert.Positive(t, CompareIDs(StringID("a"), FloatID(1.5)))
	assert.Negative(t, CompareIDs(IntID(1), FloatID(1.5)))
	assert.Zero(t, CompareIDs(IntID(2), FloatID(2.0)))
	assert.Negative(t, CompareIDs(StringID("a"), StringID("b")))
}

func TestIDSet(t *testing.T) {
	s := NewIDSet(IntID(3), StringID("x"))
	s.Add(IntID(3))
	s.Add(IntID(1))

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has(IntID(1)))
	assert.False(t, s.Has(StringID("3")))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `[1,3,"x"]`, string(data))
}

func TestIDSet_ZeroValueAdd(t *testing.T) {
	var s IDSet
	assert.False(t, s.Has(IntID(1)))
	s.Add(IntID(1))
	assert.True(t, s.Has(IntID(1)))
}

func TestBounds(t *testing.T) {
	b, err := ParseBoundText(`{"$minKey":1}`)
	require.NoError(t, err)
	assert.True(t, b.IsMin())

	b, err = ParseBoundValue(map[string]any{"$maxKey": 1})
	require.NoError(t, err)
	assert.True(t, b.IsMax())

	b, err = ParseBoundText(`"k"`)
	require.NoError(t, err)
	id, ok := b.ID()
	require.True(t, ok)
	assert.Equal(t, `"k"`, id.String())

	_, err = ParseBoundValue(map[string]any{"other": 1})
	assert.Error(t, err)
}

func TestRangeKey_Contains(t *testing.T) {
	k := RangeKey{
		Namespace: Namespace{DB: "shop", Collection: "orders"},
		Min:       BoundAt(IntID(10)),
		Max:       BoundAt(IntID(20)),
	}
	assert.True(t, k.Contains(IntID(10)))
	assert.True(t, k.Contains(FloatID(19.5)))
	assert.False(t, k.Contains(IntID(20)))
	assert.False(t, k.Contains(StringID("15")))

	all := RangeKey{Min: MinKey, Max: MaxKey}
	assert.True(t, all.Contains(StringID("zzz")))
	assert.Equal(t, `. [{"$minKey":1}, {"$maxKey":1})`, all.String())
}

func TestParseNamespace(t *testing.T) {
	ns, err := ParseNamespace("shop.orders.archive")
	require.NoError(t, err)
	assert.Equal(t, Namespace{DB: "shop", Collection: "orders.archive"}, ns)

	for _, bad := range []string{"", "shop", ".orders", "shop."} {
		_, err := ParseNamespace(bad)
		assert.Error(t, err, bad)
	}
}
