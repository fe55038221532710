package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, raw string) Document {
	t.Helper()
	d, err := ParseDocument([]byte(raw))
	require.NoError(t, err)
	return d
}

func TestParseDocument(t *testing.T) {
	d := mustDoc(t, `{ "_id": 5, "name": "a",  "n": 1 }`)
	assert.Equal(t, `{"_id":5,"name":"a","n":1}`, string(d.Raw()))
	assert.True(t, d.ID().Equal(IntID(5)))
	assert.True(t, d.Has("name"))
	assert.False(t, d.Has("missing"))
}

func TestParseDocument_Errors(t *testing.T) {
	for _, raw := range []string{`[]`, `null`, `{"name": "a"}`, `{"_id": true}`, `{`} {
		_, err := ParseDocument([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestDocument_EqualIgnoresFieldOrder(t *testing.T) {
	a := mustDoc(t, `{"_id": 1, "a": 1, "b": {"x": [1, 2]}}`)
	b := mustDoc(t, `{"b": {"x": [1, 2]}, "a": 1, "_id": 1}`)
	c := mustDoc(t, `{"_id": 1, "a": 1.0, "b": {"x": [1, 2]}}`)

	d := mustDoc(t, `{"_id": 1, "a": 2, "b": {"x": [1, 2]}}`)

	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(c), "numbers compare by value")
	assert.False(t, a.Equal(d))
}

func TestDocument_EqualNumbersByValue(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{`{"_id": 1, "q": 1}`, `{"_id": 1, "q": 1.0}`, true},
		{`{"_id": 1, "q": 1}`, `{"_id": 1, "q": 1e0}`, true},
		{`{"_id": 1, "q": -0.5}`, `{"_id": 1, "q": -5E-1}`, true},
		{`{"_id": 1, "q": 9007199254740993}`, `{"_id": 1, "q": 9007199254740992}`, false},
		{`{"_id": 1, "q": [1, {"r": 2.50}]}`, `{"_id": 1, "q": [1.0, {"r": 2.5}]}`, true},
		{`{"_id": 1, "q": 1}`, `{"_id": 1, "q": true}`, false},
		{`{"_id": 1, "q": 1}`, `{"_id": 1, "q": "1"}`, false},
	}
	for _, tt := range tests {
		got := mustDoc(t, tt.a).Equal(mustDoc(t, tt.b))
		assert.Equal(t, tt.want, got, "%s vs %s", tt.a, tt.b)
	}
}

func TestDocument_EqualKeepsRawEncoding(t *testing.T) {
	d := mustDoc(t, `{"_id": 1, "q": 1.0}`)
	assert.Equal(t, `{"_id":1,"q":1.0}`, string(d.Raw()))
}

func TestNewDocument_MatchesParsed(t *testing.T) {
	built, err := NewDocument(map[string]any{"_id": "k", "qty": 3, "tags": []any{"x"}})
	require.NoError(t, err)
	parsed := mustDoc(t, `{"_id": "k", "tags": ["x"], "qty": 3}`)
	assert.True(t, built.Equal(parsed))
}

func TestDocument_Pretty(t *testing.T) {
	d := mustDoc(t, `{"b": 2, "_id": 1, "a": "<x>"}`)
	assert.Equal(t, "{\n  \"_id\": 1,\n  \"a\": \"<x>\",\n  \"b\": 2\n}", d.Pretty())
}

func TestObservation_Equal(t *testing.T) {
	d1 := mustDoc(t, `{"_id": 1, "v": 1}`)
	d2 := mustDoc(t, `{"_id": 1, "v": 2}`)
	marker := mustDoc(t, `{"_id": 1, "dbcheck_docWasMissing": 1}`)

	assert.True(t, Observed(marker).IsMissing())
	assert.True(t, Observed(marker).Equal(Missing()))
	assert.True(t, Observed(d1).Equal(Observed(d1)))
	assert.False(t, Observed(d1).Equal(Observed(d2)))
	assert.False(t, Observed(d1).Equal(Missing()))
	assert.True(t, Observed(Document{}).IsMissing())
}

func TestTransientDeletePlaceholder(t *testing.T) {
	p := TransientDeletePlaceholder(StringID("k"))
	assert.Equal(t, `{"_id":"k","dbcheck_transient_delete":1}`, string(p.Raw()))
	assert.True(t, p.ID().Equal(StringID("k")))
}

func TestMarshalCanonical_LineSeparators(t *testing.T) {
	b, err := MarshalCanonical(map[string]any{"s": "a\u2028b", "t": `\u2028`})
	require.NoError(t, err)
	assert.Equal(t, "{\"s\":\"a\u2028b\",\"t\":\"\\\\u2028\"}", string(b))
}
