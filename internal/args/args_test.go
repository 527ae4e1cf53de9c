package args

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyInput(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "\n\t "} {
		parsed, detail := Parse(raw)
		require.Nil(t, detail, "input %q", raw)
		require.NotNil(t, parsed, "input %q", raw)
		assert.Equal(t, 0, parsed.Len())
	}
}

func TestParsePreservesKeyOrder(t *testing.T) {
	t.Parallel()

	parsed, detail := Parse(`{"zeta": 1, "alpha": "x", "mid": {"y": true}}`)
	require.Nil(t, detail)
	require.NotNil(t, parsed)

	var keys []string
	for pair := parsed.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)

	value, ok := parsed.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "x", value)
}

func TestParseRejectsNonObjects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"scalar string", `"hello"`},
		{"scalar number", `42`},
		{"array", `[1, 2, 3]`},
		{"truncated object", `{"location": "NYC`},
		{"invalid json", `{ invalid json`},
		{"prose", `call the weather tool please`},
		{"trailing garbage", `{"a": 1} trailing`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			parsed, detail := Parse(tt.raw)
			assert.Nil(t, parsed)
			require.NotNil(t, detail)
			assert.NotEmpty(t, detail.Message)
			assert.Equal(t, tt.raw, detail.RawInput)
		})
	}
}

func TestParseIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		`{"a": 1, "b": [1, 2]}`,
		`{ not json`,
		`[]`,
		"\x00\x01 binary-ish",
	}

	for _, raw := range inputs {
		first, firstErr := Parse(raw)
		second, secondErr := Parse(raw)

		if firstErr != nil {
			require.NotNil(t, secondErr, "input %q", raw)
			assert.Equal(t, firstErr.Message, secondErr.Message)
			assert.Equal(t, firstErr.RawInput, secondErr.RawInput)
			continue
		}
		require.Nil(t, secondErr, "input %q", raw)
		firstJSON, err := first.MarshalJSON()
		require.NoError(t, err)
		secondJSON, err := second.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(secondJSON))
	}
}

func TestParseLenientRepairsAlmostJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		key  string
		want any
	}{
		{"single quotes", `{'location': 'NYC'}`, "location", "NYC"},
		{"trailing comma", `{"limit": 5,}`, "limit", float64(5)},
		{"unquoted key", `{limit: 5}`, "limit", float64(5)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, detail := ParseLenient(tt.raw)
			require.Nil(t, detail)
			require.NotNil(t, parsed)
			value, ok := parsed.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, value)

			// The strict parser must still reject the same payload.
			strictParsed, strictDetail := Parse(tt.raw)
			assert.Nil(t, strictParsed)
			require.NotNil(t, strictDetail)
			assert.Equal(t, tt.raw, strictDetail.RawInput)
		})
	}
}

func TestParseLenientStillFailsOnHopelessInput(t *testing.T) {
	t.Parallel()

	parsed, detail := ParseLenient("not even close to json {{{")
	assert.Nil(t, parsed)
	require.NotNil(t, detail)
	assert.Equal(t, "not even close to json {{{", detail.RawInput)
}
