package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONResponsePassesValidJSON(t *testing.T) {
	in := `{"a":1}`
	assert.Equal(t, in, CleanJSONResponse(in))
}

func TestCleanJSONResponseStripsFences(t *testing.T) {
	in := "```json\n{\"a\":1}\n```"
	assert.Equal(t, `{"a":1}`, CleanJSONResponse(in))
}

func TestCleanJSONResponseExtractsObjectFromProse(t *testing.T) {
	in := `Sure! Here is the analysis you asked for: {"a": {"b": 2}} hope that helps.`
	out := CleanJSONResponse(in)
	assert.Equal(t, `{"a": {"b": 2}}`, out)
}

func TestCleanJSONResponseBracesInsideStrings(t *testing.T) {
	in := `{"quote":"he said {hello}","n":1}`
	out := CleanJSONResponse(in)
	require.True(t, json.Valid([]byte(out)))
	assert.Equal(t, in, out)
}

func TestCleanJSONResponseFixesTrailingCommas(t *testing.T) {
	in := `{"a":1,"b":[1,2,],}`
	out := CleanJSONResponse(in)
	assert.True(t, json.Valid([]byte(out)), "got %q", out)
}

func TestCleanJSONResponseNoObject(t *testing.T) {
	out := CleanJSONResponse("no json here")
	assert.False(t, json.Valid([]byte(out)))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", Snippet("short", 10))
	assert.Equal(t, "abc", Snippet("abcdef", 3))
	// A rune split by the cut is dropped, not mangled.
	s := Snippet("héllo", 2)
	assert.Equal(t, "h", s)
}
