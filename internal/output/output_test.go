package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSync() SyncReport {
	return SyncReport{
		File:      "tasks.org",
		Repo:      "acme/rockets",
		Created:   1,
		Pushed:    1,
		Unchanged: 2,
		Conflicts: []Conflict{{
			Issue: 12,
			Title: "Fix parser",
			Fields: []FieldConflict{
				{Field: "state", Local: "closed", Remote: "open"},
			},
		}},
		Warnings: []string{"issue #4 linked from \"Gone\" but not found on GitHub"},
	}
}

func TestSexp(t *testing.T) {
	got, err := Sexp(sampleSync())
	require.NoError(t, err)

	// Keys are kebab-cased keywords, booleans render as t/nil.
	assert.Contains(t, got, ":dry-run nil")
	assert.Contains(t, got, ":repo \"acme/rockets\"")
	assert.Contains(t, got, ":issue 12")
	assert.Contains(t, got, ":fields ((:field \"state\"")
	assert.NotContains(t, got, "_")
}

func TestSexpScalars(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{map[string]int{"n": 3}, "(:n 3)"},
		{[]string{"a", "b"}, `("a" "b")`},
		{true, "t"},
		{nil, "nil"},
		{"quo\"te", `"quo\"te"`},
	}
	for _, tc := range cases {
		got, err := Sexp(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestPrinterJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(FormatJSON, &buf)
	require.NoError(t, p.Sync(sampleSync()))

	var decoded SyncReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleSync(), decoded)
}

func TestPrinterHuman(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(FormatHuman, &buf)
	require.NoError(t, p.Sync(sampleSync()))

	out := buf.String()
	assert.Contains(t, out, "acme/rockets (tasks.org)")
	assert.Contains(t, out, "created 1")
	assert.Contains(t, out, "conflicts:")
	assert.Contains(t, out, "state: local closed / remote open")
	assert.Contains(t, out, "warning:")
	assert.NotContains(t, out, "\x1b[", "no ANSI codes when the writer is not a terminal")
}

func TestPrinterHumanStatusClean(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(FormatHuman, &buf)
	require.NoError(t, p.Status(StatusReport{File: "tasks.org", Repo: "o/r", Linked: 3}))
	assert.Contains(t, buf.String(), "everything in sync")
}

func TestPrinterSexp(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(FormatSexp, &buf)
	require.NoError(t, p.Status(StatusReport{File: "tasks.org", Repo: "o/r", Linked: 3}))
	assert.Contains(t, buf.String(), ":linked 3")
	assert.Contains(t, buf.String(), `:repo "o/r"`)
}
