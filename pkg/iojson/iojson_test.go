package iojson

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	err := WriteWith(&out, &errOut, map[string]any{"created": 2, "file": "tasks.org"})
	require.NoError(t, err)
	assert.Empty(t, errOut.String())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "tasks.org", decoded["file"])
}

func TestWriteWithMarshalFailure(t *testing.T) {
	var out, errOut bytes.Buffer

	err := WriteWith(&out, &errOut, map[string]any{"bad": func() {}})
	require.Error(t, err)
	assert.Empty(t, out.String(), "nothing is written to the output stream on failure")

	// The error stream still carries parseable JSON.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &decoded))
	assert.Equal(t, "error marshaling output", decoded["message"])
}
