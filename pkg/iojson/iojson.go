// Package iojson writes command output as indented JSON.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteWith marshals obj as indented JSON to w. A marshal failure is
// additionally reported as a JSON error object on ew, so a machine
// consumer always reads valid JSON from one of the two streams.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		// json.Marshal escapes the message for the hand-built object.
		msg, _ := json.Marshal(err.Error())
		fmt.Fprintf(ew, "{\"message\":\"error marshaling output\",\"data\":{\"json_error\":%s}}\n", msg)
		return fmt.Errorf("marshal output: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}
