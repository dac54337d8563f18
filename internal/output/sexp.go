package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Sexp renders a report as an Emacs-readable property list. Field names
// come from the json tags with underscores turned into dashes, so the
// same report types drive both machine formats.
func Sexp(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode report: %w", err)
	}

	var b strings.Builder
	writeSexp(&b, decoded)
	return b.String(), nil
}

func writeSexp(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("nil")
	case bool:
		if val {
			b.WriteString("t")
		} else {
			b.WriteString("nil")
		}
	case json.Number:
		b.WriteString(val.String())
	case string:
		fmt.Fprintf(b, "%q", val)
	case []any:
		b.WriteByte('(')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeSexp(b, item)
		}
		b.WriteByte(')')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('(')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(':')
			b.WriteString(strings.ReplaceAll(k, "_", "-"))
			b.WriteByte(' ')
			writeSexp(b, val[k])
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "%q", fmt.Sprint(val))
	}
}
