package org

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Document is a parsed org file. It owns the raw content and the span
// arena that item handles index into. All textual edits go through the
// Document so spans stay consistent with the content.
type Document struct {
	path     string
	repo     string
	content  string
	keywords Keywords
	items    []Item
	spans    []span
}

// span records the byte offsets an edit operation needs for one heading.
type span struct {
	headStart   int // offset of the leading '*'
	headEnd     int // offset just past the heading line text (before '\n')
	drawerStart int // offset of ':PROPERTIES:' line, -1 when absent
	drawerEnd   int // offset just past the ':END:' line text, -1 when absent
	rawKeyword  string
}

// ParseFile reads and parses an org file from disk using the default
// keyword set.
func ParseFile(path string) (*Document, error) {
	return ParseFileWith(path, DefaultKeywords())
}

// ParseFileWith reads and parses an org file with an extended keyword
// set.
func ParseFileWith(path string, kw Keywords) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read org file: %w", err)
	}
	return ParseWith(path, string(data), kw)
}

// Parse parses org content. The path is retained for Save.
func Parse(path, content string) (*Document, error) {
	return ParseWith(path, content, DefaultKeywords())
}

// ParseWith parses org content with an extended keyword set. The set is
// retained so re-parses after edits see the same keywords.
func ParseWith(path, content string, kw Keywords) (*Document, error) {
	d := &Document{path: path, content: content, keywords: kw}
	d.reparse()
	return d, nil
}

// Path returns the file path the document was parsed from.
func (d *Document) Path() string { return d.path }

// Repo returns the value of the file-level #+GH_REPO: keyword, or "".
func (d *Document) Repo() string { return d.repo }

// Content returns the current document text.
func (d *Document) Content() string { return d.content }

// Items returns the syncable headings in document order. Each item's
// Handle remains valid across property and status edits, which never add
// or remove headings.
func (d *Document) Items() []Item { return d.items }

// Item returns the item for a handle.
func (d *Document) Item(h Handle) (*Item, error) {
	if int(h) < 0 || int(h) >= len(d.items) {
		return nil, fmt.Errorf("invalid item handle %d", h)
	}
	return &d.items[h], nil
}

// Save writes the current content back to the source path.
func (d *Document) Save() error {
	if err := os.WriteFile(d.path, []byte(d.content), 0o644); err != nil {
		return fmt.Errorf("write org file: %w", err)
	}
	return nil
}

// reparse rebuilds items and spans from the current content. Edits call
// this after every splice so later offsets are never stale.
func (d *Document) reparse() {
	d.repo = ""
	d.items = d.items[:0]
	d.spans = d.spans[:0]

	lines := splitLines(d.content)

	for i := 0; i < len(lines); i++ {
		ln := lines[i]
		trimmed := strings.TrimSpace(ln.text)

		if d.repo == "" {
			if v, ok := fileKeyword(trimmed, KeywordRepo); ok {
				d.repo = v
				continue
			}
		}

		_, rest, ok := headingParts(ln.text)
		if !ok {
			continue
		}

		keyword, title := splitKeyword(rest)
		status, syncable := d.keywords[keyword]
		if !syncable {
			continue
		}

		sp := span{
			headStart:   ln.start,
			headEnd:     ln.start + len(ln.text),
			drawerStart: -1,
			drawerEnd:   -1,
			rawKeyword:  keyword,
		}

		item := Item{
			Title:  strings.TrimSpace(title),
			Status: status,
			Handle: Handle(len(d.items)),
		}

		// Property drawer must directly follow the heading line.
		next := i + 1
		if next < len(lines) && strings.TrimSpace(lines[next].text) == ":PROPERTIES:" {
			sp.drawerStart = lines[next].start
			props := map[string]string{}
			j := next + 1
			for ; j < len(lines); j++ {
				t := strings.TrimSpace(lines[j].text)
				if t == ":END:" {
					sp.drawerEnd = lines[j].start + len(lines[j].text)
					break
				}
				if k, v, ok := propertyLine(t); ok {
					props[strings.ToUpper(k)] = v
				}
			}
			if sp.drawerEnd >= 0 {
				applyProperties(&item, props)
				i = j
			} else {
				// Unterminated drawer: treat as body text.
				sp.drawerStart = -1
			}
		}

		// Body: everything up to the next heading, any level.
		var body []string
		for j := i + 1; j < len(lines); j++ {
			if _, _, isHeading := headingParts(lines[j].text); isHeading {
				break
			}
			body = append(body, lines[j].text)
			i = j
		}
		item.Body = strings.TrimSpace(strings.Join(body, "\n"))

		if item.ID == "" {
			item.ID = Slugify(item.Title)
		}

		d.items = append(d.items, item)
		d.spans = append(d.spans, sp)
	}
}

func applyProperties(item *Item, props map[string]string) {
	if v, ok := props[PropCustomID]; ok && v != "" {
		item.ID = v
	}
	if v, ok := props[PropIssue]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			item.Issue = n
		}
	}
	if v, ok := props[PropURL]; ok {
		item.URL = v
	}
	if v, ok := props[PropAssignee]; ok {
		item.Assignees = splitList(v)
	}
	if v, ok := props[PropLabels]; ok {
		item.Labels = splitList(v)
	}
	if v, ok := props[PropCreated]; ok {
		item.Created = parseTimestamp(v)
	}
	if v, ok := props[PropUpdated]; ok {
		item.Updated = parseTimestamp(v)
	}
}

type line struct {
	start int
	text  string
}

func splitLines(content string) []line {
	var out []line
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			out = append(out, line{start: start, text: content[start:i]})
			start = i + 1
		}
	}
	if start < len(content) {
		out = append(out, line{start: start, text: content[start:]})
	}
	return out
}

// headingParts splits "** TODO Title" into stars and the rest. A heading
// line is one or more '*' followed by a space.
func headingParts(text string) (stars, rest string, ok bool) {
	i := 0
	for i < len(text) && text[i] == '*' {
		i++
	}
	if i == 0 || i >= len(text) || text[i] != ' ' {
		return "", "", false
	}
	return text[:i], text[i+1:], true
}

// splitKeyword splits the heading text into its first token and the
// remainder. The caller decides whether the token is a TODO keyword.
func splitKeyword(rest string) (keyword, title string) {
	rest = strings.TrimLeft(rest, " ")
	if sp := strings.IndexByte(rest, ' '); sp >= 0 {
		return rest[:sp], rest[sp+1:]
	}
	return rest, ""
}

// fileKeyword matches "#+KEY: value" case-insensitively on the key.
func fileKeyword(trimmed, key string) (string, bool) {
	if !strings.HasPrefix(trimmed, "#+") {
		return "", false
	}
	body := trimmed[2:]
	idx := strings.IndexByte(body, ':')
	if idx < 0 {
		return "", false
	}
	if !strings.EqualFold(body[:idx], key) {
		return "", false
	}
	return strings.TrimSpace(body[idx+1:]), true
}

// propertyLine matches ":KEY: value" inside a drawer.
func propertyLine(trimmed string) (key, value string, ok bool) {
	if len(trimmed) < 2 || trimmed[0] != ':' {
		return "", "", false
	}
	idx := strings.IndexByte(trimmed[1:], ':')
	if idx < 0 {
		return "", "", false
	}
	key = trimmed[1 : 1+idx]
	if key == "" || key == "PROPERTIES" || key == "END" {
		return "", "", false
	}
	return key, strings.TrimSpace(trimmed[1+idx+1:]), true
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseTimestamp(v string) *time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// Slugify converts a title to a stable lowercase identifier: alphanumeric
// runs joined by single dashes. Idempotent under re-parsing.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
