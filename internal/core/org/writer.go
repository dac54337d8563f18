package org

import (
	"fmt"
	"strings"
)

// SetProperty sets key to value in the item's property drawer, creating
// the drawer when the heading has none. The document is re-parsed after
// the splice so every handle stays valid.
func (d *Document) SetProperty(h Handle, key, value string) error {
	sp, err := d.span(h)
	if err != nil {
		return err
	}
	key = strings.ToUpper(key)

	if sp.drawerStart >= 0 {
		drawer := d.content[sp.drawerStart:sp.drawerEnd]
		d.splice(sp.drawerStart, sp.drawerEnd, rewriteDrawer(drawer, key, value))
		return nil
	}

	drawer := fmt.Sprintf("\n:PROPERTIES:\n:%s: %s\n:END:", key, value)
	d.splice(sp.headEnd, sp.headEnd, drawer)
	return nil
}

// RemoveProperty deletes key from the item's property drawer. Removing a
// property the drawer does not hold is a no-op.
func (d *Document) RemoveProperty(h Handle, key string) error {
	sp, err := d.span(h)
	if err != nil {
		return err
	}
	if sp.drawerStart < 0 {
		return nil
	}
	key = strings.ToUpper(key)

	drawer := d.content[sp.drawerStart:sp.drawerEnd]
	var kept []string
	for _, ln := range strings.Split(drawer, "\n") {
		if k, _, ok := propertyLine(strings.TrimSpace(ln)); ok && strings.ToUpper(k) == key {
			continue
		}
		kept = append(kept, ln)
	}
	d.splice(sp.drawerStart, sp.drawerEnd, strings.Join(kept, "\n"))
	return nil
}

// SetStatus replaces the TODO keyword on the item's heading line.
func (d *Document) SetStatus(h Handle, keyword string) error {
	sp, err := d.span(h)
	if err != nil {
		return err
	}

	head := d.content[sp.headStart:sp.headEnd]
	idx := strings.Index(head, sp.rawKeyword)
	if idx < 0 {
		return fmt.Errorf("status keyword %q not found on heading", sp.rawKeyword)
	}
	newHead := head[:idx] + keyword + head[idx+len(sp.rawKeyword):]
	d.splice(sp.headStart, sp.headEnd, newHead)
	return nil
}

// SetRepo sets the #+GH_REPO: file keyword, replacing an existing one or
// inserting it after the leading run of file keywords.
func (d *Document) SetRepo(repo string) {
	keyword := "#+" + KeywordRepo + ": " + repo
	lines := splitLines(d.content)

	for _, ln := range lines {
		if _, ok := fileKeyword(strings.TrimSpace(ln.text), KeywordRepo); ok {
			d.splice(ln.start, ln.start+len(ln.text), keyword)
			return
		}
	}

	insert := 0
	for _, ln := range lines {
		if !strings.HasPrefix(strings.TrimSpace(ln.text), "#+") {
			break
		}
		insert = ln.start + len(ln.text)
	}

	if insert == 0 {
		d.splice(0, 0, keyword+"\n")
		return
	}
	d.splice(insert, insert, "\n"+keyword)
}

func (d *Document) span(h Handle) (span, error) {
	if int(h) < 0 || int(h) >= len(d.spans) {
		return span{}, fmt.Errorf("invalid item handle %d", h)
	}
	return d.spans[h], nil
}

// splice replaces content[start:end] with repl and re-parses.
func (d *Document) splice(start, end int, repl string) {
	d.content = d.content[:start] + repl + d.content[end:]
	d.reparse()
}

// rewriteDrawer replaces the property line for key, or inserts one before
// :END: when the drawer lacks it.
func rewriteDrawer(drawer, key, value string) string {
	lines := strings.Split(drawer, "\n")
	var out []string
	replaced := false
	for _, ln := range lines {
		trimmed := strings.TrimSpace(ln)
		if k, _, ok := propertyLine(trimmed); ok && strings.ToUpper(k) == key {
			out = append(out, fmt.Sprintf(":%s: %s", key, value))
			replaced = true
			continue
		}
		if trimmed == ":END:" && !replaced {
			out = append(out, fmt.Sprintf(":%s: %s", key, value))
			replaced = true
		}
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}
