package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/hay-kot/orgsync/pkg/iojson"
)

// Format selects the rendering mode.
type Format int

const (
	FormatHuman Format = iota
	FormatJSON
	FormatSexp
)

// Printer renders reports to a writer. Styling is enabled only when the
// writer is a terminal.
type Printer struct {
	format Format
	out    io.Writer
	color  bool

	header lipgloss.Style
	good   lipgloss.Style
	warn   lipgloss.Style
	bad    lipgloss.Style
	muted  lipgloss.Style
}

// NewPrinter builds a printer for the given format and destination.
func NewPrinter(format Format, out io.Writer) *Printer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}

	return &Printer{
		format: format,
		out:    out,
		color:  color,
		header: lipgloss.NewStyle().Bold(true),
		good:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Report renders any report in the machine formats, or the given human
// renderer otherwise.
func (p *Printer) report(r any, human func()) error {
	switch p.format {
	case FormatJSON:
		return iojson.WriteWith(p.out, os.Stderr, r)
	case FormatSexp:
		s, err := Sexp(r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.out, s)
		return err
	default:
		human()
		return nil
	}
}

// Sync renders a reconciliation report.
func (p *Printer) Sync(r SyncReport) error {
	return p.report(r, func() {
		p.printHeader(r.Repo, r.File)
		if r.DryRun {
			fmt.Fprintln(p.out, p.paint(p.muted, "dry run, nothing applied"))
		}

		fmt.Fprintf(p.out, "  created %d  linked %d  pushed %d  pulled %d  unchanged %d\n",
			r.Created, r.Linked, r.Pushed, r.Pulled, r.Unchanged)

		for _, s := range r.Steps {
			p.printStep(s)
		}
		p.printConflicts(r.Conflicts)
		p.printWarnings(r.Warnings)
	})
}

// Status renders a drift report.
func (p *Printer) Status(r StatusReport) error {
	return p.report(r, func() {
		p.printHeader(r.Repo, r.File)
		fmt.Fprintf(p.out, "  %d linked item(s)\n", r.Linked)

		if r.Clean() {
			fmt.Fprintln(p.out, p.paint(p.good, "  everything in sync"))
			return
		}

		if len(r.Unlinked) > 0 {
			fmt.Fprintln(p.out, "to create:")
			for _, title := range r.Unlinked {
				fmt.Fprintf(p.out, "  %s\n", title)
			}
		}
		p.printDrift("local changes:", r.LocalChanged)
		p.printDrift("remote changes:", r.RemoteChanged)
		p.printConflicts(r.Conflicts)

		if len(r.PendingCreates) > 0 {
			fmt.Fprintln(p.out, p.paint(p.warn, "pending creation from an earlier run:"))
			for _, title := range r.PendingCreates {
				fmt.Fprintf(p.out, "  %s\n", title)
			}
		}
		p.printWarnings(r.Warnings)
	})
}

// Init renders the result of initializing a document.
func (p *Printer) Init(r InitReport) error {
	return p.report(r, func() {
		p.printHeader(r.Repo, r.File)
		fmt.Fprintf(p.out, "  snapshot %s\n", r.Snapshot)
		fmt.Fprintf(p.out, "  %d syncable item(s)\n", r.Items)
	})
}

// Unlink renders the result of severing a link.
func (p *Printer) Unlink(r UnlinkReport) error {
	return p.report(r, func() {
		fmt.Fprintf(p.out, "unlinked #%d %s\n", r.Issue, r.Title)
		if r.Closed {
			fmt.Fprintln(p.out, "  closed the remote issue")
		}
	})
}

func (p *Printer) printHeader(repo, file string) {
	fmt.Fprintln(p.out, p.paint(p.header, fmt.Sprintf("%s (%s)", repo, file)))
}

func (p *Printer) printStep(s Step) {
	switch {
	case len(s.Push) > 0 && len(s.Pull) > 0:
		fmt.Fprintf(p.out, "  ~ #%d %s  push %s, pull %s\n",
			s.Issue, s.Title, strings.Join(s.Push, "+"), strings.Join(s.Pull, "+"))
	case len(s.Push) > 0:
		fmt.Fprintf(p.out, "  > #%d %s  push %s\n", s.Issue, s.Title, strings.Join(s.Push, "+"))
	case len(s.Pull) > 0:
		fmt.Fprintf(p.out, "  < #%d %s  pull %s\n", s.Issue, s.Title, strings.Join(s.Pull, "+"))
	case s.Issue > 0:
		fmt.Fprintf(p.out, "  = #%d %s  %s\n", s.Issue, s.Title, s.Kind)
	default:
		fmt.Fprintf(p.out, "  + %s  %s\n", s.Title, s.Kind)
	}
}

func (p *Printer) printDrift(label string, drifts []Drift) {
	if len(drifts) == 0 {
		return
	}
	fmt.Fprintln(p.out, label)
	for _, d := range drifts {
		fmt.Fprintf(p.out, "  #%d %s (%s)\n", d.Issue, d.Title, strings.Join(d.Fields, ", "))
	}
}

func (p *Printer) printConflicts(conflicts []Conflict) {
	if len(conflicts) == 0 {
		return
	}
	fmt.Fprintln(p.out, p.paint(p.bad, "conflicts:"))
	for _, c := range conflicts {
		fmt.Fprintf(p.out, "  #%d %s\n", c.Issue, c.Title)
		for _, f := range c.Fields {
			fmt.Fprintf(p.out, "    %s: local %s / remote %s\n", f.Field, f.Local, f.Remote)
		}
	}
}

func (p *Printer) printWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	for _, w := range warnings {
		fmt.Fprintln(p.out, p.paint(p.warn, "warning: "+w))
	}
}

func (p *Printer) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}
