// Package output renders command results in human, JSON, and s-expression
// form. Commands build a typed report; the printer owns formatting.
package output

// FieldConflict is one unresolved field on a conflicted item.
type FieldConflict struct {
	Field  string `json:"field"`
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

// Conflict is one item blocked by unresolved fields.
type Conflict struct {
	Issue  int64           `json:"issue"`
	Title  string          `json:"title"`
	Fields []FieldConflict `json:"fields"`
}

// Step is one executed (or planned, under dry-run) action.
type Step struct {
	Kind  string   `json:"kind"`
	Issue int64    `json:"issue,omitempty"`
	Title string   `json:"title"`
	Push  []string `json:"push,omitempty"`
	Pull  []string `json:"pull,omitempty"`
}

// SyncReport summarizes one reconciliation pass, shared by the sync,
// push, and pull commands.
type SyncReport struct {
	File      string     `json:"file"`
	Repo      string     `json:"repo"`
	DryRun    bool       `json:"dry_run"`
	Created   int        `json:"created"`
	Linked    int        `json:"linked"`
	Pushed    int        `json:"pushed"`
	Pulled    int        `json:"pulled"`
	Unchanged int        `json:"unchanged"`
	Steps     []Step     `json:"steps,omitempty"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// Drift is one linked item with uncommitted changes on a side.
type Drift struct {
	Issue  int64    `json:"issue"`
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

// StatusReport describes drift without mutating anything.
type StatusReport struct {
	File           string     `json:"file"`
	Repo           string     `json:"repo"`
	Linked         int        `json:"linked"`
	Unlinked       []string   `json:"unlinked,omitempty"`
	LocalChanged   []Drift    `json:"local_changed,omitempty"`
	RemoteChanged  []Drift    `json:"remote_changed,omitempty"`
	Conflicts      []Conflict `json:"conflicts,omitempty"`
	PendingCreates []string   `json:"pending_creates,omitempty"`
	Warnings       []string   `json:"warnings,omitempty"`
}

// Clean reports whether the replicas are fully converged.
func (r StatusReport) Clean() bool {
	return len(r.Unlinked) == 0 && len(r.LocalChanged) == 0 &&
		len(r.RemoteChanged) == 0 && len(r.Conflicts) == 0 &&
		len(r.PendingCreates) == 0 && len(r.Warnings) == 0
}

// InitReport describes a freshly initialized document.
type InitReport struct {
	File     string `json:"file"`
	Repo     string `json:"repo"`
	Snapshot string `json:"snapshot"`
	Items    int    `json:"items"`
}

// UnlinkReport describes one severed link.
type UnlinkReport struct {
	File   string `json:"file"`
	Issue  int64  `json:"issue"`
	Title  string `json:"title"`
	Closed bool   `json:"closed"`
}
