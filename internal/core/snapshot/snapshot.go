// Package snapshot persists the last-reconciled common state between an
// org file and its GitHub issues. The snapshot is the base input of the
// three-way diff: one entry per linked issue holding the field values both
// sides agreed on after the previous run.
package snapshot

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Version is the schema version written to new snapshots.
const Version = 1

// Issue states recorded in entries.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// ErrCorrupt wraps snapshot files that exist but cannot be decoded.
// Callers must surface it instead of recreating the snapshot: discarding
// the base state would erase all conflict-detection history.
var ErrCorrupt = errors.New("snapshot file is corrupt")

// Entry is the last-known common state of one linked item.
type Entry struct {
	LocalID         string     `json:"local_id"`
	Title           string     `json:"title"`
	BodyDigest      string     `json:"body_digest"`
	State           string     `json:"state"`
	Assignees       []string   `json:"assignees"`
	Labels          []string   `json:"labels"`
	RemoteUpdatedAt time.Time  `json:"remote_updated_at"`
	LocalUpdatedAt  *time.Time `json:"local_updated_at,omitempty"`
}

// PendingCreate is a local heading known to need remote creation.
type PendingCreate struct {
	LocalID string `json:"local_id"`
	Title   string `json:"title"`
}

// Snapshot is the persisted base state for one org file.
type Snapshot struct {
	Version        int              `json:"version"`
	Repo           string           `json:"repo"`
	LastSync       *time.Time       `json:"last_sync"`
	Items          map[int64]*Entry `json:"items"`
	PendingCreates []PendingCreate  `json:"pending_creates"`
}

// New returns an empty snapshot for the given repository.
func New(repo string) *Snapshot {
	return &Snapshot{
		Version: Version,
		Repo:    repo,
		Items:   map[int64]*Entry{},
	}
}

// PathFor returns the snapshot path stored next to the org file.
func PathFor(orgPath string) string {
	return orgPath + ".orgsync.json"
}

// Load reads the snapshot for an org file. A missing file yields an empty
// snapshot with no error; a present but undecodable file yields ErrCorrupt.
func Load(orgPath string) (*Snapshot, error) {
	data, err := os.ReadFile(PathFor(orgPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(""), nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, PathFor(orgPath), err)
	}
	if s.Items == nil {
		s.Items = map[int64]*Entry{}
	}
	return &s, nil
}

// Save writes the snapshot as a full-file overwrite.
func (s *Snapshot) Save(orgPath string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(PathFor(orgPath), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Record inserts or overwrites one entry and refreshes the last-sync
// timestamp. The body digest must already be computed with Digest.
func (s *Snapshot) Record(number int64, localID, title, bodyDigest, state string, assignees, labels []string, remoteUpdatedAt time.Time) {
	now := time.Now().UTC()
	s.Items[number] = &Entry{
		LocalID:         localID,
		Title:           title,
		BodyDigest:      bodyDigest,
		State:           state,
		Assignees:       append([]string(nil), assignees...),
		Labels:          append([]string(nil), labels...),
		RemoteUpdatedAt: remoteUpdatedAt,
		LocalUpdatedAt:  &now,
	}
	s.LastSync = &now
	s.RemovePendingCreate(localID)
}

// Remove deletes the entry for an issue, if present.
func (s *Snapshot) Remove(number int64) {
	delete(s.Items, number)
}

// AddPendingCreate notes a heading that still needs a remote issue.
func (s *Snapshot) AddPendingCreate(localID, title string) {
	for _, p := range s.PendingCreates {
		if p.LocalID == localID {
			return
		}
	}
	s.PendingCreates = append(s.PendingCreates, PendingCreate{LocalID: localID, Title: title})
}

// RemovePendingCreate drops the pending-create note for a heading.
func (s *Snapshot) RemovePendingCreate(localID string) {
	kept := s.PendingCreates[:0]
	for _, p := range s.PendingCreates {
		if p.LocalID != localID {
			kept = append(kept, p)
		}
	}
	s.PendingCreates = kept
}

// StateOf collapses an open flag to the recorded state string.
func StateOf(open bool) string {
	if open {
		return StateOpen
	}
	return StateClosed
}

// Digest fingerprints body text for change detection. The exact bytes are
// hashed; no whitespace normalization happens here.
func Digest(body string) string {
	sum := sha256.Sum256([]byte(body))
	return fmt.Sprintf("sha256:%x", sum)
}
