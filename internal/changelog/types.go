package changelog

import (
	"strings"
	"time"

	"github.com/devista-consulting/arduino-sketch-vault/internal/tracker"
)

// ChangeType classifies what kind of event produced a log entry.
type ChangeType string

const (
	ChangeInitial ChangeType = "initial" // first sighting, nothing to diff
	ChangeFQBN    ChangeType = "fqbn"    // fqbn-only event stream, log-only
	ChangeBoard   ChangeType = "board"   // board details changed
	ChangePort    ChangeType = "port"    // communication port changed
)

// Board names the selected board.
type Board struct {
	Name string `json:"name"`
	FQBN string `json:"fqbn"`
}

// Port identifies the selected communication port.
type Port struct {
	Address  string `json:"address"`
	Protocol string `json:"protocol"`
}

// Change mirrors a tracker change for persistence. Previous fields are
// omitted entirely when the option had no prior value.
type Change struct {
	Option        string  `json:"option"`
	Label         string  `json:"label"`
	PreviousValue *string `json:"previous_value,omitempty"`
	NewValue      string  `json:"new_value"`
	PreviousLabel *string `json:"previous_label,omitempty"`
	NewLabel      string  `json:"new_label"`
}

// Entry is one immutable change record. Programmer is reserved; the IDE
// never reports one today.
type Entry struct {
	Timestamp  time.Time  `json:"timestamp"`
	SketchPath string     `json:"sketch_path"`
	FQBN       string     `json:"fqbn"`
	Board      Board      `json:"board"`
	Port       *Port      `json:"port,omitempty"`
	Programmer string     `json:"programmer,omitempty"`
	Changes    []Change   `json:"changes"`
	ChangeType ChangeType `json:"change_type"`
}

// FromTracker converts tracker changes into their persisted form.
func FromTracker(changes []tracker.Change) []Change {
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		e := Change{
			Option:   c.Option,
			Label:    c.Label,
			NewValue: c.NewValue,
			NewLabel: c.NewLabel,
		}
		if c.HasPrevious {
			pv, pl := c.PreviousValue, c.PreviousLabel
			e.PreviousValue = &pv
			e.PreviousLabel = &pl
		}
		out = append(out, e)
	}
	return out
}

// Summary renders the entry's changes as "<label>: <prev-or-None> → <new>"
// joined by commas, the text shown in change notifications.
func (e Entry) Summary() string {
	parts := make([]string, 0, len(e.Changes))
	for _, c := range e.Changes {
		prev := "None"
		if c.PreviousLabel != nil && *c.PreviousLabel != "" {
			prev = *c.PreviousLabel
		} else if c.PreviousValue != nil {
			prev = *c.PreviousValue
		}
		next := c.NewLabel
		if next == "" {
			next = c.NewValue
		}
		parts = append(parts, c.Label+": "+prev+" → "+next)
	}
	return strings.Join(parts, ", ")
}
