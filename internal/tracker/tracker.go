package tracker

import "sort"

// OptionState is the IDE's view of one configuration option: its display
// label and the selected value, if any.
type OptionState struct {
	Label      string
	Value      string
	ValueLabel string
	Selected   bool
}

// Snapshot is the set of explicitly selected option values for one board at
// one point in time. Programmer is reserved; the IDE never reports it today.
type Snapshot struct {
	Options    map[string]OptionValue
	Programmer string
}

// OptionValue is a stored option selection.
type OptionValue struct {
	Label      string
	Value      string
	ValueLabel string
}

// FQBNOption is the pseudo-option name used for whole-board switches.
const FQBNOption = "FQBN"

// Change records one option transition between two snapshots. Previous
// fields are unset (HasPrevious=false) when the option did not exist before.
type Change struct {
	Option        string
	Label         string
	PreviousValue string
	NewValue      string
	PreviousLabel string
	NewLabel      string
	HasPrevious   bool
}

// Result is the outcome of one observation: whether this was the first
// sighting of the board and the ordered change set otherwise.
type Result struct {
	Initial bool
	Changes []Change
}

// Tracker holds the last observed snapshot per board identifier plus the
// most recently selected board. It performs no I/O and is meant to be owned
// by a single event loop.
type Tracker struct {
	snapshots    map[string]Snapshot
	lastSelected string
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{snapshots: make(map[string]Snapshot)}
}

// LastSelected returns the most recently observed board identifier, or ""
// when nothing has been observed yet.
func (t *Tracker) LastSelected() string {
	return t.lastSelected
}

// Observe records a new configuration snapshot for boardID and reports what
// changed since the last one. A nil options map means the IDE has not
// resolved board details yet: the observation is reported as initial and no
// state is mutated. Only options with an explicitly selected value are
// stored; the diff never reports options that disappeared.
func (t *Tracker) Observe(boardID string, options map[string]OptionState) Result {
	if options == nil {
		return Result{Initial: true}
	}

	boardSwitched := t.lastSelected != "" && t.lastSelected != boardID
	previousSelected := t.lastSelected
	t.lastSelected = boardID

	next := Snapshot{Options: make(map[string]OptionValue)}
	for name, st := range options {
		if !st.Selected {
			continue
		}
		next.Options[name] = OptionValue{Label: st.Label, Value: st.Value, ValueLabel: st.ValueLabel}
	}

	prev, seen := t.snapshots[boardID]
	t.snapshots[boardID] = next

	if !seen {
		if boardSwitched {
			return Result{Changes: []Change{{
				Option:        FQBNOption,
				Label:         "Board",
				PreviousValue: previousSelected,
				NewValue:      boardID,
				PreviousLabel: previousSelected,
				NewLabel:      boardID,
				HasPrevious:   true,
			}}}
		}
		return Result{Initial: true}
	}

	var changes []Change
	if boardSwitched {
		changes = append(changes, Change{
			Option:        FQBNOption,
			Label:         "Board",
			PreviousValue: previousSelected,
			NewValue:      boardID,
			PreviousLabel: previousSelected,
			NewLabel:      boardID,
			HasPrevious:   true,
		})
	}
	changes = append(changes, diff(prev, next)...)
	return Result{Changes: changes}
}

// Clear wipes all stored snapshots and the last-selected board.
func (t *Tracker) Clear() {
	t.snapshots = make(map[string]Snapshot)
	t.lastSelected = ""
}

// diff reports every option whose value in next is new or differs from prev,
// in option-name order. Options present only in prev are intentionally not
// reported.
func diff(prev, next Snapshot) []Change {
	names := make([]string, 0, len(next.Options))
	for name := range next.Options {
		names = append(names, name)
	}
	sort.Strings(names)

	var changes []Change
	for _, name := range names {
		nv := next.Options[name]
		pv, existed := prev.Options[name]
		if existed && pv.Value == nv.Value {
			continue
		}
		c := Change{
			Option:   name,
			Label:    nv.Label,
			NewValue: nv.Value,
			NewLabel: nv.ValueLabel,
		}
		if existed {
			c.PreviousValue = pv.Value
			c.PreviousLabel = pv.ValueLabel
			c.HasPrevious = true
		}
		changes = append(changes, c)
	}
	return changes
}
