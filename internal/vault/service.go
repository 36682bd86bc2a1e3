// Package vault ties the watch loop together: it polls the IDE's selection,
// feeds the tracker, records history, and keeps the active sketch.yaml
// profile synchronized with whatever the user does in the IDE.
package vault

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/devista-consulting/arduino-sketch-vault/internal/changelog"
	"github.com/devista-consulting/arduino-sketch-vault/internal/fqbn"
	"github.com/devista-consulting/arduino-sketch-vault/internal/ide"
	"github.com/devista-consulting/arduino-sketch-vault/internal/replay"
	"github.com/devista-consulting/arduino-sketch-vault/internal/sketch"
	"github.com/devista-consulting/arduino-sketch-vault/internal/tracker"
)

// ErrApplyInFlight is returned when a profile switch is requested while a
// previous one has not finished. The synchronizer itself does not serialize
// calls, so the service refuses to start a second one.
var ErrApplyInFlight = errors.New("a profile apply is already in progress")

// Notifier shows user-facing messages. The TUI implements it with
// notification messages; CLI mode prints.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// Prompter asks the user a yes/no question and blocks for the answer.
type Prompter interface {
	Confirm(question string) bool
}

// Service owns the tracker state and coordinates the stores. One Service
// per sketch; not safe for concurrent ObserveSelection calls, which matches
// the single event loop that drives it.
type Service struct {
	Runner   ide.Runner
	Tracker  *tracker.Tracker
	Log      *changelog.Log
	Store    *sketch.Store
	Sync     *replay.Synchronizer
	Notifier Notifier

	// DescribePort resolves a port address to a richer label (USB VID/PID,
	// serial number) when the host can enumerate it. Optional.
	DescribePort func(address string) (string, bool)

	SketchPath string

	applyMu  sync.Mutex
	lastPort *ide.Port
	lastFQBN string
	now      func() time.Time
}

// New wires a service from its collaborators.
func New(runner ide.Runner, tr *tracker.Tracker, log *changelog.Log, store *sketch.Store, sync *replay.Synchronizer, sketchPath string, notifier Notifier) *Service {
	return &Service{
		Runner:     runner,
		Tracker:    tr,
		Log:        log,
		Store:      store,
		Sync:       sync,
		Notifier:   notifier,
		SketchPath: sketchPath,
		now:        time.Now,
	}
}

// Poll asks the bridge for the IDE's current selection. An unreachable
// bridge reads as no selection.
func (s *Service) Poll() *ide.Selection {
	sel, err := ide.CurrentSelection(s.Runner)
	if err != nil {
		return nil
	}
	return sel
}

// ObserveSelection processes one polled selection: port changes and board
// changes are logged, board-detail diffs additionally auto-sync the active
// profile. FQBN events without resolved details are log-only; the diff is
// derived solely from the richer details data so one user action seen
// through two streams is not reported twice.
func (s *Service) ObserveSelection(sel *ide.Selection) {
	if sel == nil || sel.Board.FQBN == "" {
		return
	}

	s.observePort(sel)

	if sel.Options == nil {
		if sel.Board.FQBN != s.lastFQBN {
			s.lastFQBN = sel.Board.FQBN
			s.Tracker.Observe(sel.Board.FQBN, nil)
			s.append(sel, nil, changelog.ChangeFQBN)
		}
		return
	}

	options := make(map[string]tracker.OptionState, len(sel.Options))
	for name, st := range sel.Options {
		options[name] = tracker.OptionState{
			Label:      st.Label,
			Value:      st.Value,
			ValueLabel: st.ValueLabel,
			Selected:   st.Selected,
		}
	}

	res := s.Tracker.Observe(sel.Board.FQBN, options)
	if res.Initial {
		if sel.Board.FQBN != s.lastFQBN {
			s.lastFQBN = sel.Board.FQBN
			s.append(sel, nil, changelog.ChangeInitial)
		}
		return
	}
	s.lastFQBN = sel.Board.FQBN

	if len(res.Changes) == 0 {
		return
	}
	s.append(sel, changelog.FromTracker(res.Changes), changelog.ChangeBoard)
	s.autoSync(sel)
}

// observePort logs a port entry whenever the selected port differs from the
// last observed one.
func (s *Service) observePort(sel *ide.Selection) {
	defer func() { s.lastPort = sel.Port }()

	if sel.Port == nil {
		return
	}
	if s.lastPort == nil {
		if s.lastFQBN == "" {
			return // first ever poll, nothing to compare against
		}
	} else if s.lastPort.Address == sel.Port.Address && s.lastPort.Protocol == sel.Port.Protocol {
		return
	}

	prev := ""
	if s.lastPort != nil {
		prev = s.lastPort.Address
	}
	label := sel.Port.Address
	if s.DescribePort != nil {
		if d, ok := s.DescribePort(sel.Port.Address); ok {
			label = d
		}
	}
	change := changelog.Change{
		Option:   "Port",
		Label:    "Port",
		NewValue: sel.Port.Address,
		NewLabel: label,
	}
	if prev != "" {
		change.PreviousValue = &prev
		change.PreviousLabel = &prev
	}
	s.append(sel, []changelog.Change{change}, changelog.ChangePort)
}

// autoSync writes the IDE's complete FQBN back into the active profile.
// Silent by design: success notifications for background sync would be
// noise, and any failure here is strictly best-effort.
func (s *Service) autoSync(sel *ide.Selection) {
	complete := s.completeFQBN(sel)

	platform := ""
	if props, err := ide.BoardDetails(s.Runner, sel.Board.FQBN); err == nil {
		platform = sketch.PlatformString(sel.Board.FQBN, props)
	}
	s.Store.UpdateActiveFQBN(complete, platform)
}

// completeFQBN rebuilds the full board identifier from the base plus every
// explicitly selected option, in option-name order.
func (s *Service) completeFQBN(sel *ide.Selection) string {
	base := fqbn.ExtractBase(sel.Board.FQBN)

	names := make([]string, 0, len(sel.Options))
	for name := range sel.Options {
		names = append(names, name)
	}
	sort.Strings(names)

	selections := make([]fqbn.Selection, 0, len(names))
	for _, name := range names {
		st := sel.Options[name]
		selections = append(selections, fqbn.Selection{Name: name, Value: st.Value, Selected: st.Selected})
	}
	return fqbn.BuildComplete(base, selections)
}

func (s *Service) append(sel *ide.Selection, changes []changelog.Change, ct changelog.ChangeType) {
	entry := changelog.Entry{
		Timestamp:  s.now(),
		SketchPath: s.SketchPath,
		FQBN:       sel.Board.FQBN,
		Board: changelog.Board{
			Name: sel.Board.Name,
			FQBN: fqbn.ExtractBase(sel.Board.FQBN),
		},
		Changes:    changes,
		ChangeType: ct,
	}
	if sel.Port != nil {
		entry.Port = &changelog.Port{Address: sel.Port.Address, Protocol: sel.Port.Protocol}
	}
	if err := s.Log.Append(entry); err != nil && s.Notifier != nil {
		s.Notifier.Warn("could not write change log: " + err.Error())
	}
}

// ApplyNamed switches the default profile and replays it into the IDE.
// Only one apply may be in flight at a time.
func (s *Service) ApplyNamed(name string) (replay.Result, error) {
	if !s.applyMu.TryLock() {
		return replay.Result{}, ErrApplyInFlight
	}
	defer s.applyMu.Unlock()

	return s.Store.ApplyProfile(name, s.Sync)
}

// ApplyDefault applies the document's active profile. With promptFirst the
// user is asked before anything happens; declining returns false with no
// side effects. Silent mode suppresses the success notification but the
// sync still runs and failures still surface.
func (s *Service) ApplyDefault(silent, promptFirst bool, prompter Prompter) (bool, error) {
	profile, ok, err := s.Store.ActiveProfile()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, errors.New("no active profile in " + sketch.FileName)
	}

	if promptFirst && prompter != nil {
		if !prompter.Confirm("Apply profile \"" + profile.Name + "\" to the IDE?") {
			return false, nil
		}
	}

	res, err := s.ApplyNamed(profile.Name)
	if err != nil {
		return false, err
	}
	s.report(profile.Name, res, silent)
	return res.Success, nil
}

// report turns an apply result into exactly one user-facing message:
// success, partial-success warning, or error.
func (s *Service) report(name string, res replay.Result, silent bool) {
	if s.Notifier == nil {
		return
	}
	switch {
	case res.Success:
		if !silent {
			s.Notifier.Info("profile \"" + name + "\" applied")
		}
	case res.BoardSelected:
		msg := "profile \"" + name + "\" partially applied:"
		for _, o := range res.OptionsApplied {
			msg += " " + o.Option + "=" + o.Value + " ok;"
		}
		for _, o := range res.OptionsFailed {
			msg += " " + o.Option + "=" + o.Value + " failed (" + o.Reason + ");"
		}
		s.Notifier.Warn(msg)
	default:
		msg := "profile \"" + name + "\" could not be applied"
		for _, e := range res.Errors {
			msg += ": " + e
		}
		s.Notifier.Error(msg)
	}
}

// CreateProfileFromCurrent snapshots the IDE's current selection as a new
// named profile.
func (s *Service) CreateProfileFromCurrent(name string) error {
	sel := s.Poll()
	if sel == nil || sel.Board.FQBN == "" {
		return errors.New("the IDE has no board selected")
	}

	platform := ""
	if props, err := ide.BoardDetails(s.Runner, sel.Board.FQBN); err == nil {
		platform = sketch.PlatformString(sel.Board.FQBN, props)
	}
	if platform == "" {
		platform = fqbn.ExtractPlatformID(sel.Board.FQBN)
	}
	return s.Store.CreateProfile(name, s.completeFQBN(sel), platform)
}

// Profiles lists the usable profiles plus the name of the active one, for
// display surfaces.
func (s *Service) Profiles() ([]sketch.Profile, string, error) {
	profiles, err := s.Store.ListProfiles()
	if err != nil {
		return nil, "", err
	}
	active := ""
	if p, ok, err := s.Store.ActiveProfile(); err == nil && ok {
		active = p.Name
	}
	return profiles, active, nil
}

// History returns the recorded change entries in append order.
func (s *Service) History() []changelog.Entry {
	return s.Log.Entries()
}

// ClearHistory wipes the change log and the tracker's snapshots together so
// the next observation starts from a clean slate.
func (s *Service) ClearHistory() error {
	s.Tracker.Clear()
	s.lastFQBN = ""
	s.lastPort = nil
	return s.Log.Clear()
}
