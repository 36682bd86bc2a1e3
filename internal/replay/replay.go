// Package replay drives the IDE's command registry into a target board
// configuration. Board packages register their commands asynchronously as
// the IDE loads them, so the board-select command is polled for; per-option
// commands for the target board either exist by then or never will, so their
// absence is reported immediately instead of waited out.
package replay

import (
	"fmt"
	"time"

	"github.com/devista-consulting/arduino-sketch-vault/internal/fqbn"
	"github.com/devista-consulting/arduino-sketch-vault/internal/ide"
)

const (
	// DefaultPollTimeout bounds the wait for the board-select command.
	DefaultPollTimeout = 10 * time.Second
	// DefaultPollInterval is the fixed delay between registry polls.
	DefaultPollInterval = 500 * time.Millisecond
)

// OptionOutcome records one option the synchronizer attempted.
type OptionOutcome struct {
	Option string
	Value  string
	Reason string // set only for failures
}

// Result enumerates everything the synchronizer did for one Apply call.
type Result struct {
	Success        bool
	BoardSelected  bool
	OptionsApplied []OptionOutcome
	OptionsFailed  []OptionOutcome
	Errors         []string
}

// Synchronizer replays a target configuration through the command bus.
// PollTimeout and PollInterval override the defaults when non-zero.
type Synchronizer struct {
	Bus          ide.Bus
	PollTimeout  time.Duration
	PollInterval time.Duration

	sleep func(time.Duration)
}

// New returns a synchronizer with the default polling constants.
func New(bus ide.Bus) *Synchronizer {
	return &Synchronizer{Bus: bus, sleep: time.Sleep}
}

// Apply selects the target board and applies its options, one command per
// option, and reports the full outcome. Board selection is a strict
// precondition: if it fails or never appears, no option is attempted.
// Option failures are independent; one option failing does not stop the
// rest. Apply never panics on bus errors, it surfaces them in Errors.
func (s *Synchronizer) Apply(target string) Result {
	var res Result

	f, ok := fqbn.Parse(target)
	if !ok {
		res.Errors = append(res.Errors, fmt.Sprintf("invalid FQBN format: %q", target))
		return res
	}

	base := f.Base()
	selectCmd := ide.BoardSelectCommand(base)

	found, err := s.waitForCommand(selectCmd)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("command registry unavailable: %v", err))
		return res
	}
	if !found {
		res.Errors = append(res.Errors, fmt.Sprintf("board %q not found in command registry within %s", base, s.pollTimeout()))
		return res
	}

	if err := s.Bus.Execute(selectCmd); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("selecting board %q: %v", base, err))
		return res
	}
	res.BoardSelected = true

	for _, opt := range f.Options {
		cmd := ide.OptionCommand(base, opt.Name, opt.Value)
		ids, err := s.Bus.Commands()
		if err != nil {
			res.OptionsFailed = append(res.OptionsFailed, OptionOutcome{
				Option: opt.Name, Value: opt.Value,
				Reason: fmt.Sprintf("command registry unavailable: %v", err),
			})
			continue
		}
		if _, ok := ids[cmd]; !ok {
			res.OptionsFailed = append(res.OptionsFailed, OptionOutcome{
				Option: opt.Name, Value: opt.Value,
				Reason: fmt.Sprintf("command %q not registered", cmd),
			})
			continue
		}
		if err := s.Bus.Execute(cmd); err != nil {
			res.OptionsFailed = append(res.OptionsFailed, OptionOutcome{
				Option: opt.Name, Value: opt.Value,
				Reason: err.Error(),
			})
			continue
		}
		res.OptionsApplied = append(res.OptionsApplied, OptionOutcome{Option: opt.Name, Value: opt.Value})
	}

	res.Success = res.BoardSelected && len(res.OptionsFailed) == 0
	return res
}

// waitForCommand polls the registry until id appears or the timeout lapses.
func (s *Synchronizer) waitForCommand(id string) (bool, error) {
	interval := s.pollInterval()
	attempts := int(s.pollTimeout()/interval) + 1

	for i := 0; i < attempts; i++ {
		if i > 0 {
			s.sleepFn()(interval)
		}
		ids, err := s.Bus.Commands()
		if err != nil {
			return false, err
		}
		if _, ok := ids[id]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *Synchronizer) pollTimeout() time.Duration {
	if s.PollTimeout > 0 {
		return s.PollTimeout
	}
	return DefaultPollTimeout
}

func (s *Synchronizer) pollInterval() time.Duration {
	if s.PollInterval > 0 {
		return s.PollInterval
	}
	return DefaultPollInterval
}

func (s *Synchronizer) sleepFn() func(time.Duration) {
	if s.sleep != nil {
		return s.sleep
	}
	return time.Sleep
}
