package ide

import "encoding/json"

// Port identifies the communication port the IDE has selected.
type Port struct {
	Address  string `json:"address"`
	Protocol string `json:"protocol"`
}

// OptionState is the IDE's report of one configuration option.
type OptionState struct {
	Label      string `json:"label"`
	Value      string `json:"value"`
	ValueLabel string `json:"value_label"`
	Selected   bool   `json:"selected"`
}

// Selection is the IDE's current board/port state as reported by
// `current --json`. Options is nil until the IDE has resolved board
// details for the selected board.
type Selection struct {
	Board struct {
		Name string `json:"name"`
		FQBN string `json:"fqbn"`
	} `json:"board"`
	Options map[string]OptionState `json:"options"`
	Port    *Port                  `json:"port"`
}

// CurrentSelection asks the bridge for the IDE's live selection. A missing
// or errored bridge yields (nil, err); callers treat that as "no selection",
// not a fatal condition.
func CurrentSelection(r Runner) (*Selection, error) {
	output, err := r.Run("current", "--json")
	if err != nil {
		return nil, err
	}
	var sel Selection
	if err := json.Unmarshal([]byte(output), &sel); err != nil {
		return nil, err
	}
	return &sel, nil
}

// BoardDetails returns the build properties the IDE knows for a board,
// including the runtime platform install path used for platform version
// resolution.
func BoardDetails(r Runner, fqbn string) (map[string]string, error) {
	output, err := r.Run("details", "--json", "-b", fqbn)
	if err != nil {
		return nil, err
	}
	var details struct {
		Properties map[string]string `json:"properties"`
	}
	if err := json.Unmarshal([]byte(output), &details); err != nil {
		return nil, err
	}
	return details.Properties, nil
}
