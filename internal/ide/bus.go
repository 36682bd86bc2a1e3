package ide

import (
	"bufio"
	"strings"
)

// boardSelectPrefix is the fixed prefix the IDE uses for the commands that
// select a base board. The "--" and "-" separators in the two schemes below
// are part of the contract with the IDE and must not change.
const boardSelectPrefix = "arduino-board-select"

// BoardSelectCommand returns the registry identifier of the command that
// selects the given base board.
func BoardSelectCommand(base string) string {
	return boardSelectPrefix + "--" + base
}

// OptionCommand returns the registry identifier of the command that applies
// one configuration option value for the given base board.
func OptionCommand(base, option, value string) string {
	return base + "-" + option + "--" + value
}

// Bus is the IDE's dynamically populated command registry. Commands appear
// as the IDE loads board packages and never disappear once registered; the
// bus can only enumerate them and execute one by identifier.
type Bus interface {
	Commands() (map[string]struct{}, error)
	Execute(id string) error
}

// BridgeBus implements Bus over the bridge CLI.
type BridgeBus struct {
	Runner Runner
}

// Commands lists the identifiers currently registered with the IDE.
func (b *BridgeBus) Commands() (map[string]struct{}, error) {
	output, err := b.Runner.Run("commands")
	if err != nil {
		return nil, err
	}
	return parseCommands(output), nil
}

// Execute invokes a registered command by identifier.
func (b *BridgeBus) Execute(id string) error {
	_, err := b.Runner.Run("exec", id)
	return err
}

// parseCommands reads the newline-separated identifier list printed by
// `commands`. Blank lines are skipped; only the first field of a line is
// the identifier, later fields are descriptive.
func parseCommands(output string) map[string]struct{} {
	ids := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		ids[fields[0]] = struct{}{}
	}
	return ids
}
