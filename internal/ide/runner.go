package ide

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultBridgeBinary is the helper the IDE ships for external tooling.
const DefaultBridgeBinary = "arduino-ide-bridge"

// Runner executes bridge subcommands and returns their combined output.
// Tests substitute a fake; production code uses ExecRunner.
type Runner interface {
	Run(args ...string) (string, error)
}

// ExecRunner runs the bridge binary via os/exec.
type ExecRunner struct {
	Binary string // bridge executable, DefaultBridgeBinary when empty
	Dir    string // working directory, typically the sketch root
	env    []string
}

// NewExecRunner returns a runner for the given bridge binary rooted at dir.
// When toolsDir is non-empty its path is prepended to PATH so a bridge
// installed next to the IDE is found without shell configuration.
func NewExecRunner(binary, dir, toolsDir string) *ExecRunner {
	r := &ExecRunner{Binary: binary, Dir: dir}
	if toolsDir != "" {
		r.env = buildEnvWithPath(toolsDir)
	}
	return r
}

// Run executes the bridge with the given arguments.
func (r *ExecRunner) Run(args ...string) (string, error) {
	binary := r.Binary
	if binary == "" {
		binary = DefaultBridgeBinary
	}
	cmd := exec.Command(binary, args...)
	if r.env != nil {
		cmd.Env = r.env
	}
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("%s %s: %w", binary, strings.Join(args, " "), err)
	}
	return string(output), nil
}

// buildEnvWithPath creates a copy of the current environment with binDir
// prepended to PATH.
func buildEnvWithPath(binDir string) []string {
	env := os.Environ()
	result := make([]string, 0, len(env))
	pathSet := false

	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			result = append(result, "PATH="+binDir+string(os.PathListSeparator)+e[5:])
			pathSet = true
		} else {
			result = append(result, e)
		}
	}

	if !pathSet {
		result = append(result, "PATH="+binDir)
	}

	return result
}
