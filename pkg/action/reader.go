// Package action turns health transitions into configuration applies:
// it reads the command file matching the transition and hands the
// batch to an applier.
package action

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoCommands marks an action file with nothing left after cleanup.
var ErrNoCommands = errors.New("action file contains no commands")

// ReadCommands loads an action file. Lines are whitespace-trimmed and
// blank lines are dropped. A leading privilege escalation line is
// removed because the applier establishes privilege itself.
func ReadCommands(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read action file: %w", err)
	}

	var cmds []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cmds = append(cmds, line)
	}
	if len(cmds) > 0 && cmds[0] == "enable" {
		cmds = cmds[1:]
	}
	if len(cmds) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCommands, path)
	}
	return cmds, nil
}
