package reload

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"laned/pkg/types"
)

// Command respawns the backend by running a configured command, e.g. a
// restart script or `docker restart`. Occurrences of {lane}, {model} and
// {endpoint} in the arguments are substituted from the lane config.
type Command struct {
	Name string
	Args []string
}

// Trigger implements Trigger.
func (c Command) Trigger(ctx context.Context, lane types.Lane) (bool, error) {
	if c.Name == "" {
		return false, fmt.Errorf("reload command not configured")
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		a = strings.ReplaceAll(a, "{lane}", lane.ID)
		a = strings.ReplaceAll(a, "{model}", lane.Model)
		a = strings.ReplaceAll(a, "{endpoint}", lane.Endpoint)
		args[i] = a
	}
	cmd := exec.CommandContext(ctx, c.Name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return false, fmt.Errorf("reload command: %w: %s", err, msg)
		}
		return false, fmt.Errorf("reload command: %w", err)
	}
	return true, nil
}
