package warnings

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ActionKind identifies the type of an escalation action
type ActionKind string

// ActionMute recommends a timed mute
const ActionMute ActionKind = "mute"

// Action is a recommended punishment. Execution is up to the caller; the
// engine only reports what the policy says.
type Action struct {
	Kind     ActionKind
	Duration time.Duration
}

// String returns a human-readable description of the action
func (a Action) String() string {
	return fmt.Sprintf("%s for %s", a.Kind, a.Duration)
}

// Policy maps a count of active warnings to a recommended action. The lookup
// is by exact count, not a threshold range, so a user is not re-punished on
// every warning past a matched count.
type Policy struct {
	table map[int]Action
}

// NewPolicy creates a Policy from an explicit table
func NewPolicy(table map[int]Action) *Policy {
	cp := make(map[int]Action, len(table))
	for count, action := range table {
		cp[count] = action
	}
	return &Policy{table: cp}
}

// ParsePolicy builds a Policy from its configuration form, a comma-separated
// list of "count=duration" pairs, e.g. "2=4h,3=24h".
func ParsePolicy(spec string) (*Policy, error) {
	table := make(map[int]Action)

	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid escalation entry %q", pair)
		}

		count, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("invalid escalation count %q", parts[0])
		}

		duration, err := time.ParseDuration(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid escalation duration %q", parts[1])
		}

		table[count] = Action{Kind: ActionMute, Duration: duration}
	}

	return &Policy{table: table}, nil
}

// Escalate returns the recommended action for a count of active warnings.
// Counts without a table entry yield no action.
func (p *Policy) Escalate(activeCount int) (Action, bool) {
	action, ok := p.table[activeCount]
	return action, ok
}
