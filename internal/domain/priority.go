package domain

import (
	"fmt"
	"strings"
)

// Priority ranks how soon a purchase should be placed.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Priorities lists every priority from most to least pressing.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

var priorityAliases = map[string]Priority{
	"low":     PriorityLow,
	"baixa":   PriorityLow,
	"medium":  PriorityMedium,
	"media":   PriorityMedium,
	"média":   PriorityMedium,
	"high":    PriorityHigh,
	"alta":    PriorityHigh,
	"urgent":  PriorityUrgent,
	"urgente": PriorityUrgent,
}

// ParsePriority returns the priority for a label (case-insensitive).
// Legacy Portuguese labels produced by the old spreadsheet tooling are accepted.
func ParsePriority(label string) (Priority, bool) {
	p, ok := priorityAliases[strings.ToLower(strings.TrimSpace(label))]

	return p, ok
}

// UnmarshalText accepts any label ParsePriority knows, so decoded results and
// byPriority map keys written by the old tooling read back as English labels.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, ok := ParsePriority(string(text))
	if !ok {
		return fmt.Errorf("unknown priority %q", string(text))
	}
	*p = parsed
	return nil
}

// AtLeast reports whether p is as pressing as floor.
func (p Priority) AtLeast(floor Priority) bool {
	return p.Rank() >= floor.Rank()
}

// Rank orders priorities, higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

func (p Priority) String() string {
	return string(p)
}
