package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownOrdinal = errors.New("unknown ordinal value")

// Each ordinal type reserves its zero value for "unspecified". Rank, on the
// types that drive an ordering, places unspecified after every named level so
// it always sorts last.

// Severity is descriptive only; impairments sort by name.
type Severity int

const (
	SeverityUnspecified Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
)

var severityNames = []string{"", "Mild", "Moderate", "Severe"}

func ParseSeverity(s string) (Severity, error) {
	i, err := parseOrdinal("severity", severityNames, s)
	return Severity(i), err
}

func (s Severity) String() string { return ordinalName(severityNames, int(s)) }

func (s Severity) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }
func (s *Severity) UnmarshalJSON(b []byte) error {
	return unmarshalOrdinal(b, func(v string) (err error) { *s, err = ParseSeverity(v); return })
}

// Priority ranks assessments.
type Priority int

const (
	PriorityUnspecified Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

var priorityNames = []string{"", "High", "Medium", "Low"}

func ParsePriority(s string) (Priority, error) {
	i, err := parseOrdinal("priority", priorityNames, s)
	return Priority(i), err
}

func (p Priority) String() string { return ordinalName(priorityNames, int(p)) }
func (p Priority) Rank() int      { return ordinalRank(len(priorityNames), int(p)) }

func (p Priority) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }
func (p *Priority) UnmarshalJSON(b []byte) error {
	return unmarshalOrdinal(b, func(v string) (err error) { *p, err = ParsePriority(v); return })
}

// Urgency ranks red flags.
type Urgency int

const (
	UrgencyUnspecified Urgency = iota
	UrgencyHigh
	UrgencyMedium
	UrgencyLow
)

var urgencyNames = []string{"", "High", "Medium", "Low"}

func ParseUrgency(s string) (Urgency, error) {
	i, err := parseOrdinal("urgency", urgencyNames, s)
	return Urgency(i), err
}

func (u Urgency) String() string { return ordinalName(urgencyNames, int(u)) }
func (u Urgency) Rank() int      { return ordinalRank(len(urgencyNames), int(u)) }

func (u Urgency) MarshalJSON() ([]byte, error) { return json.Marshal(u.String()) }
func (u *Urgency) UnmarshalJSON(b []byte) error {
	return unmarshalOrdinal(b, func(v string) (err error) { *u, err = ParseUrgency(v); return })
}

// Phase is the rehabilitation phase an exercise belongs to.
type Phase int

const (
	PhaseUnspecified Phase = iota
	PhaseEarly
	PhaseMid
	PhaseLate
)

var phaseNames = []string{"", "Early", "Mid", "Late"}

func ParsePhase(s string) (Phase, error) {
	i, err := parseOrdinal("phase", phaseNames, s)
	return Phase(i), err
}

func (p Phase) String() string { return ordinalName(phaseNames, int(p)) }
func (p Phase) Rank() int      { return ordinalRank(len(phaseNames), int(p)) }

func (p Phase) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }
func (p *Phase) UnmarshalJSON(b []byte) error {
	return unmarshalOrdinal(b, func(v string) (err error) { *p, err = ParsePhase(v); return })
}

// parseOrdinal matches s case-insensitively against names. Blank input is the
// unspecified level.
func parseOrdinal(field string, names []string, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	for i := 1; i < len(names); i++ {
		if strings.EqualFold(s, names[i]) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownOrdinal, field, s)
}

func ordinalName(names []string, i int) string {
	if i <= 0 || i >= len(names) {
		return ""
	}
	return names[i]
}

func ordinalRank(n, i int) int {
	if i <= 0 || i >= n {
		return n
	}
	return i
}

func unmarshalOrdinal(b []byte, set func(string) error) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return set(v)
}
