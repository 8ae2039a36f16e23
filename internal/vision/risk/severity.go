package risk

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity is a discrete risk level.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{"none", "low", "medium", "high", "critical"}

func (s Severity) String() string {
	if s < SeverityNone || s > SeverityCritical {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalJSON renders the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseSeverity(name)
	if !ok {
		return fmt.Errorf("unknown severity %q", name)
	}
	*s = parsed
	return nil
}

// ParseSeverity maps a stored severity name back to its level.
func ParseSeverity(name string) (Severity, bool) {
	for i, n := range severityNames {
		if n == name {
			return Severity(i), true
		}
	}
	return SeverityNone, false
}

// Factor identifies which measurement pushed an assessment into alert
// territory. Factors drive the human-readable alert label.
type Factor string

const (
	FactorClose      Factor = "CLOSE"
	FactorFast       Factor = "FAST"
	FactorDirectPath Factor = "DIRECT"
)

// FactorSet is the set of triggered factors for one assessment.
type FactorSet map[Factor]bool

// Has reports whether the factor is in the set.
func (fs FactorSet) Has(f Factor) bool { return fs[f] }

// String renders the set in a stable CLOSE | FAST | DIRECT order.
func (fs FactorSet) String() string {
	parts := make([]string, 0, 3)
	for _, f := range []Factor{FactorClose, FactorFast, FactorDirectPath} {
		if fs[f] {
			parts = append(parts, string(f))
		}
	}
	return strings.Join(parts, " | ")
}

// ParseFactorSet parses a stored factor string back into a set.
func ParseFactorSet(s string) FactorSet {
	fs := make(FactorSet)
	for _, part := range strings.Split(s, "|") {
		switch Factor(strings.TrimSpace(part)) {
		case FactorClose:
			fs[FactorClose] = true
		case FactorFast:
			fs[FactorFast] = true
		case FactorDirectPath:
			fs[FactorDirectPath] = true
		}
	}
	return fs
}
