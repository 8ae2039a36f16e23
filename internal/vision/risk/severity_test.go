package risk

import (
	"encoding/json"
	"testing"
)

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityNone < SeverityLow && SeverityLow < SeverityMedium &&
		SeverityMedium < SeverityHigh && SeverityHigh < SeverityCritical) {
		t.Error("severity levels are not ordered")
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		s    Severity
		want string
	}{
		{SeverityNone, "none"},
		{SeverityLow, "low"},
		{SeverityMedium, "medium"},
		{SeverityHigh, "high"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
		{Severity(-1), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.s.String(); got != tc.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tc.s, got, tc.want)
		}
	}
}

func TestParseSeverityRoundTrip(t *testing.T) {
	for s := SeverityNone; s <= SeverityCritical; s++ {
		got, ok := ParseSeverity(s.String())
		if !ok || got != s {
			t.Errorf("ParseSeverity(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseSeverity("bogus"); ok {
		t.Error("expected parse failure for unknown name")
	}
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(SeverityHigh)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"high"` {
		t.Errorf("marshalled as %s, want \"high\"", data)
	}

	var s Severity
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != SeverityHigh {
		t.Errorf("round trip gave %v, want high", s)
	}

	if err := json.Unmarshal([]byte(`"bogus"`), &s); err == nil {
		t.Error("expected error for unknown severity name")
	}
}

func TestFactorSetString(t *testing.T) {
	fs := FactorSet{FactorDirectPath: true, FactorClose: true}
	if got := fs.String(); got != "CLOSE | DIRECT" {
		t.Errorf("expected stable order %q, got %q", "CLOSE | DIRECT", got)
	}
	if got := (FactorSet{}).String(); got != "" {
		t.Errorf("expected empty string for empty set, got %q", got)
	}
}

func TestParseFactorSetRoundTrip(t *testing.T) {
	fs := FactorSet{FactorClose: true, FactorFast: true, FactorDirectPath: true}
	parsed := ParseFactorSet(fs.String())
	for _, f := range []Factor{FactorClose, FactorFast, FactorDirectPath} {
		if !parsed.Has(f) {
			t.Errorf("lost factor %s in round trip", f)
		}
	}
	if got := ParseFactorSet(""); len(got) != 0 {
		t.Errorf("expected empty set from empty string, got %v", got)
	}
}
