package models

import (
	"encoding/json"
	"math"
	"testing"
)

func TestDeviationMarshalFinite(t *testing.T) {
	b, err := json.Marshal(Finite(2.5))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "2.5" {
		t.Fatalf("expected 2.5, got %s", b)
	}
}

func TestDeviationMarshalInfinite(t *testing.T) {
	b, err := json.Marshal(Infinite())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"inf"` {
		t.Fatalf("expected \"inf\", got %s", b)
	}
}

func TestDeviationUnmarshalRoundTrip(t *testing.T) {
	var d Deviation
	if err := json.Unmarshal([]byte(`"inf"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !d.BaselineWasZero || !math.IsInf(d.Float64(), 1) {
		t.Fatalf("expected infinite, got %+v", d)
	}

	if err := json.Unmarshal([]byte("1.5"), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.BaselineWasZero || d.Ratio != 1.5 {
		t.Fatalf("expected finite 1.5, got %+v", d)
	}
}

func TestDeviationUnmarshalInvalid(t *testing.T) {
	var d Deviation
	if err := json.Unmarshal([]byte(`"huge"`), &d); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSeverityRank(t *testing.T) {
	order := []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i, s := range order {
		if s.Rank() != i {
			t.Fatalf("%s: expected rank %d, got %d", s, i, s.Rank())
		}
	}
	if Severity("bogus").Rank() != -1 {
		t.Fatalf("expected -1 for unknown severity")
	}
}

func TestParseSeverity(t *testing.T) {
	if _, err := ParseSeverity("critical"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseSeverity("urgent"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestThresholdSeverity(t *testing.T) {
	tc := DefaultThresholds()
	cases := []struct {
		ratio float64
		sev   Severity
		ok    bool
	}{
		{1.0, "", false},
		{1.49, "", false},
		{1.5, SeverityMedium, true},
		{2.0, SeverityHigh, true},
		{2.99, SeverityHigh, true},
		{3.0, SeverityCritical, true},
		{math.Inf(1), SeverityCritical, true},
	}
	for _, c := range cases {
		sev, ok := tc.Severity(c.ratio)
		if ok != c.ok || sev != c.sev {
			t.Fatalf("ratio %v: expected (%s,%v), got (%s,%v)", c.ratio, c.sev, c.ok, sev, ok)
		}
	}
}

func TestBaselineValid(t *testing.T) {
	b := BaselineSnapshot{BaselineName: "7day_rolling", WindowDays: 7}
	if !b.Valid() {
		t.Fatalf("expected valid")
	}
	b.WindowDays = 0
	if b.Valid() {
		t.Fatalf("expected invalid window")
	}
	b.WindowDays = 7
	b.LatencyP95 = -1
	if b.Valid() {
		t.Fatalf("expected invalid negative latency")
	}
}
