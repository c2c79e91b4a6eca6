package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDayJSON(t *testing.T) {
	d, err := ParseDay("2026-03-14")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-03-14"` {
		t.Fatalf("unexpected %s", b)
	}

	var back Day
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip mismatch %s vs %s", back, d)
	}
}

func TestDayZeroMarshalsNull(t *testing.T) {
	b, err := json.Marshal(Day{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "null" {
		t.Fatalf("expected null, got %s", b)
	}
}

func TestNewDayTruncates(t *testing.T) {
	d := NewDay(time.Date(2026, 3, 14, 17, 45, 2, 0, time.UTC))
	if d.String() != "2026-03-14" {
		t.Fatalf("expected 2026-03-14, got %s", d)
	}
}

func TestDayAddDays(t *testing.T) {
	d, _ := ParseDay("2026-03-01")
	if got := d.AddDays(-1).String(); got != "2026-02-28" {
		t.Fatalf("expected 2026-02-28, got %s", got)
	}
}

func TestParseDayInvalid(t *testing.T) {
	if _, err := ParseDay("14/03/2026"); err == nil {
		t.Fatalf("expected error")
	}
}
