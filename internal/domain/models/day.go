package models

import (
	"fmt"
	"strings"
	"time"

	"DriftWatch/pkg/util"
)

// Day is a calendar date in UTC. Metric snapshots and alerts are keyed by
// Day; the wire format is "2006-01-02".
type Day struct {
	t time.Time
}

func NewDay(t time.Time) Day {
	return Day{t: util.DayOf(t)}
}

// ParseDay parses a calendar date string.
func ParseDay(s string) (Day, error) {
	t, ok := util.ParseDay(s)
	if !ok {
		return Day{}, fmt.Errorf("invalid day %q", s)
	}
	return Day{t: t}, nil
}

func (d Day) Time() time.Time { return d.t }

func (d Day) IsZero() bool { return d.t.IsZero() }

func (d Day) String() string { return util.FormatDay(d.t) }

// AddDays returns the day shifted by n calendar days.
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

func (d Day) Equal(o Day) bool { return d.t.Equal(o.t) }

func (d Day) Before(o Day) bool { return d.t.Before(o.t) }

func (d Day) MarshalJSON() ([]byte, error) {
	if d.t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Day) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
