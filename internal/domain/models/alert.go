package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
)

// AlertType identifies which detector produced an alert.
type AlertType string

const (
	AlertFallbackSpike  AlertType = "FALLBACK_SPIKE"
	AlertErrorSpike     AlertType = "ERROR_SPIKE"
	AlertLatencySpike   AlertType = "LATENCY_SPIKE"
	AlertDuplicateSpike AlertType = "DUPLICATE_SPIKE"
	AlertModelDrift     AlertType = "MODEL_DRIFT"
	AlertHealthDecline  AlertType = "HEALTH_DECLINE"
)

// Severity is the ordered anomaly tier derived from deviation thresholds.
// The low tier exists in the rank order for query filtering but is never
// produced by ThresholdConfig.Severity.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the ordering position of the severity, -1 if unknown.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// ParseSeverity normalizes a severity string.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if sev.Rank() < 0 {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}

// StatusOpen is the only status this core ever writes. Transitions
// (ack/resolve) belong to the alert store.
const StatusOpen = "open"

// Deviation is current ÷ baseline with an explicit zero-baseline tag.
// IEEE +Inf does not survive JSON encoding, so "baseline was zero, current
// nonzero" is carried as a flag and serialized as the string "inf".
type Deviation struct {
	Ratio           float64
	BaselineWasZero bool
}

// Infinite builds the zero-baseline sentinel.
func Infinite() Deviation {
	return Deviation{BaselineWasZero: true}
}

// Finite builds a plain ratio.
func Finite(ratio float64) Deviation {
	return Deviation{Ratio: ratio}
}

// Float64 returns the ratio as a float, +Inf for the zero-baseline case.
// Suitable for threshold comparison, not for serialization.
func (d Deviation) Float64() float64 {
	if d.BaselineWasZero {
		return math.Inf(1)
	}
	return d.Ratio
}

func (d Deviation) String() string {
	if d.BaselineWasZero {
		return "inf"
	}
	return strconv.FormatFloat(d.Ratio, 'f', -1, 64)
}

func (d Deviation) MarshalJSON() ([]byte, error) {
	if d.BaselineWasZero {
		return []byte(`"inf"`), nil
	}
	return []byte(strconv.FormatFloat(d.Ratio, 'f', -1, 64)), nil
}

func (d *Deviation) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "inf" {
		*d = Infinite()
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid deviation %q", s)
	}
	*d = Finite(v)
	return nil
}

// Alert is a detected anomaly. Alerts are constructed only when a detector
// resolved a non-none severity, persisted once with status open, and never
// mutated by this core afterwards.
type Alert struct {
	ID string `json:"id,omitempty"`

	Type     AlertType `json:"alert_type"`
	Severity Severity  `json:"severity"`

	MetricName    string    `json:"metric_name"`
	CurrentValue  float64   `json:"current_value"`
	BaselineValue float64   `json:"baseline_value"`
	Deviation     Deviation `json:"deviation_ratio"`

	ThresholdLow    float64 `json:"threshold_low"`
	ThresholdMedium float64 `json:"threshold_medium"`
	ThresholdHigh   float64 `json:"threshold_high"`

	MetricDate           Day `json:"metric_date"`
	ComparisonWindowDays int `json:"comparison_window_days"`

	AffectedModel   string `json:"affected_model,omitempty"`
	AffectedBackend string `json:"affected_backend,omitempty"`
	AffectedAgent   string `json:"affected_agent,omitempty"`

	Context map[string]interface{} `json:"context_data,omitempty"`

	Status    string     `json:"status"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// AlertFilter narrows an alert store query.
type AlertFilter struct {
	Since  Day    // metric_date >= Since when set
	Status string // exact match when set
	Limit  int    // 0 means store default
}
