package models

import "time"

// CheckReport is the result of one drift check run. It is always returned,
// even when data was missing or persistence failed; failure is encoded in
// the counts and the per-alert Saved flags.
type CheckReport struct {
	MetricDate     Day               `json:"metric_date"`
	AlertsDetected int               `json:"alerts_detected"`
	BySeverity     map[Severity]int  `json:"alerts_by_severity"`
	ByType         map[AlertType]int `json:"alerts_by_type"`
	Alerts         []AlertOutcome    `json:"alerts"`
}

// AlertOutcome is one detected alert plus its persistence outcome.
type AlertOutcome struct {
	Type      AlertType              `json:"type"`
	Severity  Severity               `json:"severity"`
	Metric    string                 `json:"metric"`
	Current   float64                `json:"current"`
	Baseline  float64                `json:"baseline"`
	Deviation Deviation              `json:"deviation"`
	Context   map[string]interface{} `json:"context,omitempty"`
	AlertID   string                 `json:"alert_id,omitempty"`
	Saved     bool                   `json:"saved"`
}

// Trend is a 3-vs-3-day directional classification.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendStable  Trend = "stable"
	TrendUnknown Trend = "unknown"
)

// WindowMetrics aggregates the metric rows inside a reporting window.
// Averages are unweighted means over the rows actually returned.
type WindowMetrics struct {
	TotalEvents     int64           `json:"total_events"`
	AvgFallbackRate float64         `json:"avg_fallback_rate"`
	AvgErrorRate    float64         `json:"avg_error_rate"`
	AvgHealthScore  float64         `json:"avg_health_score"`
	Latest          *MetricSnapshot `json:"latest,omitempty"`
}

// AlertWindow summarizes open alerts inside the reporting window.
type AlertWindow struct {
	TotalOpen  int              `json:"total_open"`
	BySeverity map[Severity]int `json:"by_severity"`
	Recent     []*Alert         `json:"recent"`
}

// DashboardSummary is the windowed dashboard payload.
type DashboardSummary struct {
	WindowDays  int               `json:"window"`
	Metrics     WindowMetrics     `json:"metrics"`
	Baseline    *BaselineSnapshot `json:"baseline,omitempty"`
	Trends      map[string]Trend  `json:"trends"`
	Alerts      AlertWindow       `json:"alerts"`
	GeneratedAt time.Time         `json:"generated_at"`
}
