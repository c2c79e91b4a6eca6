package models

// ThresholdConfig maps a deviation ratio onto a severity tier. Immutable;
// share freely across goroutines.
type ThresholdConfig struct {
	Low    float64
	Medium float64
	High   float64
}

// DefaultThresholds is the stock (1.5, 2.0, 3.0) mapping.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{Low: 1.5, Medium: 2.0, High: 3.0}
}

// Severity resolves a deviation ratio to a tier. Total over [0, +Inf]:
// ratio >= high yields critical, >= medium yields high, >= low yields
// medium, anything below low yields no severity (ok=false).
func (t ThresholdConfig) Severity(ratio float64) (Severity, bool) {
	switch {
	case ratio >= t.High:
		return SeverityCritical, true
	case ratio >= t.Medium:
		return SeverityHigh, true
	case ratio >= t.Low:
		return SeverityMedium, true
	default:
		return "", false
	}
}
