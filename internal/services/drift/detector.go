package drift

import (
	"DriftWatch/internal/domain/models"
	applogger "DriftWatch/pkg/logger"
)

// Absolute floors for zero-baseline rate escalation. When the baseline rate
// is zero, a rate spike alerts only once the current rate reaches its floor.
const (
	fallbackRateFloor  = 0.01
	errorRateFloor     = 0.01
	duplicateRateFloor = 0.05
)

// Health score bands. Scores at or above healthyScore are inert; scores
// below criticalScore escalate directly to critical. The band in between
// produces no alert.
const (
	healthyScore  = 80.0
	criticalScore = 50.0
)

// Detector runs per-metric drift checks of one day's snapshot against a
// rolling baseline. Stateless apart from its threshold configuration; safe
// for concurrent use.
type Detector struct {
	thresholds models.ThresholdConfig
	l          *applogger.Logger
}

func NewDetector(thresholds models.ThresholdConfig) *Detector {
	return &Detector{thresholds: thresholds, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (d *Detector) SetLogger(l *applogger.Logger) {
	if l != nil {
		d.l = l
	}
}

// Thresholds returns the threshold configuration in effect.
func (d *Detector) Thresholds() models.ThresholdConfig {
	return d.thresholds
}

// DetectAll runs the five detectors in fixed order (fallback, error,
// latency, duplicate, health) and concatenates the non-nil results. The
// detectors are independent; the order only affects output ordering.
func (d *Detector) DetectAll(cur *models.MetricSnapshot, base *models.BaselineSnapshot) []*models.Alert {
	if cur == nil || base == nil {
		return nil
	}
	checks := []func(*models.MetricSnapshot, *models.BaselineSnapshot) *models.Alert{
		d.DetectFallbackSpike,
		d.DetectErrorSpike,
		d.DetectLatencySpike,
		d.DetectDuplicateSpike,
		d.DetectHealthDecline,
	}
	var alerts []*models.Alert
	for _, check := range checks {
		if a := check(cur, base); a != nil {
			alerts = append(alerts, a)
		}
	}
	return alerts
}

// DetectFallbackSpike compares the fallback rate against its baseline.
func (d *Detector) DetectFallbackSpike(cur *models.MetricSnapshot, base *models.BaselineSnapshot) *models.Alert {
	return d.rateSpike(cur, base, models.AlertFallbackSpike, "fallback_rate",
		cur.FallbackRate, base.FallbackRate, fallbackRateFloor)
}

// DetectErrorSpike compares the error rate against its baseline.
func (d *Detector) DetectErrorSpike(cur *models.MetricSnapshot, base *models.BaselineSnapshot) *models.Alert {
	return d.rateSpike(cur, base, models.AlertErrorSpike, "error_rate",
		cur.ErrorRate, base.ErrorRate, errorRateFloor)
}

// DetectDuplicateSpike compares the duplicate rate against its baseline.
func (d *Detector) DetectDuplicateSpike(cur *models.MetricSnapshot, base *models.BaselineSnapshot) *models.Alert {
	return d.rateSpike(cur, base, models.AlertDuplicateSpike, "duplicate_rate",
		cur.DuplicateRate, base.DuplicateRate, duplicateRateFloor)
}

// rateSpike is the shared shape of the three rate detectors. A zero baseline
// escalates straight to critical once the current rate reaches the floor;
// otherwise the deviation ratio is resolved through the thresholds.
func (d *Detector) rateSpike(cur *models.MetricSnapshot, base *models.BaselineSnapshot,
	alertType models.AlertType, metricName string, curRate, baseRate, floor float64) *models.Alert {

	if baseRate < 0 {
		d.l.Warn("negative baseline rate, skipping detector",
			applogger.String("metric", metricName),
			applogger.Float64("baseline", baseRate),
		)
		return nil
	}

	var dev models.Deviation
	var sev models.Severity
	if baseRate == 0 {
		if curRate < floor {
			return nil
		}
		dev = models.Infinite()
		sev = models.SeverityCritical
	} else {
		dev = Ratio(curRate, baseRate)
		var ok bool
		sev, ok = d.thresholds.Severity(dev.Float64())
		if !ok {
			return nil
		}
	}

	clamped := curRate
	if clamped < 0 {
		clamped = 0
	}
	return d.newAlert(alertType, sev, metricName, clamped, baseRate, dev, cur.MetricDate, base.WindowDays,
		map[string]interface{}{
			"absolute_increase":   round4(clamped - baseRate),
			"current_percentage":  round4(clamped * 100),
			"baseline_percentage": round4(baseRate * 100),
		})
}

// DetectLatencySpike compares latency_p95 only. A zero-baseline p95 means
// insufficient data and the detector stays inert, unlike the rate detectors'
// floor escalation.
func (d *Detector) DetectLatencySpike(cur *models.MetricSnapshot, base *models.BaselineSnapshot) *models.Alert {
	if base.LatencyP95 < 0 {
		d.l.Warn("negative baseline latency, skipping detector",
			applogger.Float64("baseline_p95", base.LatencyP95),
		)
		return nil
	}
	if base.LatencyP95 == 0 {
		return nil
	}

	dev := Ratio(cur.LatencyP95, base.LatencyP95)
	sev, ok := d.thresholds.Severity(dev.Float64())
	if !ok {
		return nil
	}

	cur95 := cur.LatencyP95
	if cur95 < 0 {
		cur95 = 0
	}
	return d.newAlert(models.AlertLatencySpike, sev, "latency_p95", cur95, base.LatencyP95, dev,
		cur.MetricDate, base.WindowDays,
		map[string]interface{}{
			"absolute_increase_ms": round4(cur95 - base.LatencyP95),
			"current_p50":          cur.LatencyP50,
			"current_p99":          cur.LatencyP99,
		})
}

// DetectHealthDecline watches the composite health score rather than a
// deviation ratio. Scores of 80 and above are healthy; below 50 is an
// immediate critical against an implicit baseline of 100. The 50-80 band
// yields no alert tier.
func (d *Detector) DetectHealthDecline(cur *models.MetricSnapshot, base *models.BaselineSnapshot) *models.Alert {
	if cur.HealthScore >= healthyScore {
		return nil
	}
	if cur.HealthScore >= criticalScore {
		return nil
	}

	dev := models.Finite(round4((100 - cur.HealthScore) / 100))
	return d.newAlert(models.AlertHealthDecline, models.SeverityCritical, "health_score",
		cur.HealthScore, 100, dev, cur.MetricDate, base.WindowDays,
		map[string]interface{}{
			"critical":     true,
			"health_score": cur.HealthScore,
		})
}

func (d *Detector) newAlert(alertType models.AlertType, sev models.Severity, metricName string,
	current, baseline float64, dev models.Deviation, day models.Day, windowDays int,
	context map[string]interface{}) *models.Alert {

	return &models.Alert{
		Type:                 alertType,
		Severity:             sev,
		MetricName:           metricName,
		CurrentValue:         current,
		BaselineValue:        baseline,
		Deviation:            dev,
		ThresholdLow:         d.thresholds.Low,
		ThresholdMedium:      d.thresholds.Medium,
		ThresholdHigh:        d.thresholds.High,
		MetricDate:           day,
		ComparisonWindowDays: windowDays,
		Context:              context,
		Status:               models.StatusOpen,
	}
}
