package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"DriftWatch/internal/domain/models"
	icache "DriftWatch/internal/service/cache"
	"DriftWatch/internal/service/metrics"
	"DriftWatch/internal/service/ratelimit"
	"DriftWatch/internal/usecase"
	xhttp "DriftWatch/pkg/http"
	xlogger "DriftWatch/pkg/logger"
)

const defaultSummaryTTL = 30 * time.Second

// MonitorHandler exposes the drift monitor over HTTP for dashboards and
// manual check triggers.
type MonitorHandler struct {
	logger  *xlogger.Logger
	monitor *usecase.Monitor
	summary *usecase.Summary
	cache   icache.BytesCache
	ttl     time.Duration
	rl      *ratelimit.Limiter
	hub     *AlertHub
}

func NewMonitorHandler(logger *xlogger.Logger, monitor *usecase.Monitor, summary *usecase.Summary) *MonitorHandler {
	metrics.Register()
	return &MonitorHandler{
		logger:  logger,
		monitor: monitor,
		summary: summary,
		ttl:     defaultSummaryTTL,
		rl:      ratelimit.New(),
	}
}

// SetCache injects a summary response cache.
func (h *MonitorHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	h.cache = c
	if ttl > 0 {
		h.ttl = ttl
	}
}

// SetHub attaches the live alert feed.
func (h *MonitorHandler) SetHub(hub *AlertHub) { h.hub = hub }

func (h *MonitorHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/check", h.Check)
	g.GET("/summary", h.Summary)
	g.GET("/alerts", h.Alerts)
	if h.hub != nil {
		e.GET("/ws/alerts", h.hub.Serve)
	}
}

// Check runs one drift check. The report never encodes a handler error:
// missing data and failed saves are part of the payload.
func (h *MonitorHandler) Check(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("check").Observe(time.Since(start).Seconds()) }()

	req := &models.CheckRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	// Checks hit the store hard; keep manual triggers at a trickle.
	if !h.rl.Allow(c.RealIP()+":check", 2, 0.5) {
		h.logger.Warn("check rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	var day models.Day
	if req.Date != "" {
		parsed, err := models.ParseDay(req.Date)
		if err != nil {
			return xhttp.BadRequestResponse(c, err.Error())
		}
		day = parsed
	}

	report := h.monitor.CheckAndAlert(c.Request().Context(), day, req.Save())
	return xhttp.SuccessResponse(c, report)
}

func (h *MonitorHandler) Summary(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("summary").Observe(time.Since(start).Seconds()) }()

	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cacheKey := "summary:" + strconv.Itoa(req.Window)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("summary cache_get_error", xlogger.Error(err))
		} else if ok {
			h.logger.Debug("summary cache_hit", xlogger.String("key", cacheKey))
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	res := h.summary.GetSummary(c.Request().Context(), req.Window)
	b, err := json.Marshal(xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    res,
	})
	if err != nil {
		metrics.APIErrors.WithLabelValues("summary").Inc()
		h.logger.Error("summary marshal_error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	if h.cache != nil {
		if err := h.cache.SetBytes(cacheKey, b, h.ttl); err != nil {
			h.logger.Warn("summary cache_set_error", xlogger.Error(err))
		}
	}
	return c.JSONBlob(http.StatusOK, b)
}

func (h *MonitorHandler) Alerts(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("alerts").Observe(time.Since(start).Seconds()) }()

	req := &models.AlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	threshold, err := models.ParseSeverity(req.Threshold)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("unknown severity %q", req.Threshold))
	}

	alerts := h.summary.GetAlerts(c.Request().Context(), threshold, req.Status, req.Limit)
	return xhttp.ListResponse(c, alerts, int64(len(alerts)))
}
