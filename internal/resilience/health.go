package resilience

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/errors"
)

// DegradationLevel represents the current degradation state
type DegradationLevel int

const (
	LevelNormal DegradationLevel = iota
	LevelDegraded
	LevelCritical
	LevelEmergency
)

func (l DegradationLevel) String() string {
	switch l {
	case LevelNormal:
		return "normal"
	case LevelDegraded:
		return "degraded"
	case LevelCritical:
		return "critical"
	case LevelEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// HealthConfig holds the error-rate thresholds for each level
type HealthConfig struct {
	Window             int     `json:"window"`              // number of recent calls considered
	DegradedThreshold  float64 `json:"degraded_threshold"`  // error rate (0.0-1.0)
	CriticalThreshold  float64 `json:"critical_threshold"`  // error rate (0.0-1.0)
	EmergencyThreshold float64 `json:"emergency_threshold"` // error rate (0.0-1.0)
}

// DefaultHealthConfig returns sensible defaults
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		Window:             100,
		DegradedThreshold:  0.1,
		CriticalThreshold:  0.25,
		EmergencyThreshold: 0.5,
	}
}

// ServiceHealth is a snapshot of a dependency's recent behaviour
type ServiceHealth struct {
	ServiceName     string           `json:"service_name"`
	Level           DegradationLevel `json:"level"`
	ErrorRate       float64          `json:"error_rate"`
	TotalRequests   int64            `json:"total_requests"`
	ErrorCount      int64            `json:"error_count"`
	TransientErrors int64            `json:"transient_errors"` // failures likely to clear on their own
	LastError       string           `json:"last_error,omitempty"`
	LastErrorTime   time.Time        `json:"last_error_time,omitempty"`
	StatusMessage   string           `json:"status_message"`
}

// HealthTracker keeps a sliding window of call outcomes for one dependency
// and derives a degradation level from the window's error rate.
type HealthTracker struct {
	name   string
	config HealthConfig
	clock  clockwork.Clock
	logger *slog.Logger

	mu       sync.Mutex
	outcomes []bool // true = failure; ring buffer of size config.Window
	next     int
	filled   int
	failed   int
	health   ServiceHealth
}

// NewHealthTracker creates a tracker for the named dependency. A nil clock
// means the real clock; a nil logger means slog.Default().
func NewHealthTracker(name string, config HealthConfig, clock clockwork.Clock, logger *slog.Logger) *HealthTracker {
	if config.Window <= 0 {
		config.Window = DefaultHealthConfig().Window
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthTracker{
		name:     name,
		config:   config,
		clock:    clock,
		logger:   logger,
		outcomes: make([]bool, config.Window),
		health: ServiceHealth{
			ServiceName:   name,
			Level:         LevelNormal,
			StatusMessage: "Service is healthy",
		},
	}
}

// Record records the outcome of one call; err == nil is a success
func (h *HealthTracker) Record(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	failed := err != nil

	if h.filled == len(h.outcomes) {
		if h.outcomes[h.next] {
			h.failed--
		}
	} else {
		h.filled++
	}
	h.outcomes[h.next] = failed
	h.next = (h.next + 1) % len(h.outcomes)

	h.health.TotalRequests++
	if failed {
		h.failed++
		h.health.ErrorCount++
		if errors.IsTransientError(err) {
			h.health.TransientErrors++
		}
		h.health.LastError = err.Error()
		h.health.LastErrorTime = h.clock.Now()
	}

	h.health.ErrorRate = float64(h.failed) / float64(h.filled)
	h.updateLevel()
}

func (h *HealthTracker) updateLevel() {
	oldLevel := h.health.Level

	switch rate := h.health.ErrorRate; {
	case rate >= h.config.EmergencyThreshold:
		h.health.Level = LevelEmergency
		h.health.StatusMessage = "Service is in emergency state - high error rate"
	case rate >= h.config.CriticalThreshold:
		h.health.Level = LevelCritical
		h.health.StatusMessage = "Service is in critical state - elevated error rate"
	case rate >= h.config.DegradedThreshold:
		h.health.Level = LevelDegraded
		h.health.StatusMessage = "Service is degraded - moderate error rate"
	default:
		h.health.Level = LevelNormal
		h.health.StatusMessage = "Service is healthy"
	}

	if oldLevel != h.health.Level {
		h.logger.Warn("Service degradation level changed",
			"service", h.name,
			"old_level", oldLevel.String(),
			"new_level", h.health.Level.String(),
			"error_rate", h.health.ErrorRate,
			"total_requests", h.health.TotalRequests,
			"error_count", h.health.ErrorCount,
			"transient_errors", h.health.TransientErrors)
	}
}

// Health returns a copy of the current health snapshot
func (h *HealthTracker) Health() ServiceHealth {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.health
}

// Available reports whether the dependency is usable; only emergency is not
func (h *HealthTracker) Available() bool {
	return h.Health().Level != LevelEmergency
}

// Reset clears all recorded outcomes
func (h *HealthTracker) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.outcomes = make([]bool, len(h.outcomes))
	h.next, h.filled, h.failed = 0, 0, 0
	h.health = ServiceHealth{
		ServiceName:   h.name,
		Level:         LevelNormal,
		StatusMessage: "Service is healthy",
	}
}
