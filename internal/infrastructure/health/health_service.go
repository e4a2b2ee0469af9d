package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"debinterface-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// HealthService provides health check functionality
type HealthService struct {
	mu              sync.RWMutex
	clock           interfaces.Clock
	logger          *logrus.Logger
	startTime       time.Time
	dbHealthy       bool
	dbError         error
	appliedRanges   int64
	failedRanges    int64
	invalidAdapters int
	lastAction      string
	lastActionOK    bool
	lastActionAt    time.Time
}

// HealthStatus represents health check status
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is the health check response struct
type HealthResponse struct {
	Status     HealthStatus           `json:"status"`
	Timestamp  string                 `json:"timestamp"`
	Components map[string]interface{} `json:"components"`
	Statistics map[string]interface{} `json:"statistics"`
}

// NewHealthService creates a new HealthService
func NewHealthService(clock interfaces.Clock, logger *logrus.Logger) *HealthService {
	return &HealthService{
		clock:        clock,
		logger:       logger,
		startTime:    clock.Now(),
		lastActionOK: true,
	}
}

// UpdateDBHealth updates the database health status
func (h *HealthService) UpdateDBHealth(healthy bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dbHealthy = healthy
	h.dbError = err
}

// RecordReconcile adds one reconcile cycle's applied and failed descriptor counts
func (h *HealthService) RecordReconcile(applied, failed int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.appliedRanges += int64(applied)
	h.failedRanges += int64(failed)
}

// RecordServiceAction stores the result of the latest dnsmasq control action
func (h *HealthService) RecordServiceAction(action string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastAction = action
	h.lastActionOK = ok
	h.lastActionAt = h.clock.Now()
}

// SetInvalidAdapters sets the number of adapters that failed schema validation
func (h *HealthService) SetInvalidAdapters(count int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.invalidAdapters = count
}

// ServeHTTP handles the HTTP health check endpoint
func (h *HealthService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := h.buildHealthResponse()

	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("failed to encode health check response")
	}
}

func (h *HealthService) buildHealthResponse() HealthResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.clock.Now()

	dnsmasq := map[string]interface{}{
		"last_action": h.lastAction,
		"ok":          h.lastActionOK,
	}
	if !h.lastActionAt.IsZero() {
		dnsmasq["at"] = h.lastActionAt.Format(time.RFC3339)
	}

	components := map[string]interface{}{
		"database": map[string]interface{}{
			"healthy": h.dbHealthy,
			"error":   formatError(h.dbError),
		},
		"dnsmasq": dnsmasq,
		"interfaces": map[string]interface{}{
			"invalid_adapters": h.invalidAdapters,
		},
	}

	statistics := map[string]interface{}{
		"applied_ranges": h.appliedRanges,
		"failed_ranges":  h.failedRanges,
		"uptime":         formatUptime(now.Sub(h.startTime)),
	}

	return HealthResponse{
		Status:     h.determineOverallStatus(),
		Timestamp:  now.Format(time.RFC3339),
		Components: components,
		Statistics: statistics,
	}
}

// determineOverallStatus determines the overall health status
func (h *HealthService) determineOverallStatus() HealthStatus {
	if !h.dbHealthy {
		return StatusUnhealthy
	}

	// dnsmasq 제어가 마지막에 실패했거나 실패 비율이 50% 이상이면 degraded
	if !h.lastActionOK || h.invalidAdapters > 0 {
		return StatusDegraded
	}
	if h.failedRanges > 0 {
		failureRate := float64(h.failedRanges) / float64(h.appliedRanges+h.failedRanges)
		if failureRate >= 0.5 {
			return StatusDegraded
		}
	}

	return StatusHealthy
}

func formatError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// formatUptime formats uptime duration to human-readable format
func formatUptime(duration time.Duration) string {
	days := int(duration.Hours()) / 24
	hours := int(duration.Hours()) % 24
	minutes := int(duration.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd%dh%dm", days, hours, minutes)
	} else if hours > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
