package metrics

import (
	stderrors "errors"
	"strings"

	domainerrors "debinterface-agent/internal/domain/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 범위 조정 관련 메트릭
	RangesReconciled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debinterface_ranges_reconciled_total",
			Help: "Total number of desired range descriptors reconciled",
		},
		[]string{"result"}, // changed, unchanged, failed
	)

	RangeFileWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debinterface_range_file_writes_total",
			Help: "Total number of dnsmasq range file writes",
		},
		[]string{"status"}, // success, failed, restored
	)

	ConfiguredRanges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "debinterface_configured_ranges",
			Help: "Number of dhcp-range records in the dnsmasq range file",
		},
	)

	ServiceActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debinterface_service_actions_total",
			Help: "Total number of dnsmasq service control actions",
		},
		[]string{"action", "status"},
	)

	// interfaces 파일 검증 메트릭
	InvalidAdapters = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "debinterface_invalid_adapters",
			Help: "Number of adapters in the interfaces file that failed validation",
		},
	)

	// 폴링 관련 메트릭
	PollingCycleCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "debinterface_polling_cycles_total",
			Help: "Total number of polling cycles executed",
		},
	)

	PollingCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "debinterface_polling_cycle_duration_seconds",
			Help:    "Time spent in each polling cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	PollingBackoffLevel = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "debinterface_polling_backoff_level",
			Help: "Current backoff level (0 = no backoff)",
		},
	)

	// 데이터베이스 관련 메트릭
	DBConnectionStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "debinterface_db_connection_status",
			Help: "Database connection status (1 = connected, 0 = disconnected)",
		},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "debinterface_db_query_duration_seconds",
			Help:    "Time spent executing database queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type"},
	)

	// 에러 메트릭
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debinterface_errors_total",
			Help: "Total number of errors encountered",
		},
		[]string{"error_type"}, // validation, range, parse, system ...
	)

	// 시스템 정보
	AgentInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "debinterface_agent_info",
			Help: "Agent information",
		},
		[]string{"version", "node_name"},
	)
)

// RecordReconcile은 descriptor 하나의 조정 결과를 기록합니다
func RecordReconcile(result string) {
	RangesReconciled.WithLabelValues(result).Inc()
}

// RecordRangeFileWrite는 범위 파일 쓰기 결과를 기록합니다
func RecordRangeFileWrite(status string, ranges int) {
	RangeFileWrites.WithLabelValues(status).Inc()
	if status == "success" {
		ConfiguredRanges.Set(float64(ranges))
	}
}

// RecordServiceAction은 서비스 제어 결과를 기록합니다
func RecordServiceAction(action string, ok bool) {
	status := "success"
	if !ok {
		status = "failed"
	}
	ServiceActions.WithLabelValues(action, status).Inc()
}

// SetInvalidAdapters는 검증에 실패한 어댑터 수를 설정합니다
func SetInvalidAdapters(count int) {
	InvalidAdapters.Set(float64(count))
}

// RecordPollingCycle은 폴링 사이클 메트릭을 기록합니다
func RecordPollingCycle(duration float64) {
	PollingCycleCount.Inc()
	PollingCycleDuration.Observe(duration)
}

// RecordDBQuery는 데이터베이스 쿼리 시간을 기록합니다
func RecordDBQuery(queryType string, duration float64) {
	DBQueryDuration.WithLabelValues(queryType).Observe(duration)
}

// RecordError는 에러 발생을 기록합니다
func RecordError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordDomainError는 DomainError의 타입을 레이블로 에러를 기록합니다
func RecordDomainError(err error) {
	var domainErr *domainerrors.DomainError
	if stderrors.As(err, &domainErr) {
		RecordError(strings.ToLower(string(domainErr.Type)))
		return
	}
	RecordError("unknown")
}

// SetBackoffLevel은 현재 백오프 레벨을 설정합니다
func SetBackoffLevel(level float64) {
	PollingBackoffLevel.Set(level)
}

// SetDBConnectionStatus는 데이터베이스 연결 상태를 설정합니다
func SetDBConnectionStatus(connected bool) {
	if connected {
		DBConnectionStatus.Set(1)
	} else {
		DBConnectionStatus.Set(0)
	}
}

// SetAgentInfo는 에이전트 정보를 설정합니다
func SetAgentInfo(version, nodeName string) {
	AgentInfo.WithLabelValues(version, nodeName).Set(1)
}
