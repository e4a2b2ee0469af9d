package dnsmasq

import (
	"context"
	"strings"
	"time"

	"debinterface-agent/internal/domain/constants"
	"debinterface-agent/internal/domain/interfaces"
	"debinterface-agent/internal/infrastructure/metrics"
	"debinterface-agent/pkg/utils"

	"github.com/sirupsen/logrus"
)

// 허용되는 서비스 동작
const (
	ActionStart   = "start"
	ActionStop    = "stop"
	ActionRestart = "restart"
)

// InvalidActionMessage는 허용되지 않은 동작에 대한 출력입니다
const InvalidActionMessage = "Invalid action"

// ServiceController는 init 스크립트로 dnsmasq 서비스를 제어합니다
type ServiceController struct {
	initScript  string
	timeout     time.Duration
	retryConfig utils.RetryConfig
	executor    interfaces.CommandExecutor
	logger      *logrus.Logger
}

// NewServiceController는 새로운 ServiceController를 생성합니다.
// initScript 가 비어 있으면 기본 경로를 사용합니다.
func NewServiceController(
	executor interfaces.CommandExecutor,
	logger *logrus.Logger,
	initScript string,
	timeout time.Duration,
	retryConfig utils.RetryConfig,
) *ServiceController {
	if initScript == "" {
		initScript = constants.DnsmasqInitScript
	}
	if timeout <= 0 {
		timeout = constants.DefaultCommandTimeout * time.Second
	}
	return &ServiceController{
		initScript:  initScript,
		timeout:     timeout,
		retryConfig: retryConfig,
		executor:    executor,
		logger:      logger,
	}
}

var _ interfaces.ServiceController = (*ServiceController)(nil)

// Control은 start, stop, restart 중 하나를 실행하고 성공 여부와 명령 출력을 반환합니다.
// 그 외 동작은 명령을 실행하지 않고 거부합니다.
func (s *ServiceController) Control(ctx context.Context, action string) (bool, string) {
	switch action {
	case ActionStart, ActionStop, ActionRestart:
	default:
		return false, InvalidActionMessage
	}

	var output []byte
	err := utils.RetryWithBackoff(ctx, s.retryConfig, func() error {
		out, err := s.executor.ExecuteWithTimeout(ctx, s.timeout, s.initScript, action)
		output = out
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"script": s.initScript,
				"action": action,
			}).WithError(err).Warn("dnsmasq 서비스 제어 실패, 재시도")
		}
		return err
	})

	result := strings.TrimSpace(string(output))
	if err != nil {
		if result == "" {
			result = err.Error()
		}
		s.logger.WithFields(logrus.Fields{
			"script": s.initScript,
			"action": action,
		}).WithError(err).Error("dnsmasq 서비스 제어 최종 실패")
		metrics.RecordServiceAction(action, false)
		return false, result
	}

	s.logger.WithField("action", action).Info("dnsmasq 서비스 제어 완료")
	metrics.RecordServiceAction(action, true)
	return true, result
}
