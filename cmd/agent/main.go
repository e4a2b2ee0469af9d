package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"debinterface-agent/internal/application/polling"
	"debinterface-agent/internal/application/usecases"
	"debinterface-agent/internal/infrastructure/config"
	"debinterface-agent/internal/infrastructure/container"
	"debinterface-agent/internal/infrastructure/metrics"
	"debinterface-agent/pkg/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const version = "0.3.0"

func main() {
	// 로거 초기화
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// LOG_LEVEL 환경 변수 설정
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr != "" {
		logLevel, err := logrus.ParseLevel(logLevelStr)
		if err != nil {
			logger.WithError(err).Warnf("Unknown LOG_LEVEL value: %s. Using default Info level.", logLevelStr)
			logger.SetLevel(logrus.InfoLevel)
		} else {
			logger.SetLevel(logLevel)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	// 설정 로드
	configLoader := config.NewEnvironmentConfigLoader()
	cfg, err := configLoader.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// 의존성 주입 컨테이너 생성
	appContainer, err := container.NewContainer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create dependency injection container")
	}
	defer func() {
		if err := appContainer.Close(); err != nil {
			logger.WithError(err).Error("Failed to cleanup container")
		}
	}()

	app := NewApplication(appContainer, logger)
	if err := app.Run(); err != nil {
		logger.WithError(err).Fatal("Failed to run application")
	}
}

// Application은 메인 애플리케이션 구조체입니다
type Application struct {
	container        *container.Container
	logger           *logrus.Logger
	reconcileUseCase *usecases.ReconcileRangesUseCase
	validateUseCase  *usecases.ValidateInterfacesUseCase
	healthServer     *http.Server
	nodeName         string
}

// NewApplication은 새로운 Application을 생성합니다
func NewApplication(container *container.Container, logger *logrus.Logger) *Application {
	return &Application{
		container:        container,
		logger:           logger,
		reconcileUseCase: container.GetReconcileRangesUseCase(),
		validateUseCase:  container.GetValidateInterfacesUseCase(),
	}
}

// Run은 애플리케이션을 실행합니다
func (a *Application) Run() error {
	cfg := a.container.GetConfig()

	nodeName, err := resolveNodeName(cfg.Agent.NodeName)
	if err != nil {
		return err
	}
	a.nodeName = nodeName
	metrics.SetAgentInfo(version, nodeName)

	a.startHealthServer(cfg.Health.Port)
	defer a.shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 폴링 전략 설정
	var strategy polling.Strategy
	if cfg.Agent.BackoffEnabled {
		strategy = polling.NewExponentialBackoffStrategy(
			cfg.Agent.PollInterval,
			cfg.Agent.BackoffMaxInterval,
			cfg.Agent.BackoffMultiplier,
			a.logger,
		)
		a.logger.WithFields(logrus.Fields{
			"base_interval": cfg.Agent.PollInterval,
			"max_interval":  cfg.Agent.BackoffMaxInterval,
			"multiplier":    cfg.Agent.BackoffMultiplier,
		}).Info("Exponential backoff polling enabled")
	} else {
		strategy = polling.NewFixedIntervalStrategy(cfg.Agent.PollInterval)
		a.logger.WithField("interval", cfg.Agent.PollInterval).Info("Fixed interval polling enabled")
	}

	pollingController := polling.NewPollingController(strategy, a.logger)

	a.logger.WithFields(logrus.Fields{
		"node_name":       nodeName,
		"interfaces_file": cfg.Interfaces.Path,
		"range_file":      cfg.Dnsmasq.RangeFile,
	}).Info("debinterface agent started")

	go func() {
		<-sigChan
		a.logger.Info("Received shutdown signal")
		cancel()
	}()

	err = pollingController.Start(ctx, a.processCycle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// resolveNodeName은 설정된 노드 이름이 없으면 도메인 접미사를 뗀 호스트명을 사용합니다
func resolveNodeName(configured string) (string, error) {
	nodeName := configured
	if nodeName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return "", err
		}
		nodeName = utils.ShortHostname(hostname)
	}
	if err := utils.ValidateHostname(nodeName); err != nil {
		return "", err
	}
	return nodeName, nil
}

// startHealthServer는 헬스체크 서버를 시작합니다
func (a *Application) startHealthServer(port string) {
	healthService := a.container.GetHealthService()

	mux := http.NewServeMux()
	mux.Handle("/", healthService)
	mux.Handle("/metrics", promhttp.Handler())

	a.healthServer = &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.WithField("port", port).Info("Health check server started (with /metrics)")
		if err := a.healthServer.ListenAndServe(); err != http.ErrServerClosed {
			a.logger.WithError(err).Error("Health check server failed")
		}
	}()
}

// processCycle은 폴링 한 주기의 작업을 수행합니다
func (a *Application) processCycle(ctx context.Context) error {
	healthService := a.container.GetHealthService()

	// 1. interfaces 파일 검증 (실패해도 범위 조정은 계속)
	validation, err := a.validateUseCase.Execute(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to validate interfaces file")
	} else {
		healthService.SetInvalidAdapters(len(validation.Invalid))
	}

	// 2. 원하는 범위 상태 반영
	output, err := a.reconcileUseCase.Execute(ctx, usecases.ReconcileRangesInput{NodeName: a.nodeName})
	if output != nil {
		healthService.RecordReconcile(output.ChangedCount, output.FailedCount)
		if output.ChangedCount > 0 {
			healthService.RecordServiceAction("restart", err == nil)
		}
	}
	if err != nil {
		metrics.RecordDomainError(err)
		if output == nil {
			// 조회 단계 실패는 DB 문제로 간주
			healthService.UpdateDBHealth(false, err)
			metrics.SetDBConnectionStatus(false)
		}
		return err
	}

	healthService.UpdateDBHealth(true, nil)
	metrics.SetDBConnectionStatus(true)

	if output.ChangedCount > 0 || output.FailedCount > 0 {
		a.logger.WithFields(logrus.Fields{
			"total":     output.TotalCount,
			"changed":   output.ChangedCount,
			"failed":    output.FailedCount,
			"restarted": output.Restarted,
		}).Info("DHCP range reconciliation completed")
	}
	return nil
}

// shutdown은 헬스체크 서버를 정리합니다
func (a *Application) shutdown() {
	if a.healthServer == nil {
		return
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := a.healthServer.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("Failed to shutdown health check server")
	}
}
