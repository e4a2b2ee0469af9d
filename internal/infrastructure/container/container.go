package container

import (
	"database/sql"
	"fmt"

	"debinterface-agent/internal/application/usecases"
	"debinterface-agent/internal/domain/interfaces"
	"debinterface-agent/internal/domain/services"
	"debinterface-agent/internal/infrastructure/adapters"
	"debinterface-agent/internal/infrastructure/config"
	"debinterface-agent/internal/infrastructure/dnsmasq"
	"debinterface-agent/internal/infrastructure/health"
	"debinterface-agent/internal/infrastructure/metrics"
	"debinterface-agent/internal/infrastructure/network"
	"debinterface-agent/internal/infrastructure/persistence"
	infraservices "debinterface-agent/internal/infrastructure/services"
	"debinterface-agent/pkg/utils"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// Container는 의존성 주입을 관리하는 컨테이너입니다
type Container struct {
	config *config.Config
	logger *logrus.Logger

	// 인프라스트럭처 어댑터들
	fileSystem      interfaces.FileSystem
	commandExecutor interfaces.CommandExecutor
	clock           interfaces.Clock

	// 서비스들
	healthService     *health.HealthService
	backupService     interfaces.BackupService
	planner           *services.RangePlanner
	serviceController *dnsmasq.ServiceController

	// 설정 파일 저장소
	rangeConfig   *dnsmasq.RangeConfig
	adapterReader *network.InterfacesReader
	adapterWriter *network.InterfacesWriter

	// 레포지토리
	repository interfaces.DesiredRangeRepository

	// 유스케이스
	reconcileUseCase *usecases.ReconcileRangesUseCase
	validateUseCase  *usecases.ValidateInterfacesUseCase

	// 데이터베이스
	db *sql.DB
}

// NewContainer는 DB 연결을 포함한 에이전트용 Container를 생성합니다
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	container.initializeInfrastructure()
	container.initializeServices()

	if err := container.initializeDatabase(); err != nil {
		return nil, err
	}

	container.initializeUseCases()

	return container, nil
}

// NewLocalContainer는 DB 없이 로컬 파일과 서비스만 다루는 Container를 생성합니다.
// 반환된 Container의 GetReconcileRangesUseCase 는 nil 입니다.
func NewLocalContainer(cfg *config.Config, logger *logrus.Logger) *Container {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	container.initializeInfrastructure()
	container.initializeServices()
	container.validateUseCase = usecases.NewValidateInterfacesUseCase(
		container.adapterReader, cfg.Interfaces.Path, logger)

	return container
}

// initializeInfrastructure는 인프라스트럭처 컴포넌트들을 초기화합니다
func (c *Container) initializeInfrastructure() {
	c.fileSystem = adapters.NewRealFileSystem()
	c.commandExecutor = adapters.NewRealCommandExecutor()
	c.clock = adapters.NewRealClock()
}

// initializeServices는 서비스와 설정 파일 저장소를 초기화합니다
func (c *Container) initializeServices() {
	agentCfg := c.config.Agent
	dnsmasqCfg := c.config.Dnsmasq

	c.healthService = health.NewHealthService(c.clock, c.logger)
	c.planner = services.NewRangePlanner()

	c.backupService = infraservices.NewBackupService(
		c.fileSystem,
		c.clock,
		c.logger,
		agentCfg.BackupDirectory,
		agentCfg.BackupRetention,
	)

	retry := utils.DefaultRetryConfig
	retry.MaxAttempts = agentCfg.MaxRetries
	retry.InitialDelay = agentCfg.RetryDelay
	c.serviceController = dnsmasq.NewServiceController(
		c.commandExecutor,
		c.logger,
		dnsmasqCfg.InitScript,
		agentCfg.CommandTimeout,
		retry,
	)

	opts := []dnsmasq.Option{dnsmasq.WithBackupPath(dnsmasqCfg.BackupFile)}
	if dnsmasqCfg.StrictDecoding {
		opts = append(opts, dnsmasq.WithStrictDecoding())
	}
	c.rangeConfig = dnsmasq.NewRangeConfig(dnsmasqCfg.RangeFile, c.fileSystem, c.logger, opts...)

	c.adapterReader = network.NewInterfacesReader(c.fileSystem, c.logger)
	c.adapterWriter = network.NewInterfacesWriter(c.fileSystem, c.backupService, c.logger)
}

// initializeDatabase는 DB 연결과 레포지토리를 초기화합니다
func (c *Container) initializeDatabase() error {
	db, err := sql.Open("mysql", c.buildDSN())
	if err != nil {
		return err
	}

	// 연결 풀 설정
	db.SetMaxOpenConns(c.config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.config.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		metrics.SetDBConnectionStatus(false)
		_ = db.Close()
		return fmt.Errorf("데이터베이스 연결 실패: %w", err)
	}
	metrics.SetDBConnectionStatus(true)

	c.db = db
	c.repository = persistence.NewMySQLRepository(c.db, c.logger)
	return nil
}

// initializeUseCases는 유스케이스들을 초기화합니다
func (c *Container) initializeUseCases() {
	c.reconcileUseCase = usecases.NewReconcileRangesUseCase(
		c.repository,
		c.rangeConfig,
		c.adapterReader,
		c.serviceController,
		c.planner,
		c.fileSystem,
		usecases.ReconcilePaths{
			InterfacesFile: c.config.Interfaces.Path,
			RangeFile:      c.config.Dnsmasq.RangeFile,
		},
		c.logger,
	)

	c.validateUseCase = usecases.NewValidateInterfacesUseCase(
		c.adapterReader,
		c.config.Interfaces.Path,
		c.logger,
	)
}

// buildDSN은 데이터베이스 연결 문자열을 생성합니다
func (c *Container) buildDSN() string {
	cfg := c.config.Database
	return cfg.User + ":" + cfg.Password + "@tcp(" + cfg.Host + ":" + cfg.Port + ")/" + cfg.Database + "?parseTime=true"
}

// GetConfig는 설정을 반환합니다
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetHealthService는 헬스 서비스를 반환합니다
func (c *Container) GetHealthService() *health.HealthService {
	return c.healthService
}

// GetRangeConfig는 dnsmasq 범위 설정 저장소를 반환합니다
func (c *Container) GetRangeConfig() *dnsmasq.RangeConfig {
	return c.rangeConfig
}

// GetServiceController는 dnsmasq 서비스 제어기를 반환합니다
func (c *Container) GetServiceController() *dnsmasq.ServiceController {
	return c.serviceController
}

// GetAdapterReader는 interfaces 파일 리더를 반환합니다
func (c *Container) GetAdapterReader() *network.InterfacesReader {
	return c.adapterReader
}

// GetAdapterWriter는 interfaces 파일 라이터를 반환합니다
func (c *Container) GetAdapterWriter() *network.InterfacesWriter {
	return c.adapterWriter
}

// GetBackupService는 백업 서비스를 반환합니다
func (c *Container) GetBackupService() interfaces.BackupService {
	return c.backupService
}

// GetRangePlanner는 범위 계산 서비스를 반환합니다
func (c *Container) GetRangePlanner() *services.RangePlanner {
	return c.planner
}

// GetReconcileRangesUseCase는 범위 조정 유스케이스를 반환합니다
func (c *Container) GetReconcileRangesUseCase() *usecases.ReconcileRangesUseCase {
	return c.reconcileUseCase
}

// GetValidateInterfacesUseCase는 interfaces 검증 유스케이스를 반환합니다
func (c *Container) GetValidateInterfacesUseCase() *usecases.ValidateInterfacesUseCase {
	return c.validateUseCase
}

// Close는 컨테이너를 정리합니다
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
