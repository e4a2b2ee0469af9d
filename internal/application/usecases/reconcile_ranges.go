package usecases

import (
	"context"
	"fmt"

	"debinterface-agent/internal/domain/entities"
	"debinterface-agent/internal/domain/errors"
	"debinterface-agent/internal/domain/interfaces"
	"debinterface-agent/internal/domain/services"
	"debinterface-agent/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// reconcile 결과 라벨
const (
	ResultChanged   = "changed"
	ResultUnchanged = "unchanged"
	ResultFailed    = "failed"
)

// ReconcilePaths는 유스케이스가 다루는 파일 경로입니다
type ReconcilePaths struct {
	InterfacesFile string
	RangeFile      string
}

// ReconcileRangesUseCase는 DB 의 원하는 범위 상태를 dnsmasq 범위 파일에 반영하는 유스케이스입니다
type ReconcileRangesUseCase struct {
	repository    interfaces.DesiredRangeRepository
	rangeStore    interfaces.RangeStore
	adapterReader interfaces.AdapterReader
	service       interfaces.ServiceController
	planner       *services.RangePlanner
	fileSystem    interfaces.FileSystem
	paths         ReconcilePaths
	logger        *logrus.Logger
}

// NewReconcileRangesUseCase는 새로운 ReconcileRangesUseCase를 생성합니다
func NewReconcileRangesUseCase(
	repo interfaces.DesiredRangeRepository,
	store interfaces.RangeStore,
	reader interfaces.AdapterReader,
	service interfaces.ServiceController,
	planner *services.RangePlanner,
	fs interfaces.FileSystem,
	paths ReconcilePaths,
	logger *logrus.Logger,
) *ReconcileRangesUseCase {
	return &ReconcileRangesUseCase{
		repository:    repo,
		rangeStore:    store,
		adapterReader: reader,
		service:       service,
		planner:       planner,
		fileSystem:    fs,
		paths:         paths,
		logger:        logger,
	}
}

// ReconcileRangesInput은 유스케이스의 입력 파라미터입니다
type ReconcileRangesInput struct {
	NodeName string
}

// ReconcileRangesOutput은 유스케이스의 출력 결과입니다
type ReconcileRangesOutput struct {
	TotalCount   int
	ChangedCount int
	FailedCount  int
	Restarted    bool
}

// Execute는 범위 조정 유스케이스를 실행합니다
func (uc *ReconcileRangesUseCase) Execute(ctx context.Context, input ReconcileRangesInput) (*ReconcileRangesOutput, error) {
	// 1. 노드의 원하는 범위 상태 조회
	desired, err := uc.repository.GetDesiredRanges(ctx, input.NodeName)
	if err != nil {
		return nil, errors.NewSystemError("원하는 범위 상태 조회 실패", err)
	}

	output := &ReconcileRangesOutput{TotalCount: len(desired)}
	if len(desired) == 0 {
		return output, nil
	}

	uc.logger.WithFields(logrus.Fields{
		"node_name":   input.NodeName,
		"descriptors": len(desired),
	}).Debug("범위 조정 시작")

	// 2. 현재 범위 파일 로드 (없으면 빈 상태에서 시작)
	if err := uc.loadRangeFile(); err != nil {
		return output, err
	}
	adapters := uc.loadAdapters()

	// 3. descriptor 별로 범위 목록 조정
	var changed, applied []entities.RangeDescriptor
	for _, d := range desired {
		if err := d.Validate(); err != nil {
			uc.logger.WithFields(logrus.Fields{
				"descriptor_id": d.ID,
				"name":          d.Name,
				"error":         err,
			}).Warn("유효하지 않은 descriptor")
			output.FailedCount++
			metrics.RecordReconcile(ResultFailed)
			uc.updateStatus(ctx, d, entities.SyncFailed)
			continue
		}

		filled, err := uc.planner.Fill(d, adapters[d.Name])
		if err != nil {
			uc.logger.WithError(err).WithField("name", d.Name).Warn("기본 범위 계산 실패, 기존 경계 사용")
			filled = d
		}

		// 잘못된 경계는 해당 descriptor 만 실패 처리하고 나머지는 계속 반영
		if err := uc.rangeStore.CheckRange(filled); err != nil {
			uc.logger.WithFields(logrus.Fields{
				"descriptor_id": d.ID,
				"name":          d.Name,
				"error":         err,
			}).Warn("유효하지 않은 DHCP 범위")
			output.FailedCount++
			metrics.RecordReconcile(ResultFailed)
			uc.updateStatus(ctx, d, entities.SyncFailed)
			continue
		}

		if uc.rangeStore.UpdateRange(filled) {
			changed = append(changed, d)
			metrics.RecordReconcile(ResultChanged)
			uc.logger.WithFields(logrus.Fields{
				"name":      d.Name,
				"conn_type": d.ConnType,
				"start":     filled.RangeIPStart,
				"end":       filled.RangeIPEnd,
			}).Info("DHCP 범위 변경")
		} else {
			applied = append(applied, d)
			metrics.RecordReconcile(ResultUnchanged)
		}
	}

	output.ChangedCount = len(changed)

	// 4. 변경이 있으면 파일 기록 후 dnsmasq 재시작
	if len(changed) > 0 {
		if err := uc.applyChanges(ctx); err != nil {
			output.FailedCount += len(changed)
			for _, d := range changed {
				uc.updateStatus(ctx, d, entities.SyncFailed)
			}
			return output, err
		}
		output.Restarted = true
		applied = append(applied, changed...)
	}

	// 5. 반영 완료 상태 보고
	for _, d := range applied {
		uc.updateStatus(ctx, d, entities.SyncApplied)
	}

	return output, nil
}

func (uc *ReconcileRangesUseCase) loadRangeFile() error {
	if !uc.fileSystem.Exists(uc.paths.RangeFile) {
		uc.rangeStore.Clear()
		return nil
	}
	if err := uc.rangeStore.Read(uc.paths.RangeFile); err != nil {
		return errors.NewSystemError(fmt.Sprintf("범위 파일 로드 실패: %s", uc.paths.RangeFile), err)
	}
	return nil
}

// loadAdapters는 interfaces 파일을 읽어 이름별 어댑터 맵을 만듭니다.
// 파싱에 실패해도 범위 조정은 계속합니다.
func (uc *ReconcileRangesUseCase) loadAdapters() map[string]*entities.NetworkAdapter {
	byName := map[string]*entities.NetworkAdapter{}
	if uc.adapterReader == nil || uc.paths.InterfacesFile == "" {
		return byName
	}

	adapters, err := uc.adapterReader.Parse(uc.paths.InterfacesFile)
	if err != nil {
		uc.logger.WithError(err).WithField("path", uc.paths.InterfacesFile).Warn("interfaces 파일 파싱 실패")
		return byName
	}
	for _, adapter := range adapters {
		byName[adapter.Name()] = adapter
	}
	return byName
}

func (uc *ReconcileRangesUseCase) applyChanges(ctx context.Context) error {
	ranges := uc.rangeStore.Ranges()
	if err := uc.rangeStore.Write(); err != nil {
		metrics.RecordRangeFileWrite("failed", len(ranges))
		return err
	}
	metrics.RecordRangeFileWrite("success", len(ranges))

	ok, out := uc.service.Control(ctx, "restart")
	if ok {
		uc.logger.WithField("ranges", len(ranges)).Info("dnsmasq 재시작 완료")
		return nil
	}

	uc.logger.WithField("output", out).Error("dnsmasq 재시작 실패, 이전 범위 파일로 복구")
	if err := uc.rangeStore.Restore(); err != nil {
		uc.logger.WithError(err).Error("범위 파일 복구 실패")
	} else if ok, out := uc.service.Control(ctx, "restart"); !ok {
		uc.logger.WithField("output", out).Error("복구 후 dnsmasq 재시작 실패")
	}
	return errors.NewSystemError(fmt.Sprintf("dnsmasq 재시작 실패: %s", out), nil)
}

func (uc *ReconcileRangesUseCase) updateStatus(ctx context.Context, d entities.RangeDescriptor, status entities.SyncStatus) {
	if d.Status == status {
		return
	}
	if err := uc.repository.UpdateSyncStatus(ctx, d.ID, status); err != nil {
		uc.logger.WithError(err).WithField("descriptor_id", d.ID).Error("반영 상태 업데이트 실패")
	}
}
