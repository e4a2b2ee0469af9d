package interfaces

import (
	"context"

	"debinterface-agent/internal/domain/entities"
)

// DesiredRangeRepository는 노드별로 원하는 DHCP 범위 상태를 보관하는 저장소 인터페이스입니다
type DesiredRangeRepository interface {
	// GetDesiredRanges는 특정 노드의 인터페이스별 원하는 범위 상태를 조회합니다
	GetDesiredRanges(ctx context.Context, nodeName string) ([]entities.RangeDescriptor, error)

	// UpdateSyncStatus는 descriptor 의 반영 상태를 업데이트합니다
	UpdateSyncStatus(ctx context.Context, id int, status entities.SyncStatus) error
}
