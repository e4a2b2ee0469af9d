package entities

import (
	"errors"

	"debinterface-agent/pkg/utils"
)

// ConnTypeAccessPoint는 DHCP 범위를 제공해야 하는 AP 인터페이스의 연결 타입입니다
const ConnTypeAccessPoint = "ap"

// RangeDescriptor는 인터페이스 하나에 대해 원하는 DHCP 범위 상태를 나타내는 도메인 엔티티입니다
type RangeDescriptor struct {
	ID           int
	NodeName     string
	Name         string // 인터페이스 이름 (e.g., "wlan0")
	ConnType     string // "ap" 이면 범위 제공, 그 외는 범위 제거
	RangeIPStart string
	RangeIPEnd   string
	Status       SyncStatus
}

// SyncStatus는 원하는 상태가 dnsmasq 설정에 반영되었는지를 나타냅니다
type SyncStatus int

const (
	SyncPending SyncStatus = iota
	SyncApplied
	SyncFailed
)

var (
	ErrInvalidDescriptorName = errors.New("유효하지 않은 인터페이스 이름")
	ErrInvalidNodeName       = errors.New("유효하지 않은 노드 이름")
)

// Validate는 RangeDescriptor의 유효성을 검증합니다
func (d *RangeDescriptor) Validate() error {
	if utils.ValidateInterfaceName(d.Name) != nil {
		return ErrInvalidDescriptorName
	}
	if d.NodeName == "" {
		return ErrInvalidNodeName
	}
	return nil
}

// HasConnType은 연결 타입이 지정되어 있는지 확인합니다.
// 연결 타입이 없는 descriptor는 범위 목록을 변경하지 않습니다.
func (d *RangeDescriptor) HasConnType() bool {
	return d.ConnType != ""
}

// IsAccessPoint는 AP 인터페이스인지 확인합니다
func (d *RangeDescriptor) IsAccessPoint() bool {
	return d.ConnType == ConnTypeAccessPoint
}

// MarkAsApplied는 반영 완료 상태로 변경합니다
func (d *RangeDescriptor) MarkAsApplied() {
	d.Status = SyncApplied
}

// MarkAsFailed는 반영 실패 상태로 변경합니다
func (d *RangeDescriptor) MarkAsFailed() {
	d.Status = SyncFailed
}

func (s SyncStatus) String() string {
	switch s {
	case SyncApplied:
		return "applied"
	case SyncFailed:
		return "failed"
	default:
		return "pending"
	}
}
