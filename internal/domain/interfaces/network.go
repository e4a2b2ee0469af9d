package interfaces

import (
	"context"

	"debinterface-agent/internal/domain/entities"
)

// AdapterReader는 interfaces 파일을 어댑터 목록으로 읽는 인터페이스입니다
type AdapterReader interface {
	Parse(path string) ([]*entities.NetworkAdapter, error)
}

// AdapterWriter는 어댑터 목록을 interfaces 파일로 기록하는 인터페이스입니다
type AdapterWriter interface {
	Write(ctx context.Context, path string, adapters []*entities.NetworkAdapter) error
}

// RangeStore는 dnsmasq DHCP 범위 설정 파일을 다루는 인터페이스입니다
type RangeStore interface {
	// Read는 파일 내용으로 저장소 전체를 교체합니다
	Read(path ...string) error

	// Clear는 저장소를 빈 상태로 만듭니다
	Clear()

	// Ranges는 범위 레코드 목록의 복사본을 반환합니다
	Ranges() []entities.DHCPRange

	// GetItfRange는 인터페이스의 범위 레코드를 찾습니다
	GetItfRange(name string) (entities.DHCPRange, bool)

	// CheckRange는 UpdateRange 가 만들 레코드를 미리 검증합니다
	CheckRange(desired entities.RangeDescriptor) error

	// UpdateRange는 원하는 상태에 맞게 범위 목록을 조정하고 변경 여부를 반환합니다
	UpdateRange(desired entities.RangeDescriptor) bool

	// Write는 검증 후 백업을 만들고 파일을 기록합니다
	Write(path ...string) error

	// Restore는 백업 파일로 원본을 되돌립니다
	Restore() error
}

// ServiceController는 dnsmasq 서비스를 제어하는 인터페이스입니다
type ServiceController interface {
	// Control은 start, stop, restart 중 하나를 실행하고 성공 여부와 출력을 반환합니다
	Control(ctx context.Context, action string) (bool, string)
}

// BackupService는 설정 파일의 타임스탬프 백업을 관리하는 인터페이스입니다
type BackupService interface {
	// CreateBackup은 configPath 의 현재 내용을 백업합니다
	CreateBackup(ctx context.Context, name string, configPath string) error

	// RestoreLatestBackup은 가장 최근 백업으로 configPath 를 되돌립니다
	RestoreLatestBackup(ctx context.Context, name string, configPath string) error

	// HasBackup은 백업이 존재하는지 확인합니다
	HasBackup(ctx context.Context, name string) bool
}
