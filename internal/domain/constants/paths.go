package constants

// 시스템 경로 상수들
const (
	// Debian ifupdown 설정 파일
	InterfacesFile = "/etc/network/interfaces"

	// dnsmasq 관련 경로
	DnsmasqRangeFile  = "/etc/dnsmasq.d/dhcp-range.conf"
	DnsmasqInitScript = "/etc/init.d/dnsmasq"
	DnsmasqLeaseFile  = "/var/tmp/dnsmasq.leases"

	// 백업 디렉토리
	DefaultBackupDir = "/var/lib/debinterface/backups"

	// 백업 파일 접미사
	BackupSuffix = ".bak"
)

// DHCP 범위 관련 상수들
const (
	// 범위를 절대 제공하지 않는 인터페이스
	ExcludedInterface = "eth0"

	DefaultLeaseTime = "24h"

	// 원하는 상태와 기존 레코드 모두 범위가 없을 때 쓰는 값
	PlaceholderRangeStart = "10.1.10.11"
	PlaceholderRangeEnd   = "10.1.10.250"

	// 파일 권한
	ConfigFilePermission = 0644

	// 타임아웃
	DefaultCommandTimeout = 30 // seconds
)

// 기본값 상수들
const (
	// 데이터베이스 기본값
	DefaultDBHost = "localhost"
	DefaultDBPort = "3306"
	DefaultDBName = "debinterface"

	// 에이전트 기본값
	DefaultPollInterval = "30s"
	DefaultLogLevel     = "info"
	DefaultHealthPort   = "8080"
)
