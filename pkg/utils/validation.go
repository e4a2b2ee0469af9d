package utils

import (
	"encoding/binary"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/asaskevich/govalidator"
)

var (
	// 리눅스 인터페이스 이름 패턴 (IFNAMSIZ 16 - 1, 공백/슬래시 불가)
	interfacePattern = regexp.MustCompile(`^[a-zA-Z0-9_.:@-]{1,15}$`)

	// 호스트네임 패턴
	hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-\.]*[a-zA-Z0-9]$`)
)

// ValidateDottedIP는 점(.)이 포함된 IPv4 주소인지 검증 (서브넷 마스크도 허용)
func ValidateDottedIP(ip string) error {
	if !strings.Contains(ip, ".") {
		return fmt.Errorf("점이 없는 IP 주소: %q", ip)
	}
	// IPv4-mapped IPv6 (::ffff:a.b.c.d) 는 govalidator 를 통과하므로 먼저 거부
	if strings.Contains(ip, ":") {
		return fmt.Errorf("IPv6 형식의 주소: %q", ip)
	}
	if !govalidator.IsIPv4(ip) {
		return fmt.Errorf("잘못된 IPv4 주소: %q", ip)
	}
	return nil
}

// IPv4ToUint32는 점 표기 IPv4 주소를 32비트 부호 없는 정수로 변환
func IPv4ToUint32(ip string) (uint32, error) {
	if err := ValidateDottedIP(ip); err != nil {
		return 0, err
	}
	v4 := net.ParseIP(ip).To4()
	if v4 == nil {
		return 0, fmt.Errorf("IPv4로 변환할 수 없는 주소: %q", ip)
	}
	return binary.BigEndian.Uint32(v4), nil
}

// ValidateInterfaceName은 인터페이스 이름이 유효한지 검증
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("인터페이스 이름이 비어있음")
	}

	if !interfacePattern.MatchString(name) {
		return fmt.Errorf("잘못된 인터페이스 이름 형식: %s", name)
	}

	return nil
}

// ValidateHostname은 호스트네임이 유효한지 검증
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("호스트네임이 비어있음")
	}

	if len(hostname) > 253 {
		return fmt.Errorf("호스트네임이 너무 김: %d자 (최대 253자)", len(hostname))
	}

	if !hostnamePattern.MatchString(hostname) {
		return fmt.Errorf("잘못된 호스트네임 형식: %s", hostname)
	}

	return nil
}

// ShortHostname은 도메인 접미사(.novalocal 등)를 제거한 호스트네임을 반환
func ShortHostname(hostname string) string {
	if idx := strings.Index(hostname, "."); idx != -1 {
		return hostname[:idx]
	}
	return hostname
}
