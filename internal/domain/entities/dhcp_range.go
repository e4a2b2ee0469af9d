package entities

import (
	"fmt"
)

// DHCPRange는 dnsmasq dhcp-range 레코드 하나입니다.
// 파일 형식: interface:<name>,<start>,<end>,<lease>
type DHCPRange struct {
	Interface string
	Start     string
	End       string
	LeaseTime string
}

// IsZero는 모든 필드가 비어 있는지 확인합니다
func (r DHCPRange) IsZero() bool {
	return r == DHCPRange{}
}

// String은 dhcp-range 값 형식으로 레코드를 반환합니다
func (r DHCPRange) String() string {
	return fmt.Sprintf("interface:%s,%s,%s,%s", r.Interface, r.Start, r.End, r.LeaseTime)
}
