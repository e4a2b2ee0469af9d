package services

import (
	"fmt"
	"net"

	"debinterface-agent/internal/domain/entities"
	"debinterface-agent/internal/domain/errors"

	"github.com/apparentlymart/go-cidr/cidr"
)

const (
	// 충분히 큰 네트워크에서는 정적 주소용으로 앞뒤 일부를 비워 둠
	reservedLow        = 10
	reservedHigh       = 4
	minHostsForReserve = 32
)

// RangePlanner는 어댑터의 주소와 넷마스크로부터 기본 DHCP 범위를 계산하는 도메인 서비스입니다
type RangePlanner struct{}

// NewRangePlanner는 새로운 RangePlanner를 생성합니다
func NewRangePlanner() *RangePlanner {
	return &RangePlanner{}
}

// DefaultBounds는 address/netmask 네트워크의 사용 가능한 호스트 범위를 반환합니다.
// 호스트가 32개를 넘으면 앞 10개와 뒤 4개를 제외합니다 (/24 에서 .11 ~ .250).
func (p *RangePlanner) DefaultBounds(address, netmask string) (string, string, error) {
	network, err := ipv4Network(address, netmask)
	if err != nil {
		return "", "", err
	}

	hosts := cidr.AddressCount(network)
	if hosts < 4 {
		return "", "", errors.NewValidationError(
			fmt.Sprintf("DHCP 범위를 만들기에 네트워크가 너무 작습니다: %s", network), nil)
	}
	usable := int(hosts - 2)

	startOffset, endOffset := 1, usable
	if usable > minHostsForReserve {
		startOffset += reservedLow
		endOffset -= reservedHigh
	}

	start, err := cidr.Host(network, startOffset)
	if err != nil {
		return "", "", errors.NewValidationError("범위 시작 주소 계산 실패", err)
	}
	end, err := cidr.Host(network, endOffset)
	if err != nil {
		return "", "", errors.NewValidationError("범위 끝 주소 계산 실패", err)
	}
	return start.String(), end.String(), nil
}

// Fill은 descriptor 에 비어 있는 범위 경계를 어댑터의 네트워크로부터 채웁니다.
// AP 가 아니거나 경계가 모두 지정되었거나 어댑터에 주소 정보가 없으면 그대로 반환합니다.
func (p *RangePlanner) Fill(desired entities.RangeDescriptor, adapter *entities.NetworkAdapter) (entities.RangeDescriptor, error) {
	if !desired.IsAccessPoint() || (desired.RangeIPStart != "" && desired.RangeIPEnd != "") {
		return desired, nil
	}
	if adapter == nil || adapter.Address() == "" || adapter.Netmask() == "" {
		return desired, nil
	}

	start, end, err := p.DefaultBounds(adapter.Address(), adapter.Netmask())
	if err != nil {
		return desired, err
	}
	if desired.RangeIPStart == "" {
		desired.RangeIPStart = start
	}
	if desired.RangeIPEnd == "" {
		desired.RangeIPEnd = end
	}
	return desired, nil
}

// Contains는 ip 가 address/netmask 네트워크에 속하는지 확인합니다
func (p *RangePlanner) Contains(address, netmask, ip string) (bool, error) {
	network, err := ipv4Network(address, netmask)
	if err != nil {
		return false, err
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false, errors.NewValidationError(fmt.Sprintf("잘못된 IP 주소: %s", ip), nil)
	}
	return network.Contains(parsed), nil
}

func ipv4Network(address, netmask string) (*net.IPNet, error) {
	ip := net.ParseIP(address).To4()
	if ip == nil {
		return nil, errors.NewValidationError(fmt.Sprintf("잘못된 IPv4 주소: %s", address), nil)
	}
	maskIP := net.ParseIP(netmask).To4()
	if maskIP == nil {
		return nil, errors.NewValidationError(fmt.Sprintf("잘못된 넷마스크: %s", netmask), nil)
	}
	mask := net.IPMask(maskIP)
	if _, bits := mask.Size(); bits == 0 {
		return nil, errors.NewValidationError(fmt.Sprintf("연속되지 않은 넷마스크: %s", netmask), nil)
	}
	return &net.IPNet{IP: ip.Mask(mask), Mask: mask}, nil
}
