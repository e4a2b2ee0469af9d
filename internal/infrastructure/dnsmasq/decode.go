package dnsmasq

import (
	"fmt"
	"strings"

	"debinterface-agent/internal/domain/entities"
	"debinterface-agent/internal/domain/errors"
)

const interfaceTag = "interface"

// DecodeRangeLine은 "interface:<name>,<start>,<end>,<lease>" 형식의 값을 레코드로 변환합니다.
// 형식이 맞지 않으면 그 지점까지 읽은 필드만 채운 레코드를 반환하며 에러는 내지 않습니다.
func DecodeRangeLine(value string) entities.DHCPRange {
	var r entities.DHCPRange

	fields := strings.Split(value, ",")
	tag := strings.Split(fields[0], ":")
	if len(tag) < 2 {
		return r
	}
	r.Interface = tag[1]

	targets := []*string{&r.Start, &r.End, &r.LeaseTime}
	for i, target := range targets {
		if len(fields) <= i+1 {
			break
		}
		*target = fields[i+1]
	}
	return r
}

// ParseRangeLine은 DecodeRangeLine의 엄격한 버전입니다.
// 필드 개수나 interface 태그가 맞지 않으면 ParseError를 반환합니다.
func ParseRangeLine(value string) (entities.DHCPRange, error) {
	fields := strings.Split(value, ",")
	if len(fields) != 4 {
		return entities.DHCPRange{}, errors.NewParseError(
			fmt.Sprintf("dhcp-range 는 4개의 필드가 필요합니다 (got %d): %q", len(fields), value), nil)
	}

	tag, name, found := strings.Cut(fields[0], ":")
	if !found || tag != interfaceTag || name == "" {
		return entities.DHCPRange{}, errors.NewParseError(
			fmt.Sprintf("dhcp-range 는 interface:<name> 으로 시작해야 합니다: %q", value), nil)
	}

	r := entities.DHCPRange{
		Interface: name,
		Start:     strings.TrimSpace(fields[1]),
		End:       strings.TrimSpace(fields[2]),
		LeaseTime: strings.TrimSpace(fields[3]),
	}
	if r.Start == "" || r.End == "" || r.LeaseTime == "" {
		return entities.DHCPRange{}, errors.NewParseError(
			fmt.Sprintf("dhcp-range 에 빈 필드가 있습니다: %q", value), nil)
	}
	return r, nil
}

// formatRangeLine은 레코드를 설정 파일 한 줄로 만듭니다
func formatRangeLine(r entities.DHCPRange) string {
	return RangeKey + "=" + r.String()
}
