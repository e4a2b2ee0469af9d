package network

import (
	"fmt"
	"strings"

	"debinterface-agent/internal/domain/entities"
	"debinterface-agent/internal/domain/errors"
	"debinterface-agent/internal/domain/interfaces"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const bridgePrefix = "bridge_"

// InterfacesReader는 /etc/network/interfaces 형식의 파일을 어댑터 목록으로 읽습니다
type InterfacesReader struct {
	fileSystem interfaces.FileSystem
	logger     *logrus.Logger
}

// NewInterfacesReader는 새로운 InterfacesReader를 생성합니다
func NewInterfacesReader(fs interfaces.FileSystem, logger *logrus.Logger) *InterfacesReader {
	return &InterfacesReader{
		fileSystem: fs,
		logger:     logger,
	}
}

var _ interfaces.AdapterReader = (*InterfacesReader)(nil)

// Parse는 파일을 읽어 iface 스탠자마다 어댑터 하나를 만듭니다.
// auto / allow-hotplug 는 위치와 관계없이 같은 이름의 어댑터에 적용됩니다.
func (r *InterfacesReader) Parse(path string) ([]*entities.NetworkAdapter, error) {
	data, err := r.fileSystem.ReadFile(path)
	if err != nil {
		return nil, errors.NewSystemError(fmt.Sprintf("interfaces 파일 읽기 실패: %s", path), err)
	}
	return r.ParseContent(path, string(data))
}

// ParseContent는 이미 읽은 파일 내용을 파싱합니다. path 는 에러 메시지에만 사용됩니다.
func (r *InterfacesReader) ParseContent(path, content string) ([]*entities.NetworkAdapter, error) {
	var (
		adapters []*entities.NetworkAdapter
		byName   = map[string]*entities.NetworkAdapter{}
		autos    = map[string]bool{}
		hotplugs = map[string]bool{}
		current  *entities.NetworkAdapter
	)

	for i, raw := range strings.Split(content, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		keyword := fields[0]
		rest := strings.TrimSpace(strings.TrimPrefix(line, keyword))

		switch keyword {
		case "auto", "allow-auto":
			for _, name := range fields[1:] {
				autos[name] = true
			}
			current = nil
		case "allow-hotplug":
			for _, name := range fields[1:] {
				hotplugs[name] = true
			}
			current = nil
		case "iface":
			if len(fields) < 4 {
				return nil, errors.NewParseError(
					fmt.Sprintf("%s:%d: iface 는 <name> <family> <method> 가 필요합니다", path, lineNo), nil)
			}
			adapter, err := newStanzaAdapter(fields[1], fields[2], fields[3])
			if err != nil {
				return nil, pkgerrors.WithMessagef(err, "%s:%d", path, lineNo)
			}
			if _, dup := byName[fields[1]]; dup {
				r.logger.WithFields(logrus.Fields{
					"path":      path,
					"line":      lineNo,
					"interface": fields[1],
				}).Warn("중복된 iface 스탠자, 이후 스탠자를 사용")
				adapters = removeAdapter(adapters, byName[fields[1]])
			}
			byName[fields[1]] = adapter
			adapters = append(adapters, adapter)
			current = adapter
		case "mapping", "source", "source-directory", "rename":
			r.logger.WithFields(logrus.Fields{
				"path":    path,
				"line":    lineNo,
				"keyword": keyword,
			}).Debug("지원하지 않는 최상위 지시자 무시")
			current = nil
		default:
			if current == nil {
				r.logger.WithFields(logrus.Fields{
					"path": path,
					"line": lineNo,
				}).Debug("스탠자 밖의 옵션 무시")
				continue
			}
			if err := applyStanzaOption(current, keyword, rest); err != nil {
				return nil, pkgerrors.WithMessagef(err, "%s:%d", path, lineNo)
			}
		}
	}

	for _, adapter := range adapters {
		if autos[adapter.Name()] {
			_ = adapter.SetAuto(true)
		}
		if hotplugs[adapter.Name()] {
			_ = adapter.SetHotplug(true)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"path":     path,
		"adapters": len(adapters),
	}).Debug("interfaces 파일 파싱 완료")
	return adapters, nil
}

func newStanzaAdapter(name, family, method string) (*entities.NetworkAdapter, error) {
	adapter, err := entities.NewNetworkAdapter(name)
	if err != nil {
		return nil, err
	}
	if err := adapter.SetAddrFam(family); err != nil {
		return nil, err
	}
	if err := adapter.SetAddressSource(method); err != nil {
		return nil, err
	}
	return adapter, nil
}

// applyStanzaOption은 스탠자 안의 옵션 한 줄을 어댑터에 반영합니다
func applyStanzaOption(adapter *entities.NetworkAdapter, key, value string) error {
	switch key {
	case entities.OptAddress:
		return adapter.SetAddress(value)
	case entities.OptNetmask:
		return adapter.SetNetmask(value)
	case entities.OptGateway:
		return adapter.SetGateway(value)
	case entities.OptBroadcast:
		return adapter.SetBroadcast(value)
	case entities.OptNetwork:
		return adapter.SetNetwork(value)
	case entities.OptHostapd:
		return adapter.SetHostapd(value)
	case entities.OptDNSNameservers:
		return adapter.SetDNSNameservers(value)
	case entities.OptUp:
		adapter.AppendUp(value)
	case entities.OptDown:
		adapter.AppendDown(value)
	case entities.OptPreUp:
		adapter.AppendPreUp(value)
	case entities.OptPreDown:
		adapter.AppendPreDown(value)
	case entities.OptPostDown:
		adapter.AppendPostDown(value)
	default:
		if strings.HasPrefix(key, bridgePrefix) {
			adapter.ReplaceBridgeOpt(strings.TrimPrefix(key, bridgePrefix), value)
			return nil
		}
		adapter.SetUnknown(key, value)
	}
	return nil
}

func removeAdapter(adapters []*entities.NetworkAdapter, target *entities.NetworkAdapter) []*entities.NetworkAdapter {
	out := adapters[:0]
	for _, a := range adapters {
		if a != target {
			out = append(out, a)
		}
	}
	return out
}
