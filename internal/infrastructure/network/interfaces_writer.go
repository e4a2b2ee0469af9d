package network

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"debinterface-agent/internal/domain/constants"
	"debinterface-agent/internal/domain/entities"
	"debinterface-agent/internal/domain/errors"
	"debinterface-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	backupName   = "interfaces"
	optionIndent = "    "
)

// 스탠자 안에서 옵션이 기록되는 순서
var scalarOptionOrder = []string{
	entities.OptAddress,
	entities.OptNetmask,
	entities.OptNetwork,
	entities.OptBroadcast,
	entities.OptGateway,
	entities.OptDNSNameservers,
	entities.OptHostapd,
}

var commandOptionOrder = []string{
	entities.OptPreUp,
	entities.OptUp,
	entities.OptDown,
	entities.OptPreDown,
	entities.OptPostDown,
}

// InterfacesWriter는 어댑터 목록을 /etc/network/interfaces 형식으로 기록합니다
type InterfacesWriter struct {
	fileSystem    interfaces.FileSystem
	backupService interfaces.BackupService
	logger        *logrus.Logger
}

// NewInterfacesWriter는 새로운 InterfacesWriter를 생성합니다
func NewInterfacesWriter(
	fs interfaces.FileSystem,
	backupService interfaces.BackupService,
	logger *logrus.Logger,
) *InterfacesWriter {
	return &InterfacesWriter{
		fileSystem:    fs,
		backupService: backupService,
		logger:        logger,
	}
}

var _ interfaces.AdapterWriter = (*InterfacesWriter)(nil)

// Write는 모든 어댑터를 검증한 뒤 현재 파일을 백업하고 원자적으로 교체합니다.
// 하나라도 검증에 실패하면 파일을 건드리지 않습니다.
func (w *InterfacesWriter) Write(ctx context.Context, path string, adapters []*entities.NetworkAdapter) error {
	for _, adapter := range adapters {
		if err := adapter.ValidateAll(); err != nil {
			w.logger.WithFields(logrus.Fields{
				"interface": adapter.Name(),
			}).WithError(err).Error("어댑터 검증 실패")
			return err
		}
	}

	if w.backupService != nil {
		if err := w.backupService.CreateBackup(ctx, backupName, path); err != nil {
			return err
		}
	}

	content := RenderInterfaces(adapters)
	if err := w.fileSystem.WriteFileAtomic(path, []byte(content), constants.ConfigFilePermission); err != nil {
		return errors.NewSystemError(fmt.Sprintf("interfaces 파일 쓰기 실패: %s", path), err)
	}

	w.logger.WithFields(logrus.Fields{
		"path":     path,
		"adapters": len(adapters),
	}).Info("interfaces 파일 저장 완료")
	return nil
}

// RenderInterfaces는 어댑터 목록을 파일 내용으로 직렬화합니다
func RenderInterfaces(adapters []*entities.NetworkAdapter) string {
	stanzas := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		stanzas = append(stanzas, renderStanza(adapter))
	}
	return strings.Join(stanzas, "\n")
}

func renderStanza(adapter *entities.NetworkAdapter) string {
	var b strings.Builder
	name := adapter.Name()

	if adapter.Auto() {
		fmt.Fprintf(&b, "auto %s\n", name)
	}
	if adapter.Hotplug() {
		fmt.Fprintf(&b, "allow-hotplug %s\n", name)
	}

	family := adapter.AddrFam()
	if family == "" {
		family = "inet"
	}
	fmt.Fprintf(&b, "iface %s %s %s\n", name, family, adapter.Source())

	for _, opt := range scalarOptionOrder {
		if v, ok := adapter.GetAttr(opt); ok {
			if s, _ := v.(string); s != "" {
				writeOption(&b, opt, s)
			}
		}
	}

	bridge := adapter.BridgeOpts()
	for _, key := range sortedKeys(bridge) {
		writeOption(&b, bridgePrefix+key, bridge[key])
	}

	for _, opt := range commandOptionOrder {
		for _, cmd := range adapter.Commands(opt) {
			writeOption(&b, opt, cmd)
		}
	}

	unknown := adapter.Unknown()
	keys := make([]string, 0, len(unknown))
	for k := range unknown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		writeOption(&b, key, fmt.Sprint(unknown[key]))
	}

	return b.String()
}

func writeOption(b *strings.Builder, key, value string) {
	b.WriteString(optionIndent)
	b.WriteString(key)
	if value != "" {
		b.WriteByte(' ')
		b.WriteString(value)
	}
	b.WriteByte('\n')
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
