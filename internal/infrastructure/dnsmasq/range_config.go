package dnsmasq

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"debinterface-agent/internal/domain/constants"
	"debinterface-agent/internal/domain/entities"
	"debinterface-agent/internal/domain/errors"
	"debinterface-agent/internal/domain/interfaces"
	"debinterface-agent/pkg/utils"

	"github.com/sirupsen/logrus"
)

// RangeKey는 범위 레코드 목록을 담는 설정 키입니다
const RangeKey = "dhcp-range"

// Validate가 반환하는 RangeError의 원인들
var (
	ErrMissingOption  = stderrors.New("missing option")
	ErrRangeOrder     = stderrors.New("start IP range must be before end IP")
	ErrInvalidAddress = stderrors.New("invalid dotted-quad address")
)

// RangeConfig는 인터페이스별 DHCP 범위를 담는 dnsmasq 설정 파일 모델입니다.
// 스칼라 키는 key=value 로, dhcp-range 는 순서가 있는 레코드 목록으로 보관합니다.
type RangeConfig struct {
	path       string
	backupPath string
	strict     bool

	scalars map[string]string
	ranges  []entities.DHCPRange

	fileSystem interfaces.FileSystem
	logger     *logrus.Logger
}

// Option은 RangeConfig 생성 옵션입니다
type Option func(*RangeConfig)

// WithBackupPath는 기본값(path + ".bak") 대신 사용할 백업 경로를 지정합니다
func WithBackupPath(path string) Option {
	return func(c *RangeConfig) {
		if path != "" {
			c.backupPath = path
		}
	}
}

// WithoutBackup은 백업을 비활성화합니다. Backup, Restore, Delete 는 아무것도 하지 않습니다.
func WithoutBackup() Option {
	return func(c *RangeConfig) {
		c.backupPath = ""
	}
}

// WithStrictDecoding은 Read/Set 에서 형식이 잘못된 dhcp-range 를 에러로 처리합니다
func WithStrictDecoding() Option {
	return func(c *RangeConfig) {
		c.strict = true
	}
}

// NewRangeConfig는 path 에 바인딩된 새로운 RangeConfig를 생성합니다
func NewRangeConfig(path string, fs interfaces.FileSystem, logger *logrus.Logger, opts ...Option) *RangeConfig {
	c := &RangeConfig{
		path:       path,
		backupPath: path + constants.BackupSuffix,
		scalars:    map[string]string{},
		fileSystem: fs,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ interfaces.RangeStore = (*RangeConfig)(nil)

// Path는 설정 파일 경로를 반환합니다
func (c *RangeConfig) Path() string { return c.path }

// BackupPath는 백업 파일 경로를 반환합니다. 백업이 비활성화되면 빈 문자열입니다.
func (c *RangeConfig) BackupPath() string { return c.backupPath }

// Read는 파일을 읽어 저장소 전체를 교체합니다. path 를 생략하면 생성 시 경로를 사용합니다.
func (c *RangeConfig) Read(path ...string) error {
	target := c.resolve(path)

	data, err := c.fileSystem.ReadFile(target)
	if err != nil {
		return errors.NewSystemError(fmt.Sprintf("설정 파일 읽기 실패: %s", target), err)
	}

	c.Clear()

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return errors.NewParseError(fmt.Sprintf("%s:%d: '=' 가 없는 줄입니다: %q", target, i+1, line), nil)
		}
		if key == "" || value == "" {
			continue
		}
		if err := c.Set(key, value); err != nil {
			return errors.NewParseError(fmt.Sprintf("%s:%d", target, i+1), err)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"path":   target,
		"ranges": len(c.ranges),
		"keys":   len(c.scalars),
	}).Debug("dnsmasq 범위 설정 읽기 완료")
	return nil
}

// Clear는 저장소를 빈 상태로 만듭니다
func (c *RangeConfig) Clear() {
	c.scalars = map[string]string{}
	c.ranges = nil
}

// Set은 키 하나를 설정합니다. dhcp-range 는 디코딩 후 목록 끝에 추가되며 빈 레코드는 무시됩니다.
// 같은 인터페이스의 기존 레코드를 대체하지 않습니다.
func (c *RangeConfig) Set(key, value string) error {
	key = strings.TrimSpace(key)
	if key != RangeKey {
		c.scalars[key] = value
		return nil
	}

	if c.strict {
		r, err := ParseRangeLine(value)
		if err != nil {
			return err
		}
		c.SetRange(r)
		return nil
	}
	c.SetRange(DecodeRangeLine(value))
	return nil
}

// SetRange는 레코드를 목록 끝에 추가합니다. 모든 필드가 빈 레코드는 추가하지 않습니다.
func (c *RangeConfig) SetRange(r entities.DHCPRange) {
	if r.IsZero() {
		return
	}
	c.ranges = append(c.ranges, r)
}

// Get은 스칼라 키의 값을 반환합니다
func (c *RangeConfig) Get(key string) (string, bool) {
	v, ok := c.scalars[key]
	return v, ok
}

// Keys는 스칼라 키 목록을 정렬하여 반환합니다
func (c *RangeConfig) Keys() []string {
	keys := make([]string, 0, len(c.scalars))
	for k := range c.scalars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ranges는 범위 레코드 목록의 복사본을 반환합니다
func (c *RangeConfig) Ranges() []entities.DHCPRange {
	out := make([]entities.DHCPRange, len(c.ranges))
	copy(out, c.ranges)
	return out
}

// Validate는 모든 범위 레코드의 필수 필드와 시작/끝 주소 순서를 검증합니다.
// 범위 목록이 비어 있으면 유효합니다.
func (c *RangeConfig) Validate() error {
	for _, r := range c.ranges {
		if err := ValidateRange(r); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRange는 레코드 하나의 필수 필드, 주소 형식, 시작/끝 순서를 검증합니다
func ValidateRange(r entities.DHCPRange) error {
	required := []struct {
		name  string
		value string
	}{
		{"interface", r.Interface},
		{"start", r.Start},
		{"end", r.End},
		{"lease_time", r.LeaseTime},
	}
	for _, field := range required {
		if field.value == "" {
			return errors.NewRangeError(fmt.Sprintf("Missing option : %s", field.name), ErrMissingOption)
		}
	}

	start, err := utils.IPv4ToUint32(r.Start)
	if err != nil {
		return errors.NewRangeError(fmt.Sprintf("%s: 잘못된 시작 주소 %q", r.Interface, r.Start), ErrInvalidAddress)
	}
	end, err := utils.IPv4ToUint32(r.End)
	if err != nil {
		return errors.NewRangeError(fmt.Sprintf("%s: 잘못된 끝 주소 %q", r.Interface, r.End), ErrInvalidAddress)
	}
	if end < start {
		return errors.NewRangeError(fmt.Sprintf("%s: %s > %s", r.Interface, r.Start, r.End), ErrRangeOrder)
	}
	return nil
}

// GetItfRange는 인터페이스의 첫 번째 범위 레코드를 찾습니다
func (c *RangeConfig) GetItfRange(name string) (entities.DHCPRange, bool) {
	if i := c.indexOf(name); i >= 0 {
		return c.ranges[i], true
	}
	return entities.DHCPRange{}, false
}

// RmItfRange는 인터페이스의 모든 범위 레코드를 제거하고 제거된 것이 있는지 반환합니다
func (c *RangeConfig) RmItfRange(name string) bool {
	kept := c.ranges[:0]
	for _, r := range c.ranges {
		if r.Interface != name {
			kept = append(kept, r)
		}
	}
	removed := len(kept) != len(c.ranges)
	c.ranges = kept
	return removed
}

// UpdateRange는 원하는 상태에 맞게 범위 목록을 조정합니다.
// AP 인터페이스(eth0 제외)는 레코드를 생성하거나 제자리에서 갱신하고, 그 외는 레코드를 제거합니다.
// 연결 타입이 없는 descriptor 는 아무것도 바꾸지 않습니다. 목록이 실제로 바뀐 경우에만 true 입니다.
func (c *RangeConfig) UpdateRange(desired entities.RangeDescriptor) bool {
	if !desired.HasConnType() {
		return false
	}

	if !desired.IsAccessPoint() || desired.Name == constants.ExcludedInterface {
		return c.RmItfRange(desired.Name)
	}

	next, idx := c.nextRange(desired)
	if idx < 0 {
		c.ranges = append(c.ranges, next)
		return true
	}
	if next == c.ranges[idx] {
		return false
	}
	c.ranges[idx] = next
	return true
}

// CheckRange는 UpdateRange 가 desired 로 만들 레코드를 미리 검증합니다.
// 레코드를 제거하거나 바꾸지 않는 descriptor 는 항상 nil 입니다.
func (c *RangeConfig) CheckRange(desired entities.RangeDescriptor) error {
	if !desired.HasConnType() || !desired.IsAccessPoint() || desired.Name == constants.ExcludedInterface {
		return nil
	}
	next, _ := c.nextRange(desired)
	return ValidateRange(next)
}

// nextRange는 기존 레코드(없으면 placeholder 경계)에 desired 의 경계를 덮어쓴 레코드와
// 기존 레코드의 위치를 반환합니다
func (c *RangeConfig) nextRange(desired entities.RangeDescriptor) (entities.DHCPRange, int) {
	idx := c.indexOf(desired.Name)
	next := entities.DHCPRange{
		Interface: desired.Name,
		Start:     constants.PlaceholderRangeStart,
		End:       constants.PlaceholderRangeEnd,
		LeaseTime: constants.DefaultLeaseTime,
	}
	if idx >= 0 {
		next = c.ranges[idx]
	}
	if desired.RangeIPStart != "" {
		next.Start = desired.RangeIPStart
	}
	if desired.RangeIPEnd != "" {
		next.End = desired.RangeIPEnd
	}
	return next, idx
}

// SetLeaseTime은 인터페이스 레코드의 lease 시간을 제자리에서 바꾸고 변경 여부를 반환합니다
func (c *RangeConfig) SetLeaseTime(name, lease string) bool {
	idx := c.indexOf(name)
	if idx < 0 || c.ranges[idx].LeaseTime == lease {
		return false
	}
	c.ranges[idx].LeaseTime = lease
	return true
}

// SetDefaults는 저장소를 기본 범위(wlan0, eth1)와 lease 파일 경로로 교체합니다
func (c *RangeConfig) SetDefaults() {
	c.scalars = map[string]string{
		"dhcp-leasefile": constants.DnsmasqLeaseFile,
	}
	c.ranges = []entities.DHCPRange{
		{Interface: "wlan0", Start: "10.1.10.11", End: "10.1.10.250", LeaseTime: constants.DefaultLeaseTime},
		{Interface: "eth1", Start: "10.1.20.10", End: "10.1.20.250", LeaseTime: constants.DefaultLeaseTime},
	}
}

// Render는 저장소를 설정 파일 내용으로 직렬화합니다.
// 스칼라 키는 이름순, 범위 레코드는 목록 순서를 따릅니다.
func (c *RangeConfig) Render() []byte {
	var b strings.Builder
	for _, key := range c.Keys() {
		fmt.Fprintf(&b, "%s=%s\n", key, strings.TrimSpace(c.scalars[key]))
	}
	for _, r := range c.ranges {
		b.WriteString(formatRangeLine(r))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Write는 검증, 백업, 원자적 쓰기 순서로 파일을 기록합니다.
// 검증에 실패하면 디스크를 건드리지 않습니다.
func (c *RangeConfig) Write(path ...string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	target := c.resolve(path)

	if err := c.Backup(); err != nil {
		return err
	}

	if err := c.fileSystem.WriteFileAtomic(target, c.Render(), constants.ConfigFilePermission); err != nil {
		return errors.NewSystemError(fmt.Sprintf("설정 파일 쓰기 실패: %s", target), err)
	}

	c.logger.WithFields(logrus.Fields{
		"path":   target,
		"ranges": len(c.ranges),
	}).Info("dnsmasq 범위 설정 저장 완료")
	return nil
}

// Backup은 설정 파일을 백업 경로로 복사합니다. 원본 파일이 아직 없으면 아무것도 하지 않습니다.
func (c *RangeConfig) Backup() error {
	if c.backupPath == "" {
		return nil
	}
	if !c.fileSystem.Exists(c.path) {
		c.logger.WithField("path", c.path).Debug("백업할 설정 파일이 없음")
		return nil
	}
	if err := c.fileSystem.CopyFile(c.path, c.backupPath); err != nil {
		return errors.NewSystemError("설정 파일 백업 실패", err)
	}
	return nil
}

// Restore는 백업 파일로 설정 파일을 되돌립니다
func (c *RangeConfig) Restore() error {
	if c.backupPath == "" {
		return nil
	}
	if err := c.fileSystem.CopyFile(c.backupPath, c.path); err != nil {
		return errors.NewSystemError("설정 파일 복원 실패", err)
	}
	c.logger.WithFields(logrus.Fields{
		"path":        c.path,
		"backup_path": c.backupPath,
	}).Info("dnsmasq 범위 설정 복원 완료")
	return nil
}

// Delete는 설정 파일을 삭제합니다
func (c *RangeConfig) Delete() error {
	if c.backupPath == "" {
		return nil
	}
	if err := c.fileSystem.Remove(c.path); err != nil {
		return errors.NewSystemError("설정 파일 삭제 실패", err)
	}
	return nil
}

func (c *RangeConfig) resolve(path []string) string {
	if len(path) > 0 && path[0] != "" {
		return path[0]
	}
	return c.path
}

func (c *RangeConfig) indexOf(name string) int {
	for i, r := range c.ranges {
		if r.Interface == name {
			return i
		}
	}
	return -1
}
