package entities

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"debinterface-agent/internal/domain/errors"
	"debinterface-agent/pkg/utils"

	"gopkg.in/yaml.v3"
)

// NetworkAdapter는 /etc/network/interfaces 의 인터페이스 하나(스탠자)를 나타내는 도메인 엔티티입니다.
// 인식되는 옵션은 스키마 규칙으로 검증된 뒤 저장되고, 그 외 옵션은 검증 없이 unknown 저장소에 보관됩니다.
type NetworkAdapter struct {
	attributes map[string]any
	unknown    map[string]any
}

// Option은 직렬화를 위해 인식 옵션과 unknown 옵션을 같은 형태로 표현합니다
type Option struct {
	Name    string
	Value   any
	Unknown bool
}

// renderOrder는 인식 옵션의 출력 순서입니다
var renderOrder = []string{
	OptName, OptAddrFam, OptSource, OptAuto, OptHotplug,
	OptAddress, OptNetmask, OptNetwork, OptBroadcast, OptGateway,
	OptDNSNameservers, OptHostapd, OptBridgeOpts,
	OptPreUp, OptUp, OptDown, OptPreDown, OptPostDown,
}

// NewNetworkAdapter는 이름(string) 또는 옵션 맵으로 새로운 NetworkAdapter를 생성합니다
func NewNetworkAdapter(options any) (*NetworkAdapter, error) {
	a := &NetworkAdapter{}
	a.Reset()
	if err := a.SetOptions(options); err != nil {
		return nil, err
	}
	return a, nil
}

// Reset은 속성 저장소를 기본 빈 상태로 초기화합니다
func (a *NetworkAdapter) Reset() {
	a.attributes = map[string]any{
		OptBridgeOpts: map[string]string{},
	}
	for _, opt := range CommandListOptions {
		a.attributes[opt] = []string{}
	}
	a.unknown = nil
}

// ValidateOne은 하나의 옵션 값을 규칙에 따라 검증합니다. 규칙이 nil이면 아무것도 하지 않습니다.
func (a *NetworkAdapter) ValidateOne(option string, rule *Rule, value any) error {
	if rule == nil {
		return nil
	}
	if isFalsy(value) {
		if rule.Required {
			return errors.NewValidationError(fmt.Sprintf("%s is a required option", option), nil)
		}
		return nil
	}

	switch rule.Type {
	case TypeIP:
		if err := validateIPValue(option, value); err != nil {
			return err
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return typeError(option, rule.Type)
		}
	case TypeList:
		if _, ok := value.([]string); !ok {
			return typeError(option, rule.Type)
		}
	case TypeMap:
		if _, ok := value.(map[string]string); !ok {
			return typeError(option, rule.Type)
		}
	}

	if len(rule.In) > 0 {
		s, ok := value.(string)
		if !ok || !contains(rule.In, s) {
			return errors.NewValidationError(
				fmt.Sprintf("%s should be in %s", option, strings.Join(rule.In, ", ")), nil)
		}
	}
	return nil
}

// ValidateAll은 스키마의 모든 옵션과 static/dhcp 교차 규칙을 검증합니다.
// 첫 번째 위반에서 바로 반환하며, 어댑터 상태는 변경하지 않습니다.
func (a *NetworkAdapter) ValidateAll() error {
	names := make([]string, 0, len(adapterSchema))
	for name := range adapterSchema {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := a.ValidateOne(name, lookupRule(name), a.attributes[name]); err != nil {
			return err
		}
	}

	source, _ := a.attributes[OptSource].(string)
	switch source {
	case "":
		return errors.NewLogicError("source must be set before validating address fields")
	case SourceStatic:
		for _, req := range []string{OptAddress, OptNetmask} {
			if isFalsy(a.attributes[req]) {
				return errors.NewLogicError(fmt.Sprintf("%s field is required for static interface", req))
			}
		}
	case SourceDHCP:
		for _, req := range []string{OptAddress, OptNetmask} {
			if !isFalsy(a.attributes[req]) {
				return errors.NewLogicError(fmt.Sprintf("%s field is forbidden for dhcp interface", req))
			}
		}
	}
	return nil
}

// setValidated는 규칙 검증 후에만 값을 저장합니다
func (a *NetworkAdapter) setValidated(option string, value any) error {
	if err := a.ValidateOne(option, lookupRule(option), value); err != nil {
		return err
	}
	a.attributes[option] = value
	return nil
}

// SetName은 인터페이스 이름을 설정합니다
func (a *NetworkAdapter) SetName(name string) error {
	return a.setValidated(OptName, name)
}

// SetAddrFam은 주소 체계(inet, inet6, ipx)를 설정합니다
func (a *NetworkAdapter) SetAddrFam(addressFamily string) error {
	return a.setValidated(OptAddrFam, addressFamily)
}

// SetAddressSource는 주소 방식(dhcp, static, loopback ...)을 설정합니다
func (a *NetworkAdapter) SetAddressSource(source string) error {
	return a.setValidated(OptSource, source)
}

// SetAddress는 IP 주소를 설정합니다
func (a *NetworkAdapter) SetAddress(ip string) error {
	return a.setValidated(OptAddress, ip)
}

// SetNetmask는 넷마스크를 설정합니다
func (a *NetworkAdapter) SetNetmask(netmask string) error {
	return a.setValidated(OptNetmask, netmask)
}

// SetGateway는 기본 게이트웨이를 설정합니다
func (a *NetworkAdapter) SetGateway(gateway string) error {
	return a.setValidated(OptGateway, gateway)
}

// SetBroadcast는 브로드캐스트 주소를 설정합니다
func (a *NetworkAdapter) SetBroadcast(broadcast string) error {
	return a.setValidated(OptBroadcast, broadcast)
}

// SetNetwork는 네트워크 주소를 설정합니다
func (a *NetworkAdapter) SetNetwork(network string) error {
	return a.setValidated(OptNetwork, network)
}

// SetAuto는 부팅 시 자동 활성화 여부를 설정합니다
func (a *NetworkAdapter) SetAuto(auto bool) error {
	return a.setValidated(OptAuto, auto)
}

// SetHotplug는 핫플러그 허용 여부를 설정합니다
func (a *NetworkAdapter) SetHotplug(hotplug bool) error {
	return a.setValidated(OptHotplug, hotplug)
}

// SetHostapd는 인터페이스의 hostapd 설정 파일 경로를 설정합니다
func (a *NetworkAdapter) SetHostapd(hostapd string) error {
	return a.setValidated(OptHostapd, hostapd)
}

// SetDNSNameservers는 DNS 네임서버를 설정합니다 (공백으로 구분된 여러 주소 허용)
func (a *NetworkAdapter) SetDNSNameservers(nameservers string) error {
	return a.setValidated(OptDNSNameservers, nameservers)
}

// SetBridgeOpts는 브리지 옵션 전체를 교체합니다.
// 파일에는 각 키가 bridge_ 접두사와 함께 기록됩니다.
func (a *NetworkAdapter) SetBridgeOpts(opts map[string]string) error {
	return a.setBridgeOptsValue(opts)
}

func (a *NetworkAdapter) setBridgeOptsValue(value any) error {
	if err := a.ValidateOne(OptBridgeOpts, lookupRule(OptBridgeOpts), value); err != nil {
		return err
	}
	opts := map[string]string{}
	if m, ok := value.(map[string]string); ok {
		for k, v := range m {
			opts[k] = v
		}
	}
	a.attributes[OptBridgeOpts] = opts
	return nil
}

// ReplaceBridgeOpt는 브리지 옵션 하나를 덮어씁니다
func (a *NetworkAdapter) ReplaceBridgeOpt(key, value string) {
	a.attributes[OptBridgeOpts].(map[string]string)[key] = value
}

// AppendBridgeOpt는 기존 브리지 옵션 값 뒤에 value를 이어 붙입니다
func (a *NetworkAdapter) AppendBridgeOpt(key, value string) {
	opts := a.attributes[OptBridgeOpts].(map[string]string)
	if existing, ok := opts[key]; ok {
		value = existing + value
	}
	a.ReplaceBridgeOpt(key, value)
}

// SetUp은 up 명령 목록을 교체합니다
func (a *NetworkAdapter) SetUp(cmds []string) { a.setCommands(OptUp, cmds) }

// AppendUp은 up 명령을 추가합니다
func (a *NetworkAdapter) AppendUp(cmds ...string) { a.appendCommands(OptUp, cmds...) }

// SetDown은 down 명령 목록을 교체합니다
func (a *NetworkAdapter) SetDown(cmds []string) { a.setCommands(OptDown, cmds) }

// AppendDown은 down 명령을 추가합니다
func (a *NetworkAdapter) AppendDown(cmds ...string) { a.appendCommands(OptDown, cmds...) }

// SetPreUp은 pre-up 명령 목록을 교체합니다
func (a *NetworkAdapter) SetPreUp(cmds []string) { a.setCommands(OptPreUp, cmds) }

// AppendPreUp은 pre-up 명령을 추가합니다
func (a *NetworkAdapter) AppendPreUp(cmds ...string) { a.appendCommands(OptPreUp, cmds...) }

// SetPreDown은 pre-down 명령 목록을 교체합니다
func (a *NetworkAdapter) SetPreDown(cmds []string) { a.setCommands(OptPreDown, cmds) }

// AppendPreDown은 pre-down 명령을 추가합니다
func (a *NetworkAdapter) AppendPreDown(cmds ...string) { a.appendCommands(OptPreDown, cmds...) }

// SetPostDown은 post-down 명령 목록을 교체합니다
func (a *NetworkAdapter) SetPostDown(cmds []string) { a.setCommands(OptPostDown, cmds) }

// AppendPostDown은 post-down 명령을 추가합니다
func (a *NetworkAdapter) AppendPostDown(cmds ...string) { a.appendCommands(OptPostDown, cmds...) }

func (a *NetworkAdapter) setCommands(option string, cmds []string) {
	list := make([]string, len(cmds))
	copy(list, cmds)
	a.attributes[option] = list
}

// setCommandValue는 동적 값을 명령 목록으로 변환해 저장합니다. 스칼라는 단일 원소 목록이 됩니다.
func (a *NetworkAdapter) setCommandValue(option string, value any) {
	switch v := normalize(value).(type) {
	case nil:
		a.setCommands(option, nil)
	case []string:
		a.setCommands(option, v)
	case string:
		a.setCommands(option, []string{v})
	default:
		a.setCommands(option, []string{fmt.Sprint(v)})
	}
}

// appendCommands는 저장된 값을 목록으로 보장한 뒤 명령들을 펼쳐서 추가합니다
func (a *NetworkAdapter) appendCommands(option string, cmds ...string) {
	var list []string
	switch current := a.attributes[option].(type) {
	case []string:
		list = current
	case string:
		list = []string{current}
	case nil:
		list = []string{}
	default:
		list = []string{fmt.Sprint(current)}
	}
	a.attributes[option] = append(list, cmds...)
}

// SetUnknown은 스키마에 없는 옵션을 검증 없이 원래 이름 그대로 보관합니다
func (a *NetworkAdapter) SetUnknown(key string, value any) {
	if a.unknown == nil {
		a.unknown = map[string]any{}
	}
	a.unknown[key] = value
}

// SetOptions는 옵션을 일괄 설정합니다.
// string이면 이름만 설정하고, 맵이면 키별로 해당 setter를 호출합니다.
// 맵 처리 중 하나라도 실패하면 어댑터 전체를 기본 상태로 되돌린 뒤 에러를 반환합니다.
func (a *NetworkAdapter) SetOptions(options any) error {
	switch opts := options.(type) {
	case string:
		return a.SetName(opts)
	case map[string]string:
		converted := make(map[string]any, len(opts))
		for k, v := range opts {
			converted[k] = v
		}
		return a.applyOptions(converted)
	case map[string]any:
		return a.applyOptions(opts)
	default:
		return errors.NewArgumentError(
			fmt.Sprintf("no arguments given, provide a name or an options map (got %T)", options))
	}
}

func (a *NetworkAdapter) applyOptions(options map[string]any) error {
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := a.applyOption(key, options[key]); err != nil {
			a.Reset()
			return err
		}
	}
	return nil
}

func (a *NetworkAdapter) applyOption(key string, value any) error {
	switch key {
	case OptName:
		switch v := value.(type) {
		case string:
			return a.SetName(v)
		case nil:
			return a.SetName("")
		default:
			return a.SetName(fmt.Sprint(v))
		}
	case OptAddrFam, OptSource, OptAddress, OptNetmask, OptGateway, OptBroadcast,
		OptNetwork, OptHostapd, OptDNSNameservers, OptAuto:
		return a.setValidated(key, normalize(value))
	case "allow-hotplug", OptHotplug:
		return a.setValidated(OptHotplug, value)
	case "bridgeOpts", OptBridgeOpts:
		return a.setBridgeOptsValue(normalize(value))
	case OptUp, OptDown, OptPreUp, OptPreDown, OptPostDown:
		a.setCommandValue(key, value)
		return nil
	default:
		a.SetUnknown(key, value)
		return nil
	}
}

// Export는 속성 맵의 복사본을 반환합니다.
// keys가 주어지면 해당 키만 담고, 없는 키는 nil로 채웁니다.
func (a *NetworkAdapter) Export(keys ...string) map[string]any {
	if len(keys) == 0 {
		out := make(map[string]any, len(a.attributes)+1)
		for k, v := range a.attributes {
			out[k] = copyValue(v)
		}
		if a.unknown != nil {
			out[OptUnknown] = a.Unknown()
		}
		return out
	}

	out := make(map[string]any, len(keys))
	for _, key := range keys {
		if key == OptUnknown {
			if a.unknown != nil {
				out[key] = a.Unknown()
			} else {
				out[key] = nil
			}
			continue
		}
		out[key] = copyValue(a.attributes[key])
	}
	return out
}

// Attributes는 전체 속성 맵의 복사본을 반환합니다
func (a *NetworkAdapter) Attributes() map[string]any {
	return a.Export()
}

// GetAttr은 인식 옵션 값을 반환합니다
func (a *NetworkAdapter) GetAttr(name string) (any, bool) {
	v, ok := a.attributes[name]
	return copyValue(v), ok
}

// Name은 인터페이스 이름을 반환합니다
func (a *NetworkAdapter) Name() string { return a.stringAttr(OptName) }

// AddrFam은 주소 체계를 반환합니다
func (a *NetworkAdapter) AddrFam() string { return a.stringAttr(OptAddrFam) }

// Source는 주소 방식을 반환합니다
func (a *NetworkAdapter) Source() string { return a.stringAttr(OptSource) }

// Address는 IP 주소를 반환합니다
func (a *NetworkAdapter) Address() string { return a.stringAttr(OptAddress) }

// Netmask는 넷마스크를 반환합니다
func (a *NetworkAdapter) Netmask() string { return a.stringAttr(OptNetmask) }

// Auto는 자동 활성화 여부를 반환합니다
func (a *NetworkAdapter) Auto() bool { return a.boolAttr(OptAuto) }

// Hotplug는 핫플러그 허용 여부를 반환합니다
func (a *NetworkAdapter) Hotplug() bool { return a.boolAttr(OptHotplug) }

// BridgeOpts는 브리지 옵션의 복사본을 반환합니다
func (a *NetworkAdapter) BridgeOpts() map[string]string {
	opts, _ := copyValue(a.attributes[OptBridgeOpts]).(map[string]string)
	return opts
}

// Commands는 명령 목록 옵션(up, down ...)의 복사본을 반환합니다
func (a *NetworkAdapter) Commands(option string) []string {
	cmds, _ := copyValue(a.attributes[option]).([]string)
	return cmds
}

// Unknown은 unknown 옵션의 복사본을 반환합니다
func (a *NetworkAdapter) Unknown() map[string]any {
	out := make(map[string]any, len(a.unknown))
	for k, v := range a.unknown {
		out[k] = v
	}
	return out
}

// Options는 인식 옵션(고정 순서)과 unknown 옵션(이름순)을 하나의 목록으로 반환합니다
func (a *NetworkAdapter) Options() []Option {
	options := make([]Option, 0, len(a.attributes)+len(a.unknown))
	for _, name := range renderOrder {
		if v, ok := a.attributes[name]; ok {
			options = append(options, Option{Name: name, Value: copyValue(v)})
		}
	}

	names := make([]string, 0, len(a.unknown))
	for name := range a.unknown {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		options = append(options, Option{Name: name, Value: a.unknown[name], Unknown: true})
	}
	return options
}

// MarshalYAML은 어댑터를 속성 맵으로 직렬화합니다
func (a *NetworkAdapter) MarshalYAML() (interface{}, error) {
	return a.Export(), nil
}

// Display는 사람이 읽을 수 있는 YAML 형태로 어댑터를 출력합니다
func (a *NetworkAdapter) Display(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a.Export()); err != nil {
		return errors.NewSystemError("어댑터 YAML 출력 실패", err)
	}
	return enc.Close()
}

func (a *NetworkAdapter) stringAttr(name string) string {
	s, _ := a.attributes[name].(string)
	return s
}

func (a *NetworkAdapter) boolAttr(name string) bool {
	b, _ := a.attributes[name].(bool)
	return b
}

// validateIPValue는 IP 타입 옵션을 검증합니다. dns-nameservers 만 여러 주소를 허용합니다.
func validateIPValue(option string, value any) error {
	s, ok := value.(string)
	if !ok {
		return errors.NewValidationError(fmt.Sprintf("%s should be a valid IP (got : %v)", option, value), nil)
	}

	addresses := []string{s}
	if option == OptDNSNameservers {
		addresses = strings.Fields(s)
	}
	for _, addr := range addresses {
		if err := utils.ValidateDottedIP(addr); err != nil {
			return errors.NewValidationError(fmt.Sprintf("%s should be a valid IP (got : %s)", option, s), err)
		}
	}
	return nil
}

func typeError(option string, t ValueType) error {
	return errors.NewValidationError(fmt.Sprintf("%s should be %s", option, t), nil)
}

// isFalsy는 nil, 빈 문자열, false, 0, 빈 목록/맵을 참으로 판단합니다
func isFalsy(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// normalize는 []any / map[string]any 의 원소가 모두 문자열이면 []string / map[string]string 으로 바꿉니다
func normalize(value any) any {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return value
			}
			out = append(out, s)
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, item := range v {
			s, ok := item.(string)
			if !ok {
				return value
			}
			out[k] = s
		}
		return out
	}
	return value
}

func copyValue(value any) any {
	switch v := value.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, item := range v {
			out[k] = item
		}
		return out
	}
	return value
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
