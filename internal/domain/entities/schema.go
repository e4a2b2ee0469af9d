package entities

// ValueType은 옵션 값이 가져야 하는 의미적 타입입니다
type ValueType int

const (
	// TypeAny는 타입 제약이 없음을 나타냅니다
	TypeAny ValueType = iota
	TypeBool
	TypeList
	TypeMap
	// TypeIP는 점 표기 IPv4 주소 문자열을 나타냅니다
	TypeIP
)

// String은 에러 메시지에 쓰이는 타입 이름을 반환합니다
func (t ValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeList:
		return "list"
	case TypeMap:
		return "map"
	case TypeIP:
		return "IP"
	default:
		return "any"
	}
}

// Rule은 하나의 옵션에 대한 선언적 검증 규칙입니다.
// Required, Type, In 중 필요한 것만 조합해서 사용합니다.
type Rule struct {
	Required bool
	Type     ValueType
	In       []string
}

// Schema는 옵션 이름에서 검증 규칙으로의 매핑입니다
type Schema map[string]Rule

// 옵션 이름 상수들
const (
	OptHotplug        = "hotplug"
	OptAuto           = "auto"
	OptName           = "name"
	OptAddress        = "address"
	OptNetmask        = "netmask"
	OptNetwork        = "network"
	OptBroadcast      = "broadcast"
	OptGateway        = "gateway"
	OptBridgeOpts     = "bridge-opts"
	OptDNSNameservers = "dns-nameservers"
	OptAddrFam        = "addrFam"
	OptSource         = "source"
	OptHostapd        = "hostapd"
	OptUp             = "up"
	OptDown           = "down"
	OptPreUp          = "pre-up"
	OptPreDown        = "pre-down"
	OptPostDown       = "post-down"
	OptUnknown        = "unknown"
)

// 주소 방식(source) 값
const (
	SourceDHCP   = "dhcp"
	SourceStatic = "static"
)

var (
	// AddressFamilies는 허용되는 주소 체계 목록입니다
	AddressFamilies = []string{"inet", "inet6", "ipx"}

	// AddressSources는 허용되는 주소 방식 목록입니다
	AddressSources = []string{
		"dhcp", "static", "loopback", "manual", "bootp",
		"ppp", "wvdial", "dynamic", "ipv4ll", "v4tunnel",
	}

	// CommandListOptions는 셸 명령 목록을 담는 옵션들입니다
	CommandListOptions = []string{OptUp, OptDown, OptPreUp, OptPreDown, OptPostDown}
)

// adapterSchema는 패키지 초기화 시 한 번만 생성되며 외부에는 복사본만 노출됩니다
var adapterSchema = newAdapterSchema()

func newAdapterSchema() Schema {
	return Schema{
		OptHotplug:        {Type: TypeBool},
		OptAuto:           {Type: TypeBool},
		OptName:           {Required: true},
		OptAddress:        {Type: TypeIP},
		OptNetmask:        {Type: TypeIP},
		OptNetwork:        {Type: TypeIP},
		OptBroadcast:      {Type: TypeIP},
		OptGateway:        {Type: TypeIP},
		OptBridgeOpts:     {Type: TypeMap},
		OptDNSNameservers: {Type: TypeIP},
		OptAddrFam:        {In: AddressFamilies},
		OptSource:         {In: AddressSources},
		OptHostapd:        {},
		OptUp:             {Type: TypeList},
		OptDown:           {Type: TypeList},
		OptPreUp:          {Type: TypeList},
		OptPreDown:        {Type: TypeList},
		OptPostDown:       {Type: TypeList},
	}
}

// AdapterSchema는 어댑터 검증 스키마의 복사본을 반환합니다
func AdapterSchema() Schema {
	out := make(Schema, len(adapterSchema))
	for name, rule := range adapterSchema {
		in := make([]string, len(rule.In))
		copy(in, rule.In)
		if rule.In == nil {
			in = nil
		}
		out[name] = Rule{Required: rule.Required, Type: rule.Type, In: in}
	}
	return out
}

// lookupRule은 옵션의 규칙을 반환합니다. 스키마에 없으면 nil입니다.
func lookupRule(option string) *Rule {
	rule, ok := adapterSchema[option]
	if !ok {
		return nil
	}
	return &rule
}
