package adapters

import (
	"time"

	"debinterface-agent/internal/domain/interfaces"
)

// RealClock은 실제 시스템 시간을 사용하는 Clock 구현체입니다
type RealClock struct{}

// NewRealClock은 새로운 RealClock을 생성합니다
func NewRealClock() interfaces.Clock {
	return &RealClock{}
}

// Now는 현재 시간을 반환합니다
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock은 항상 같은 시간을 반환합니다. 백업 파일 이름처럼 시간에 의존하는 출력을 고정할 때 사용합니다.
type FixedClock struct {
	At time.Time
}

// Now는 고정된 시간을 반환합니다
func (c FixedClock) Now() time.Time {
	return c.At
}
