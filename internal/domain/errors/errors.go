package errors

import (
	"errors"
	"fmt"
)

// ErrorType은 에러의 종류를 나타냅니다
type ErrorType string

const (
	// ErrorTypeValidation은 스키마 기반 옵션 검증 실패를 나타냅니다
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeLogic은 옵션 간 교차 검증 실패를 나타냅니다 (static/dhcp 주소 필드 불일치 등)
	ErrorTypeLogic ErrorType = "LOGIC"

	// ErrorTypeRange는 DHCP 범위 레코드 검증 실패를 나타냅니다
	ErrorTypeRange ErrorType = "RANGE"

	// ErrorTypeParse는 설정 파일 파싱 실패를 나타냅니다
	ErrorTypeParse ErrorType = "PARSE"

	// ErrorTypeArgument는 잘못된 인자 타입을 나타냅니다
	ErrorTypeArgument ErrorType = "ARGUMENT"

	// ErrorTypeNotFound는 리소스를 찾을 수 없음을 나타냅니다
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeSystem은 시스템 레벨 에러를 나타냅니다
	ErrorTypeSystem ErrorType = "SYSTEM"

	// ErrorTypeTimeout은 타임아웃 에러를 나타냅니다
	ErrorTypeTimeout ErrorType = "TIMEOUT"
)

// DomainError는 도메인 레벨의 에러를 나타냅니다
type DomainError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error는 error 인터페이스를 구현합니다
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap은 내부 에러를 반환합니다
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is는 에러 비교를 위한 메서드입니다
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// 생성자 함수들

// NewValidationError는 유효성 검증 에러를 생성합니다
func NewValidationError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeValidation,
		Message: message,
		Cause:   cause,
	}
}

// NewLogicError는 교차 필드 검증 에러를 생성합니다
func NewLogicError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeLogic,
		Message: message,
	}
}

// NewRangeError는 DHCP 범위 에러를 생성합니다
func NewRangeError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeRange,
		Message: message,
		Cause:   cause,
	}
}

// NewParseError는 파싱 에러를 생성합니다
func NewParseError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeParse,
		Message: message,
		Cause:   cause,
	}
}

// NewArgumentError는 잘못된 인자 에러를 생성합니다
func NewArgumentError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeArgument,
		Message: message,
	}
}

// NewNotFoundError는 리소스를 찾을 수 없는 에러를 생성합니다
func NewNotFoundError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewSystemError는 시스템 에러를 생성합니다
func NewSystemError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeSystem,
		Message: message,
		Cause:   cause,
	}
}

// NewTimeoutError는 타임아웃 에러를 생성합니다
func NewTimeoutError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeTimeout,
		Message: message,
	}
}

// 에러 타입 확인 헬퍼 함수들

func hasType(err error, errType ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == errType
	}
	return false
}

// IsValidationError는 유효성 검증 에러인지 확인합니다
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsLogicError는 교차 필드 검증 에러인지 확인합니다
func IsLogicError(err error) bool {
	return hasType(err, ErrorTypeLogic)
}

// IsRangeError는 DHCP 범위 에러인지 확인합니다
func IsRangeError(err error) bool {
	return hasType(err, ErrorTypeRange)
}

// IsParseError는 파싱 에러인지 확인합니다
func IsParseError(err error) bool {
	return hasType(err, ErrorTypeParse)
}

// IsArgumentError는 잘못된 인자 에러인지 확인합니다
func IsArgumentError(err error) bool {
	return hasType(err, ErrorTypeArgument)
}

// IsNotFoundError는 리소스를 찾을 수 없는 에러인지 확인합니다
func IsNotFoundError(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsSystemError는 시스템 에러인지 확인합니다
func IsSystemError(err error) bool {
	return hasType(err, ErrorTypeSystem)
}

// IsTimeoutError는 타임아웃 에러인지 확인합니다
func IsTimeoutError(err error) bool {
	return hasType(err, ErrorTypeTimeout)
}
