package errors

import "strconv"

// ErrorType 에러의 종류입니다.
type ErrorType int

const (
	// Unknown 분류되지 않은 에러
	Unknown ErrorType = iota

	// Internal 내부 로직 오류
	Internal

	// System 인프라 오류 (디스크, 네트워크 등)
	System

	// Unauthorized 인증 실패
	Unauthorized

	// Forbidden 접근 거부
	Forbidden

	// InvalidInput 잘못된 입력값
	InvalidInput

	// Conflict 상태 충돌
	Conflict

	// NotFound 대상을 찾을 수 없음
	NotFound

	// ExecutionFailed 작업 실행 실패
	ExecutionFailed

	// ParsingFailed 파싱 실패
	ParsingFailed

	// Timeout 시간 초과
	Timeout

	// Unavailable 일시적으로 사용 불가
	Unavailable
)

var errorTypeNames = [...]string{
	Unknown:         "Unknown",
	Internal:        "Internal",
	System:          "System",
	Unauthorized:    "Unauthorized",
	Forbidden:       "Forbidden",
	InvalidInput:    "InvalidInput",
	Conflict:        "Conflict",
	NotFound:        "NotFound",
	ExecutionFailed: "ExecutionFailed",
	ParsingFailed:   "ParsingFailed",
	Timeout:         "Timeout",
	Unavailable:     "Unavailable",
}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return "ErrorType(" + strconv.Itoa(int(t)) + ")"
	}
	return errorTypeNames[t]
}
