// Package errors 상품 추출 서비스 전반에서 사용하는 타입 기반 에러를 제공합니다.
//
// 모든 에러는 ErrorType으로 분류되며, Wrap 계열 함수로 원인 에러를 보존한 채
// 문맥을 덧붙일 수 있습니다. API 경계에서는 UnderlyingType으로 근본 분류를 얻어
// HTTP 상태 코드를 결정합니다.
//
//	err := errors.New(errors.InvalidInput, "URL이 필요합니다.")
//
//	if err != nil {
//	    return errors.Wrap(err, errors.ExecutionFailed, "채널 식별자 조회에 실패했습니다")
//	}
//
//	if errors.Is(err, errors.Timeout) {
//	    // 504 로 응답
//	}
//
// ErrorType 선택 기준:
//   - InvalidInput: 요청 URL 누락, 지원하지 않는 쇼핑몰 등 사용자 입력 오류
//   - NotFound: 상품 식별자, 채널 식별자 등을 찾지 못함
//   - Unauthorized, Forbidden: 업스트림이 401/403 으로 응답함 (세션 쿠키 만료 등)
//   - ExecutionFailed: 추출 전략 실행 실패, 외부 API 호출 실패
//   - ParsingFailed: HTML/JSON 구조가 예상과 다름
//   - Timeout: 업스트림 요청 또는 브라우저 조작 시간 초과
//   - Unavailable: 업스트림 5xx/429, 브라우저 풀 포화
//   - System: 파일/네트워크 등 인프라 수준의 장애
//   - Internal: 버그로 간주되는 내부 상태 오류
package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// AppError 애플리케이션 에러의 표준 표현입니다.
type AppError struct {
	errType ErrorType
	message string
	cause   error
	stack   []StackFrame
}

// Type 에러의 타입을 반환합니다.
func (e *AppError) Type() ErrorType {
	return e.errType
}

// Message 원인 에러를 제외한 이 계층의 메시지를 반환합니다.
func (e *AppError) Message() string {
	return e.message
}

// Stack 에러 생성 시점의 호출 스택을 반환합니다.
func (e *AppError) Stack() []StackFrame {
	return e.stack
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.errType, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.errType, e.message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Format fmt.Formatter 구현입니다. %+v 는 체인과 스택 트레이스를 함께 출력합니다.
func (e *AppError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "[%s] %s", e.errType, e.message)

			// 스택은 체인의 끝(원인이 없거나 원인이 AppError 가 아닌 경우)에서만 출력합니다.
			var inner *AppError
			if (e.cause == nil || !errors.As(e.cause, &inner)) && len(e.stack) > 0 {
				fmt.Fprint(s, "\nStack trace:")
				for _, frame := range e.stack {
					fn := frame.Function
					if idx := strings.LastIndex(fn, "/"); idx != -1 {
						fn = fn[idx+1:]
					}
					fmt.Fprintf(s, "\n\t%s:%d %s", frame.File, frame.Line, fn)
				}
			}

			if e.cause != nil {
				fmt.Fprint(s, "\nCaused by:\n")
				if f, ok := e.cause.(fmt.Formatter); ok {
					f.Format(s, verb)
				} else {
					fmt.Fprintf(s, "\t%v", e.cause)
				}
			}
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// New 새로운 에러를 생성합니다.
func New(errType ErrorType, message string) error {
	return &AppError{errType: errType, message: message, stack: captureStack(defaultCallerSkip)}
}

// Newf 포맷 문자열로 새로운 에러를 생성합니다.
func Newf(errType ErrorType, format string, args ...any) error {
	return &AppError{errType: errType, message: fmt.Sprintf(format, args...), stack: captureStack(defaultCallerSkip)}
}

// Wrap 원인 에러를 감싼 새 에러를 생성합니다. err 가 nil 이면 nil 을 반환합니다.
func Wrap(err error, errType ErrorType, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{errType: errType, message: message, cause: err, stack: captureStack(defaultCallerSkip)}
}

// Wrapf 포맷 문자열을 사용하는 Wrap 입니다.
func Wrapf(err error, errType ErrorType, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &AppError{errType: errType, message: fmt.Sprintf(format, args...), cause: err, stack: captureStack(defaultCallerSkip)}
}

// Is 에러 체인에 errType 의 AppError 가 하나라도 있는지 확인합니다.
func Is(err error, errType ErrorType) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.errType == errType {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// As 표준 errors.As 의 별칭입니다.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// RootCause 체인의 가장 안쪽 에러를 반환합니다.
func RootCause(err error) error {
	if err == nil {
		return nil
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// UnderlyingType 체인에서 가장 안쪽에 있는 AppError 의 타입을 반환합니다.
//
// 업스트림 타임아웃을 Wrap(…, ExecutionFailed, …) 로 여러 번 감싸더라도
// 응답 코드를 정할 때는 원래의 Timeout 분류가 필요하기 때문에 사용합니다.
// 체인에 AppError 가 없으면 Unknown 을 반환합니다.
func UnderlyingType(err error) ErrorType {
	last := Unknown
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			last = appErr.errType
		}
		err = errors.Unwrap(err)
	}
	return last
}
