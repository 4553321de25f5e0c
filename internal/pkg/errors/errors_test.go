package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		errType ErrorType
		message string
		want    string
	}{
		{"입력 오류", InvalidInput, "URL이 필요합니다.", "[InvalidInput] URL이 필요합니다."},
		{"시간 초과", Timeout, "요청 시간이 초과되었습니다", "[Timeout] 요청 시간이 초과되었습니다"},
		{"빈 메시지", Internal, "", "[Internal] "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := New(tt.errType, tt.message)

			var appErr *AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.errType, appErr.Type())
			assert.Equal(t, tt.message, appErr.Message())
			assert.Equal(t, tt.want, err.Error())
			assert.NotEmpty(t, appErr.Stack())
		})
	}
}

func TestNewf(t *testing.T) {
	t.Parallel()

	err := Newf(NotFound, "상품 식별자를 찾을 수 없습니다: %s", "/vp/items/1")
	assert.Equal(t, "[NotFound] 상품 식별자를 찾을 수 없습니다: /vp/items/1", err.Error())
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("원인 에러 보존", func(t *testing.T) {
		t.Parallel()

		err := Wrap(context.DeadlineExceeded, Timeout, "내부 API 호출 시간 초과")
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.Equal(t, "[Timeout] 내부 API 호출 시간 초과: context deadline exceeded", err.Error())
	})

	t.Run("nil 에러는 nil 반환", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, Wrap(nil, Internal, "무시"))
		assert.Nil(t, Wrapf(nil, Internal, "무시 %d", 1))
	})

	t.Run("Wrapf 포맷", func(t *testing.T) {
		t.Parallel()

		err := Wrapf(errors.New("boom"), ExecutionFailed, "전략(%s) 실행 실패", "json")
		assert.Equal(t, "[ExecutionFailed] 전략(json) 실행 실패: boom", err.Error())
	})
}

func TestIs(t *testing.T) {
	t.Parallel()

	err := Wrap(New(Unauthorized, "쿠키 만료"), ExecutionFailed, "채널 조회 실패")

	assert.True(t, Is(err, Unauthorized))
	assert.True(t, Is(err, ExecutionFailed))
	assert.False(t, Is(err, Timeout))
	assert.False(t, Is(nil, Timeout))
	assert.False(t, Is(errors.New("plain"), Unknown))
}

func TestAs(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", New(NotFound, "없음"))

	var appErr *AppError
	require.True(t, As(err, &appErr))
	assert.Equal(t, NotFound, appErr.Type())
}

func TestRootCause(t *testing.T) {
	t.Parallel()

	root := errors.New("connection reset by peer")
	err := Wrap(Wrap(root, System, "네트워크 오류"), ExecutionFailed, "정적 HTML 수집 실패")

	assert.Same(t, root, RootCause(err))
	assert.Nil(t, RootCause(nil))
}

func TestUnderlyingType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, Unknown},
		{"표준 에러", errors.New("x"), Unknown},
		{"단일", New(Timeout, "t"), Timeout},
		{"다중 래핑", Wrap(Wrap(New(Timeout, "t"), ExecutionFailed, "a"), Internal, "b"), Timeout},
		{"외부 에러 래핑", Wrap(context.Canceled, Unavailable, "취소"), Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, UnderlyingType(tt.err))
		})
	}
}

func TestAppError_Format(t *testing.T) {
	t.Parallel()

	err := Wrap(errors.New("eof"), ParsingFailed, "JSON 파싱 실패")

	assert.Equal(t, err.Error(), fmt.Sprintf("%s", err))
	assert.Equal(t, err.Error(), fmt.Sprintf("%v", err))
	assert.Equal(t, fmt.Sprintf("%q", err.Error()), fmt.Sprintf("%q", err))

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "[ParsingFailed] JSON 파싱 실패")
	assert.Contains(t, detailed, "Stack trace:")
	assert.Contains(t, detailed, "errors_test.go")
	assert.Contains(t, detailed, "Caused by:")
	assert.Contains(t, detailed, "eof")
}

func TestAppError_FormatChainPrintsStackOnce(t *testing.T) {
	t.Parallel()

	err := Wrap(New(NotFound, "inner"), Internal, "outer")

	detailed := fmt.Sprintf("%+v", err)
	assert.Equal(t, 1, strings.Count(detailed, "Stack trace:"))
}

func TestErrorType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Unknown", Unknown.String())
	assert.Equal(t, "InvalidInput", InvalidInput.String())
	assert.Equal(t, "Unavailable", Unavailable.String())
	assert.Equal(t, "ErrorType(99)", ErrorType(99).String())
	assert.Equal(t, "ErrorType(-1)", ErrorType(-1).String())
}

func TestCaptureStack_FirstFrameIsCaller(t *testing.T) {
	t.Parallel()

	err := New(Internal, "here")

	var appErr *AppError
	require.True(t, As(err, &appErr))
	require.NotEmpty(t, appErr.Stack())
	assert.Equal(t, "errors_test.go", appErr.Stack()[0].File)
	assert.Contains(t, appErr.Stack()[0].Function, "TestCaptureStack_FirstFrameIsCaller")
	assert.LessOrEqual(t, len(appErr.Stack()), maxStackFrames)
}
