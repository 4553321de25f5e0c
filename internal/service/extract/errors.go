package extract

import (
	"context"
	"errors"
	"net"

	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
)

// 사용자에게 그대로 보여주는 메시지
const (
	MessageTimeout      = "요청 시간이 초과되었습니다. 잠시 후 다시 시도해주세요."
	MessageNetwork      = "네트워크 연결에 문제가 있습니다. 인터넷 연결을 확인해주세요."
	MessageAllFailed    = "상품 정보를 추출하지 못했습니다."
	MessageInternalFail = "요청을 처리하는 중 예기치 않은 오류가 발생했습니다."
)

func newErrStrategyPanic(name string, v any) error {
	return apperrors.Newf(apperrors.Internal, "추출 전략(%s) 실행 중 패닉이 발생했습니다: %v", name, v)
}

// classifyFailure 모든 전략이 실패했을 때 마지막까지 모인 에러로 응답 분류와 메시지를 정합니다.
// 하나라도 시간 초과가 있으면 시간 초과로, 그 다음은 네트워크 장애로 봅니다.
func classifyFailure(ctx context.Context, errs []error) (Kind, string) {
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return KindUpstreamTimeout, MessageTimeout
	}

	for _, err := range errs {
		if apperrors.Is(err, apperrors.Timeout) || errors.Is(err, context.DeadlineExceeded) {
			return KindUpstreamTimeout, MessageTimeout
		}
	}
	for _, err := range errs {
		if isNetworkError(err) {
			return KindUpstreamFailed, MessageNetwork
		}
	}
	return KindUpstreamFailed, MessageAllFailed
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// userMessage AppError 의 가장 바깥 메시지를 반환합니다. 원인 에러 내용은 debug.errors 에만 남깁니다.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message()
	}
	return err.Error()
}
