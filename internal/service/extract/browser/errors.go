package browser

import (
	"context"
	"errors"

	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
)

var errElementNotFound = errors.New("일치하는 요소가 없습니다")

// ErrPoolClosed 이미 종료된 Pool 에서 페이지를 요청했을 때 반환됩니다.
var ErrPoolClosed = apperrors.New(apperrors.Unavailable, "브라우저 풀이 종료되었습니다")

func newErrUnsupportedEngine(name string) error {
	return apperrors.Newf(apperrors.InvalidInput, "지원하지 않는 브라우저 엔진입니다 (engine=%s)", name)
}

func newErrLaunchFailed(engine string, err error) error {
	return apperrors.Wrapf(err, apperrors.Unavailable, "헤드리스 브라우저 실행에 실패했습니다 (engine=%s)", engine)
}

func newErrPoolAcquire(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.Timeout, "브라우저 슬롯 대기 중 시간이 초과되었습니다")
	}
	return apperrors.Wrap(err, apperrors.Unavailable, "브라우저 슬롯 대기가 취소되었습니다")
}

// wrapPageError 페이지 조작 실패를 분류합니다. ctx 가 만료된 경우 Timeout 으로 취급합니다.
func wrapPageError(ctx context.Context, err error, action string) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Wrapf(err, apperrors.Timeout, "브라우저 %s 중 시간이 초과되었습니다", action)
	}
	return apperrors.Wrapf(err, apperrors.ExecutionFailed, "브라우저 %s 에 실패했습니다", action)
}
