package naver

import (
	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
)

// ErrChannelIDRequired channelId 를 알지 못해 내부 API 를 호출할 수 없습니다.
var ErrChannelIDRequired = apperrors.New(apperrors.NotFound, "channelId 가 없어 내부 API 를 호출할 수 없습니다")

func newErrDecodeFailed(path string, err error) error {
	return apperrors.Wrapf(err, apperrors.ParsingFailed, "내부 API 응답 항목을 해석하지 못했습니다 (path=%s)", path)
}
