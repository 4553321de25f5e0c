package coupang

import (
	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
)

// ErrCredentialsMissing Open API 키가 설정되지 않아 공식 API 를 호출하지 않았습니다.
var ErrCredentialsMissing = apperrors.New(apperrors.Unavailable, "쿠팡 Open API 키가 설정되지 않았습니다")

func newErrAPIRejected(code, message string) error {
	return apperrors.Newf(apperrors.ExecutionFailed, "쿠팡 Open API 가 요청을 거부했습니다 (rCode=%s, rMessage=%s)", code, message)
}
