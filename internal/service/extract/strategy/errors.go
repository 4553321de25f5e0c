package strategy

import (
	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
)

var (
	// ErrStateNotFound 페이지에서 알려진 전역 상태 스크립트를 찾지 못했습니다.
	ErrStateNotFound = apperrors.New(apperrors.NotFound, "페이지에서 내장된 상태 JSON 을 찾지 못했습니다")

	// ErrNoProductData 상품명과 가격을 모두 찾지 못했습니다.
	ErrNoProductData = apperrors.New(apperrors.NotFound, "상품명과 가격을 찾지 못했습니다")
)

func newErrInvalidState(marker string) error {
	return apperrors.Newf(apperrors.ParsingFailed, "내장된 상태 JSON 형식이 올바르지 않습니다 (marker=%s)", marker)
}
