package resolver

import (
	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
)

func newErrChannelIDNotFound(productID string) error {
	return apperrors.Newf(apperrors.NotFound, "channelId 를 찾지 못했습니다 (productId=%s). debug.attempts 에서 시도 내역을 확인하세요", productID)
}
