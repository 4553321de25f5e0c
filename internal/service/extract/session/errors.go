package session

import (
	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
)

// ErrNoCookieHarvested 스토어 방문 후에도 쿠키를 얻지 못했을 때 반환됩니다.
var ErrNoCookieHarvested = apperrors.New(apperrors.ExecutionFailed, "스토어 방문 후 수집된 쿠키가 없습니다")

func newErrRefreshFailed(err error) error {
	return apperrors.Wrap(err, apperrors.ExecutionFailed, "네이버 쿠키 갱신에 실패했습니다")
}

func newErrInvalidSchedule(spec string, err error) error {
	return apperrors.Wrapf(err, apperrors.InvalidInput, "쿠키 갱신 스케줄 등록 실패: 잘못된 Cron 표현식입니다 (spec='%s')", spec)
}
