package api

import (
	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
)

// ErrExtractorNotInitialized 서비스 시작 시 핵심 의존성인 추출 파이프라인이 주입되지 않았을 때 반환하는 에러입니다.
var ErrExtractorNotInitialized = apperrors.New(apperrors.Internal, "추출 파이프라인이 초기화되지 않았습니다")
