package scraper

import (
	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
	"github.com/darkkaiser/product-extractor/internal/service/extract/fetcher"
)

func newErrUnexpectedHTML(url, contentType string) error {
	return apperrors.Newf(apperrors.ParsingFailed, "JSON 대신 HTML 응답을 받았습니다. 로그인 또는 보안 확인 페이지일 수 있습니다 (url=%s, content-type=%s)", fetcher.RedactRawURL(url), contentType)
}

func newErrInvalidJSON(url string) error {
	return apperrors.Newf(apperrors.ParsingFailed, "응답 본문이 올바른 JSON 형식이 아닙니다 (url=%s)", fetcher.RedactRawURL(url))
}

func newErrHTMLParseFailed(url string, err error) error {
	return apperrors.Wrapf(err, apperrors.ParsingFailed, "HTML 문서 파싱에 실패했습니다 (url=%s)", fetcher.RedactRawURL(url))
}
