package extract

import (
	"net/http"

	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
)

// Kind 추출 요청의 최종 분류입니다. API 경계에서 HTTP 상태 코드로 변환됩니다.
type Kind int

const (
	KindSucceeded Kind = iota
	KindInvalidRequest
	KindUnsupported
	KindUpstreamFailed
	KindUpstreamTimeout
)

func (k Kind) String() string {
	switch k {
	case KindSucceeded:
		return "succeeded"
	case KindInvalidRequest:
		return "invalid_request"
	case KindUnsupported:
		return "unsupported"
	case KindUpstreamFailed:
		return "upstream_failed"
	case KindUpstreamTimeout:
		return "upstream_timeout"
	default:
		return "unknown"
	}
}

// HTTPStatus 응답 상태 코드입니다. 본문은 상태 코드와 관계없이 항상 전체 Envelope 입니다.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindSucceeded:
		return http.StatusOK
	case KindInvalidRequest, KindUnsupported:
		return http.StatusBadRequest
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// Result 추출 결과와 분류입니다. Envelope 는 nil 이 아닙니다.
type Result struct {
	Kind     Kind
	Envelope *model.ExtractionResult
}

// OK 추출에 성공했는지 여부를 반환합니다.
func (r Result) OK() bool {
	return r.Kind == KindSucceeded
}
