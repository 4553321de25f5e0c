// Package strategy 상품 정보를 얻는 추출 전략들의 공통 인터페이스와, 쇼핑몰에 독립적인
// 세 가지 전략(내장 JSON, 헤드리스 브라우저, 정적 HTML)을 제공합니다.
//
// 쇼핑몰별 내부 API 전략은 provider 하위 패키지에 있습니다.
package strategy

import (
	"context"

	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
)

// 전략 이름 (debug.strategies 에 기록)
const (
	NameEmbeddedJSON = "embedded_json"
	NameHeadless     = "headless"
	NameStaticHTML   = "static_html"
)

// Input 전략 실행에 필요한 요청 단위 정보입니다.
type Input struct {
	URL   string
	IDs   model.VendorIdentifiers
	Trace *model.Trace
}

// Output 전략이 얻은 결과입니다. 일부 필드만 채워질 수 있습니다.
type Output struct {
	Product model.ProductRecord
	Reviews []model.ReviewRecord
	QA      []model.QARecord
}

// Usable 상품명이나 가격을 얻었는지 여부를 반환합니다.
func (o *Output) Usable() bool {
	return o != nil && o.Product.Usable()
}

// Strategy 추출 전략입니다.
//
// 에러를 반환하거나 상품명/가격이 모두 빈 결과를 반환하면 파이프라인은 다음 전략으로 넘어갑니다.
// 에러와 함께 부분 결과(리뷰/문의)를 반환할 수 있으며, 파이프라인은 이를 병합에 사용합니다.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, in Input) (*Output, error)
}

// Func 함수를 Strategy 로 사용하기 위한 어댑터입니다.
type Func struct {
	StrategyName string
	Fn           func(ctx context.Context, in Input) (*Output, error)
}

func (f Func) Name() string { return f.StrategyName }

func (f Func) Extract(ctx context.Context, in Input) (*Output, error) {
	return f.Fn(ctx, in)
}

// Dumper 디버그 산출물을 기록합니다. 구현체는 실패를 스스로 처리해야 하며 요청에 영향을 주지 않아야 합니다.
type Dumper interface {
	Page(name, html string)
	Frame(name string, index int, html string)
	Screenshot(name string, png []byte)
	Response(name string, body []byte)
}

// DumpName 요청을 식별하는 덤프 파일 이름의 기본 부분입니다.
func DumpName(in Input) string {
	return string(in.IDs.Vendor) + " " + in.IDs.ProductID
}
