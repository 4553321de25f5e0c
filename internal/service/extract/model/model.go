// Package model 추출 파이프라인 전반에서 주고받는 요청 단위 데이터 구조를 정의합니다.
//
// 모든 값은 요청마다 새로 만들어지고 응답 후 버려집니다. 캐시에 저장되는 ExtractionResult 만
// 예외이며, 캐시는 항상 Clone 한 사본을 돌려줍니다.
package model

import (
	"slices"
)

// Vendor 추출 대상 쇼핑몰입니다.
type Vendor string

const (
	VendorNaver   Vendor = "naver"
	VendorCoupang Vendor = "coupang"
	VendorUnknown Vendor = "unknown"
)

// SupportedVendors 추출을 지원하는 쇼핑몰 목록입니다. (unknown 제외)
var SupportedVendors = []Vendor{VendorNaver, VendorCoupang}

func (v Vendor) String() string {
	return string(v)
}

// Supported 추출을 지원하는 쇼핑몰인지 여부를 반환합니다.
func (v Vendor) Supported() bool {
	return slices.Contains(SupportedVendors, v)
}

// Source 상품 정보를 만들어 낸 추출 전략입니다.
type Source string

const (
	// SourceJSON 페이지에 내장된 상태 JSON
	SourceJSON Source = "json"
	// SourceAPI 쇼핑몰 내부 API (쿠키/헤더 재사용)
	SourceAPI Source = "api"
	// SourcePlaywright 헤드리스 브라우저 DOM 탐색 (엔진 종류와 무관)
	SourcePlaywright Source = "playwright"
	// SourceHTML 정적 HTML 파싱
	SourceHTML Source = "html"
	// SourceDirect 쿠팡 파트너스 공식 API
	SourceDirect Source = "direct"
	// SourceFailed 모든 전략 실패
	SourceFailed Source = "failed"
)

// ExtractionRequest POST /api/extract 요청 본문입니다.
type ExtractionRequest struct {
	URL string `json:"url" example:"https://smartstore.naver.com/miliving/products/10037442277"`
}

// VendorIdentifiers 쇼핑몰 내부 데이터에 접근하기 위한 식별자입니다.
// ChannelID 는 네이버 전용이며 모든 조회 방법이 실패하면 비어있습니다.
type VendorIdentifiers struct {
	Vendor    Vendor
	ProductID string
	ChannelID string
}

// ProductRecord 상품 기본 정보입니다. Price 는 숫자만 남긴 문자열입니다.
type ProductRecord struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Brand       string   `json:"brand,omitempty"`
	Category    string   `json:"category,omitempty"`
	Images      []string `json:"images"`
	Description string   `json:"description,omitempty"`
	Source      Source   `json:"source"`
}

// Usable 상품명이나 가격 중 하나라도 채워졌는지 여부를 반환합니다.
func (p *ProductRecord) Usable() bool {
	return p != nil && (p.Name != "" || p.Price != "")
}

// ReviewRecord 상품 리뷰 한 건입니다.
type ReviewRecord struct {
	Author  string   `json:"author"`
	Rating  string   `json:"rating"`
	Content string   `json:"content"`
	Date    string   `json:"date"`
	Images  []string `json:"images,omitempty"`
}

// QARecord 상품 문의 한 건입니다.
type QARecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Author   string `json:"author,omitempty"`
	Date     string `json:"date,omitempty"`
}

// ExtractionResult 부분 실패 여부와 관계없이 항상 반환되는 통합 응답 봉투입니다.
type ExtractionResult struct {
	OK         bool           `json:"ok"`
	Vendor     Vendor         `json:"vendor"`
	ProductID  string         `json:"productId"`
	ChannelID  string         `json:"channelId,omitempty"`
	Product    ProductRecord  `json:"product"`
	Reviews    []ReviewRecord `json:"reviews"`
	QA         []QARecord     `json:"qa"`
	Debug      Debug          `json:"debug"`
	DurationMs int64          `json:"durationMs"`
	Error      string         `json:"error,omitempty"`
}

// Clone 슬라이스까지 복사한 사본을 반환합니다.
func (r *ExtractionResult) Clone() *ExtractionResult {
	if r == nil {
		return nil
	}

	c := *r
	c.Product.Images = slices.Clone(r.Product.Images)
	c.Reviews = make([]ReviewRecord, len(r.Reviews))
	for i, rv := range r.Reviews {
		rv.Images = slices.Clone(rv.Images)
		c.Reviews[i] = rv
	}
	c.QA = slices.Clone(r.QA)
	if c.QA == nil {
		c.QA = []QARecord{}
	}
	c.Debug = r.Debug.clone()
	return &c
}

// Debug 운영자가 어느 단계에서 실패했는지 추적할 수 있도록 남기는 진단 정보입니다.
type Debug struct {
	Steps      []string         `json:"steps"`
	Errors     []string         `json:"errors"`
	Endpoints  []EndpointResult `json:"endpoints"`
	Attempts   []Attempt        `json:"attempts,omitempty"`
	Strategies []StrategyResult `json:"strategies,omitempty"`
	CacheHit   bool             `json:"cacheHit"`
}

func (d Debug) clone() Debug {
	d.Steps = slices.Clone(d.Steps)
	d.Errors = slices.Clone(d.Errors)
	d.Endpoints = slices.Clone(d.Endpoints)
	d.Attempts = slices.Clone(d.Attempts)
	d.Strategies = slices.Clone(d.Strategies)
	return d
}

// EndpointResult 외부 API 한 번의 호출 결과입니다.
type EndpointResult struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Status     int    `json:"status"`
	OK         bool   `json:"ok"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// Attempt 식별자 조회 시도 한 번의 결과입니다.
type Attempt struct {
	Method string `json:"method"`
	Status int    `json:"status,omitempty"`
	Found  bool   `json:"found"`
	Error  string `json:"error,omitempty"`
}

// StrategyResult 추출 전략 한 번의 실행 결과입니다.
type StrategyResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	Reviews    int    `json:"reviews"`
	QA         int    `json:"qa"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}
