// Package scraper fetcher 위에서 HTML 페이지와 JSON 응답을 읽고 파싱합니다.
package scraper

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/darkkaiser/product-extractor/internal/service/extract/fetcher"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

const component = "extract.scraper"

// peekSize 인코딩 감지를 위해 검사하는 본문 앞부분의 크기
const peekSize = 1024

// Page 가져온 HTML 문서입니다. Raw 는 UTF-8 로 변환된 원문으로, 인라인 스크립트 검색과 덤프에 사용됩니다.
type Page struct {
	URL    string
	Status int
	Raw    string
	Doc    *goquery.Document
}

// JSONResponse 가져온 JSON 응답입니다.
type JSONResponse struct {
	URL    string
	Status int
	Body   []byte
	Result gjson.Result
}

// Scraper HTML/JSON 요청을 수행합니다.
type Scraper struct {
	fetcher fetcher.Fetcher
}

// New 새로운 Scraper 를 생성합니다.
func New(f fetcher.Fetcher) *Scraper {
	if f == nil {
		panic("scraper: fetcher 는 nil 일 수 없습니다")
	}
	return &Scraper{fetcher: f}
}

// FetchHTML GET 요청으로 HTML 문서를 가져와 파싱합니다.
func (s *Scraper) FetchHTML(ctx context.Context, rawURL string, header http.Header) (*Page, error) {
	body, resp, err := fetcher.ReadAll(ctx, s.fetcher, rawURL, header)
	if err != nil {
		return nil, err
	}

	raw := DecodeHTML(body, resp.Header.Get("Content-Type"))
	doc, err := ParseHTML(raw, rawURL)
	if err != nil {
		return nil, err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"url":   fetcher.RedactRawURL(rawURL),
		"bytes": len(raw),
	}).Debug("HTML 문서 파싱 완료")

	return &Page{URL: rawURL, Status: resp.StatusCode, Raw: raw, Doc: doc}, nil
}

// FetchJSON GET 요청으로 JSON 응답을 가져옵니다. 본문이 JSON 이 아니면 ParsingFailed 에러를 반환합니다.
func (s *Scraper) FetchJSON(ctx context.Context, rawURL string, header http.Header) (*JSONResponse, error) {
	body, resp, err := fetcher.ReadAll(ctx, s.fetcher, rawURL, header)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return nil, newErrUnexpectedHTML(rawURL, resp.Header.Get("Content-Type"))
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, newErrInvalidJSON(rawURL)
	}

	return &JSONResponse{
		URL:    rawURL,
		Status: resp.StatusCode,
		Body:   trimmed,
		Result: gjson.ParseBytes(trimmed),
	}, nil
}

// DecodeHTML Content-Type 과 meta 태그로 인코딩을 판별해 UTF-8 문자열로 변환합니다.
// EUC-KR 로 내려오는 구형 상품 페이지를 처리하기 위해 사용합니다.
func DecodeHTML(body []byte, contentType string) string {
	peek := body
	if len(peek) > peekSize {
		peek = peek[:peekSize]
	}

	enc, name, _ := charset.DetermineEncoding(peek, contentType)
	if enc == nil || strings.EqualFold(name, "utf-8") {
		return string(body)
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// ParseHTML UTF-8 HTML 문자열을 goquery 문서로 파싱합니다.
func ParseHTML(raw, rawURL string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, newErrHTMLParseFailed(rawURL, err)
	}
	if u, err := url.Parse(rawURL); err == nil && rawURL != "" {
		doc.Url = u
	}
	return doc, nil
}
