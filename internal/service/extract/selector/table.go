package selector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/pkg/strutil"
)

// 상품/리뷰/문의 필드명
const (
	FieldName        = "name"
	FieldPrice       = "price"
	FieldBrand       = "brand"
	FieldCategory    = "category"
	FieldDescription = "description"

	FieldAuthor  = "author"
	FieldRating  = "rating"
	FieldDate    = "date"
	FieldContent = "content"

	FieldQuestion = "question"
	FieldAnswer   = "answer"
)

// Table 한 쇼핑몰의 선택자 테이블입니다.
type Table struct {
	Product []Rule
	Images  ListRule

	// TitleFallback 상품명 선택자가 모두 실패하면 <title> 을 상품명으로 사용합니다.
	TitleFallback bool

	Reviews   ItemRule
	QA        ItemRule
	ReviewTab TabRule
	QATab     TabRule
}

// ProductRecord 테이블로 상품 정보를 추출합니다. Source 는 호출자가 채웁니다.
func (t *Table) ProductRecord(doc *goquery.Document) model.ProductRecord {
	if doc == nil {
		return model.ProductRecord{}
	}

	values := Evaluate(doc.Selection, t.Product)
	if values[FieldName] == "" && t.TitleFallback {
		values[FieldName] = strutil.NormalizeSpaces(doc.Find("title").First().Text())
	}

	return model.ProductRecord{
		Name:        values[FieldName],
		Price:       values[FieldPrice],
		Brand:       values[FieldBrand],
		Category:    values[FieldCategory],
		Description: values[FieldDescription],
		Images:      List(doc.Selection, t.Images),
	}
}

// ReviewList 테이블로 리뷰 목록을 추출합니다.
func (t *Table) ReviewList(doc *goquery.Document) []model.ReviewRecord {
	if doc == nil {
		return nil
	}

	items := Items(doc.Selection, t.Reviews)
	if len(items) == 0 {
		return nil
	}

	reviews := make([]model.ReviewRecord, 0, len(items))
	for _, it := range items {
		reviews = append(reviews, model.ReviewRecord{
			Author:  it[FieldAuthor],
			Rating:  it[FieldRating],
			Content: it[FieldContent],
			Date:    it[FieldDate],
		})
	}
	return reviews
}

// QAList 테이블로 상품 문의 목록을 추출합니다.
func (t *Table) QAList(doc *goquery.Document) []model.QARecord {
	if doc == nil {
		return nil
	}

	items := Items(doc.Selection, t.QA)
	if len(items) == 0 {
		return nil
	}

	qa := make([]model.QARecord, 0, len(items))
	for _, it := range items {
		qa = append(qa, model.QARecord{
			Question: it[FieldQuestion],
			Answer:   it[FieldAnswer],
			Author:   it[FieldAuthor],
			Date:     it[FieldDate],
		})
	}
	return qa
}

// WithLimits 이미지/리뷰/문의 개수 제한을 적용한 사본을 반환합니다. 0 이하의 값은 무시합니다.
func (t Table) WithLimits(images, reviews, qa int) *Table {
	if images > 0 {
		t.Images.Limit = images
	}
	if reviews > 0 {
		t.Reviews.Limit = reviews
	}
	if qa > 0 {
		t.QA.Limit = qa
	}
	return &t
}

// Price 가격 문자열에서 숫자만 남깁니다.
func Price(v string) string {
	return strutil.DigitsOnly(v)
}

// AbsoluteURL 프로토콜 상대 URL(//...) 에 https: 를 붙입니다.
func AbsoluteURL(v string) string {
	if strings.HasPrefix(v, "//") {
		return "https:" + v
	}
	return v
}
