// Package selector 필드별 CSS 선택자 목록을 선언적 테이블로 정의하고, 하나의 범용 평가기로
// goquery 문서에서 값을 꺼냅니다.
//
// 각 필드는 우선순위가 높은 선택자부터 시도하여 처음으로 비어있지 않은 값을 채택합니다.
// 선택자가 아무것도 찾지 못하는 것은 오류가 아니며 해당 필드는 빈 값으로 남습니다.
package selector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/darkkaiser/product-extractor/pkg/strutil"
)

// Mode 선택된 요소에서 값을 꺼내는 방식입니다.
type Mode int

const (
	// ModeText 텍스트 노드를 공백 정규화하여 사용합니다.
	ModeText Mode = iota
	// ModeHTML 내부 HTML 을 그대로 사용합니다.
	ModeHTML
	// ModeAttr Attr 로 지정한 속성 값을 사용합니다.
	ModeAttr
)

// PostFunc 추출된 값을 후처리합니다. 빈 문자열을 반환하면 다음 선택자로 넘어갑니다.
type PostFunc func(string) string

// Rule 단일 값 필드의 추출 규칙입니다.
type Rule struct {
	Field     string
	Selectors []string
	Mode      Mode
	Attr      string
	Post      PostFunc

	// Join 비어있지 않으면 첫 번째로 일치한 선택자의 모든 요소 값을 이 구분자로 이어붙입니다. (예: 카테고리 경로)
	Join string
}

// ListRule 이미지처럼 여러 값을 모으는 규칙입니다.
type ListRule struct {
	Selectors []string

	// Attrs 요소마다 순서대로 확인할 속성 목록 (예: src → data-src → data-lazy)
	Attrs []string

	// Skip 값에 이 문자열 중 하나라도 포함되면 버립니다.
	Skip []string

	Post  PostFunc
	Limit int
}

// ItemRule 리뷰/문의처럼 반복되는 항목 목록의 규칙입니다.
// Containers 로 항목 요소를 찾고, 각 항목 안에서 Fields 규칙을 평가합니다.
type ItemRule struct {
	Containers []string
	Fields     []Rule

	// Required 이 필드가 비어있는 항목은 버립니다.
	Required string

	Limit int
}

// TabRule 리뷰/문의 탭을 찾는 규칙입니다. 선택자가 우선이고 그 다음 표시 텍스트로 찾습니다.
type TabRule struct {
	Selectors []string
	Texts     []string
}

// First rule 의 선택자를 순서대로 시도하여 처음 얻은 비어있지 않은 값을 반환합니다.
func First(root *goquery.Selection, rule Rule) string {
	if root == nil {
		return ""
	}

	for _, sel := range rule.Selectors {
		matches := root.Find(sel)
		if matches.Length() == 0 {
			continue
		}

		var v string
		if rule.Join != "" {
			v = joinValues(matches, rule)
		} else {
			v = firstValue(matches, rule)
		}
		if v != "" {
			return v
		}
	}
	return ""
}

// Evaluate 규칙 목록을 모두 평가하여 필드명→값 맵을 반환합니다. 빈 값은 맵에 넣지 않습니다.
func Evaluate(root *goquery.Selection, rules []Rule) map[string]string {
	values := make(map[string]string, len(rules))
	for _, rule := range rules {
		if v := First(root, rule); v != "" {
			values[rule.Field] = v
		}
	}
	return values
}

// List 선택자 순서대로 요소를 훑으며 값을 모읍니다. 중복은 제거하고 Limit 개에서 멈춥니다.
func List(root *goquery.Selection, rule ListRule) []string {
	if root == nil {
		return nil
	}

	var (
		result []string
		seen   = make(map[string]struct{})
	)
	for _, sel := range rule.Selectors {
		root.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v := attrValue(s, rule.Attrs)
			if v == "" || containsAny(v, rule.Skip) {
				return true
			}
			if rule.Post != nil {
				if v = rule.Post(v); v == "" {
					return true
				}
			}
			if _, dup := seen[v]; dup {
				return true
			}

			seen[v] = struct{}{}
			result = append(result, v)
			return rule.Limit <= 0 || len(result) < rule.Limit
		})

		if rule.Limit > 0 && len(result) >= rule.Limit {
			break
		}
	}
	return result
}

// Items 첫 번째로 항목이 발견된 컨테이너 선택자를 사용해 항목별 필드 맵 목록을 반환합니다.
func Items(root *goquery.Selection, rule ItemRule) []map[string]string {
	if root == nil {
		return nil
	}

	for _, sel := range rule.Containers {
		matches := root.Find(sel)
		if matches.Length() == 0 {
			continue
		}

		var items []map[string]string
		matches.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			item := Evaluate(s, rule.Fields)
			if rule.Required != "" && item[rule.Required] == "" {
				return true
			}
			items = append(items, item)
			return rule.Limit <= 0 || len(items) < rule.Limit
		})
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

func firstValue(matches *goquery.Selection, rule Rule) string {
	var v string
	matches.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v = postProcess(extract(s, rule), rule.Post)
		return v == ""
	})
	return v
}

func joinValues(matches *goquery.Selection, rule Rule) string {
	var parts []string
	matches.Each(func(_ int, s *goquery.Selection) {
		if v := postProcess(extract(s, rule), rule.Post); v != "" {
			parts = append(parts, v)
		}
	})
	return strings.Join(parts, rule.Join)
}

func extract(s *goquery.Selection, rule Rule) string {
	switch rule.Mode {
	case ModeHTML:
		h, err := s.Html()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(h)
	case ModeAttr:
		v, _ := s.Attr(rule.Attr)
		return strings.TrimSpace(v)
	default:
		return strutil.NormalizeSpaces(s.Text())
	}
}

func postProcess(v string, post PostFunc) string {
	if v == "" || post == nil {
		return v
	}
	return post(v)
}

func attrValue(s *goquery.Selection, attrs []string) string {
	for _, a := range attrs {
		if v, ok := s.Attr(a); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
