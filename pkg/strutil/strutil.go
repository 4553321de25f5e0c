// Package strutil 스크래핑한 텍스트를 정리하는 문자열 유틸리티입니다.
package strutil

import (
	"html"
	"regexp"
	"strings"
)

// htmlTagRegexp '<' 다음에 영문자가 오는 경우만 태그로 인식합니다. ("3 < 5" 는 유지)
var htmlTagRegexp = regexp.MustCompile(`</?([a-zA-Z]+)[^>]*>`)

// NormalizeSpaces 앞뒤 공백을 제거하고 연속된 공백(개행 포함)을 하나로 축약합니다.
// 예: "  hello \n  world  " -> "hello world"
func NormalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DigitsOnly 숫자가 아닌 문자를 모두 제거합니다.
// 예: "29,900원" -> "29900"
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StripHTMLTags HTML 태그를 제거하고 엔티티를 디코딩합니다.
// 예: "<b>Hello</b> &amp; World" -> "Hello & World"
func StripHTMLTags(s string) string {
	return html.UnescapeString(htmlTagRegexp.ReplaceAllString(s, ""))
}

// SplitAndTrim 구분자로 나눈 뒤 각 항목을 trim 하고 빈 항목을 버립니다. 결과가 없으면 nil 입니다.
// 예: "a, , b,c" -> ["a", "b", "c"]
func SplitAndTrim(s, sep string) []string {
	var result []string
	for token := range strings.SplitSeq(s, sep) {
		if token = strings.TrimSpace(token); token != "" {
			result = append(result, token)
		}
	}
	return result
}

// Truncate s 가 max 바이트를 넘으면 UTF-8 문자 경계에서 잘라 "..." 를 붙입니다.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "..."
}

// FirstNonEmpty 공백을 제외하고 비어있지 않은 첫 번째 값을 반환합니다.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
