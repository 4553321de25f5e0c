package dump

import (
	"strings"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
)

// maxSlugBytes 파일명 중 이름 부분의 최대 바이트 수
const maxSlugBytes = 100

// filenameReplacer 파일 시스템에서 문제가 되는 문자를 하이픈으로 치환합니다.
var filenameReplacer = strings.NewReplacer(
	"..", "--",
	"/", "-",
	"\\", "-",
	"|", "-",
	"<", "-",
	">", "-",
	":", "-",
	"\"", "-",
	"?", "-",
	"*", "-",
)

// filename "{kind}-{slug}{ext}" 형식의 파일명을 만듭니다. 예: page-naver-5012345678.html
func filename(kind, name, ext string) string {
	slug := truncateByBytes(sanitizeName(name), maxSlugBytes)
	if slug == "" {
		slug = "unknown"
	}
	return kind + "-" + slug + ext
}

// sanitizeName Kebab-Case 로 바꾼 뒤 제어 문자와 경로 문자를 제거합니다.
func sanitizeName(s string) string {
	kebab := strcase.ToKebab(s)
	kebab = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return '-'
		}
		return r
	}, kebab)
	return filenameReplacer.Replace(kebab)
}

// truncateByBytes UTF-8 문자가 중간에 잘리지 않도록 limit 바이트 이하로 자릅니다.
func truncateByBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	n := 0
	for n < len(s) {
		_, size := utf8.DecodeRuneInString(s[n:])
		if n+size > limit {
			break
		}
		n += size
	}
	return s[:n]
}
