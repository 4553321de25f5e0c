package fetcher

import (
	"net/url"
	"slices"
	"strings"
)

var (
	// sensitiveExactKeys 대소문자 구분 없이 전체가 일치할 때만 마스킹하는 쿼리 키
	sensitiveExactKeys = []string{
		"token", "auth", "key", "secret", "signature", "password",
		"access_token", "api_key", "access_key", "secret_key", "client_secret",
	}

	// sensitiveSuffixes 이 접미사로 끝나는 쿼리 키는 마스킹합니다.
	sensitiveSuffixes = []string{"_token", "_secret", "_sig", "_password"}
)

// redactURL 로그와 에러 메시지에 남길 수 있도록 사용자 정보와 민감한 쿼리 값을 가립니다.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	ru := *u
	if u.User != nil {
		ru.User = url.User("xxxxx")
	}
	if u.RawQuery != "" {
		query := ru.Query()
		for key := range query {
			if isSensitiveKey(key) {
				query.Set(key, "xxxxx")
			}
		}
		ru.RawQuery = query.Encode()
	}
	return ru.String()
}

// RedactRawURL 문자열 URL 버전의 redactURL 입니다. 파싱할 수 없으면 쿼리를 통째로 제거합니다.
func RedactRawURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if i := strings.IndexByte(rawURL, '?'); i >= 0 {
			return rawURL[:i]
		}
		return rawURL
	}
	return redactURL(u)
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	if slices.Contains(sensitiveExactKeys, lower) {
		return true
	}
	for _, suffix := range sensitiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
