// Package validation 설정 파일과 환경 변수로 들어오는 값의 형식을 검증합니다.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ValidateCORSOrigin origin 이 'scheme://host[:port]' 형식의 CORS Origin 인지 검증합니다.
//
// '*' 는 모든 출처 허용으로 간주합니다. 경로, 쿼리, 프래그먼트, 사용자 정보, 후행 슬래시가
// 포함되면 유효하지 않습니다.
func ValidateCORSOrigin(origin string) error {
	trimmed := strings.TrimSpace(origin)
	switch {
	case trimmed == "*":
		return nil
	case trimmed == "":
		return fmt.Errorf("CORS Origin은 비어있을 수 없습니다")
	case strings.HasSuffix(trimmed, "/"):
		return fmt.Errorf("CORS Origin 포맷 오류: 경로 구분자('/')로 끝날 수 없습니다 (input=%q)", trimmed)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("CORS Origin 파싱 실패 (input=%q): %w", trimmed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("CORS Origin 스키마 오류: 'http' 또는 'https'만 허용됩니다 (input=%q)", trimmed)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return fmt.Errorf("CORS Origin 포맷 오류: scheme://host[:port] 이외의 구성 요소를 포함할 수 없습니다 (input=%q)", trimmed)
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("CORS Origin 포트 오류: 포트 번호가 유효하지 않습니다 (input=%q, port=%s)", trimmed, p)
		}
		if err := ValidatePort(port); err != nil {
			return fmt.Errorf("CORS Origin 포트 오류: %w (input=%q)", err, trimmed)
		}
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("CORS Origin 포맷 오류: 호스트(Host) 정보가 누락되었습니다 (input=%q)", trimmed)
	}
	return ValidateHostname(host)
}

// ValidatePort 포트 번호가 1-65535 범위 내에 있는지 검증합니다.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("유효한 포트 범위(1-65535)가 아닙니다 (port=%d)", port)
	}
	return nil
}

// ValidateHostname 호스트명이 localhost, IP 주소 또는 RFC 1123 도메인명인지 검증합니다.
func ValidateHostname(host string) error {
	if host == "localhost" || net.ParseIP(host) != nil {
		return nil
	}
	if len(host) > 253 {
		return fmt.Errorf("호스트명 전체 길이는 253자를 초과할 수 없습니다 (len=%d)", len(host))
	}

	labels := strings.Split(host, ".")
	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return fmt.Errorf("레이블 길이는 1-63자여야 합니다 (host=%q)", host)
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("레이블은 하이픈(-)으로 시작하거나 끝날 수 없습니다 (label=%q)", label)
		}
		for _, r := range label {
			if !isAlnum(r) && r != '-' {
				return fmt.Errorf("호스트명은 영문, 숫자, 하이픈(-)으로만 구성되어야 합니다 (invalid_char=%q, host=%q)", r, host)
			}
		}
	}

	// TLD 는 숫자로만 구성될 수 없다.
	if tld := labels[len(labels)-1]; strings.Trim(tld, "0123456789") == "" {
		return fmt.Errorf("최상위 도메인(TLD)은 숫자로만 구성될 수 없습니다 (tld=%q)", tld)
	}
	return nil
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
