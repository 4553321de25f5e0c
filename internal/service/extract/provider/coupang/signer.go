// Package coupang 쿠팡 전용 추출 설정(선택자 테이블, 요청 헤더)과 쿠팡 파트너스 Open API 전략을 제공합니다.
package coupang

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// signedDateLayout signed-date 형식 (UTC, yyMMdd'T'HHmmss'Z')
const signedDateLayout = "060102T150405Z"

// Signer 쿠팡 Open API 의 CEA HMAC-SHA256 Authorization 헤더를 만듭니다.
type Signer struct {
	accessKey string
	secretKey string

	now func() time.Time
}

// NewSigner 새로운 Signer 를 생성합니다. 키가 하나라도 비어있으면 nil 을 반환합니다.
func NewSigner(accessKey, secretKey string) *Signer {
	if accessKey == "" || secretKey == "" {
		return nil
	}
	return &Signer{accessKey: accessKey, secretKey: secretKey, now: time.Now}
}

// Authorization method, path, query(? 제외)에 대한 Authorization 헤더 값을 현재 시각으로 만듭니다.
func (s *Signer) Authorization(method, path, query string) string {
	signedDate := SignedDate(s.now())
	return fmt.Sprintf("CEA algorithm=HmacSHA256, access-key=%s, signed-date=%s, signature=%s",
		s.accessKey, signedDate, Sign(s.secretKey, signedDate, method, path, query))
}

// SignedDate t 를 signed-date 형식으로 변환합니다.
func SignedDate(t time.Time) string {
	return t.UTC().Format(signedDateLayout)
}

// Sign signedDate+method+path+query 메시지의 HMAC-SHA256 서명을 16진수 문자열로 반환합니다.
func Sign(secretKey, signedDate, method, path, query string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(signedDate + method + path + query))
	return hex.EncodeToString(mac.Sum(nil))
}
