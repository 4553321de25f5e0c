package system

import "time"

// HealthResponse 서버 헬스체크 응답
type HealthResponse struct {
	// 서버 상태 (프로세스가 응답할 수 있으면 항상 ok)
	Status string `json:"status" example:"ok"`
	// 응답 생성 시각(RFC3339)
	Timestamp time.Time `json:"timestamp" example:"2025-10-16T17:01:28+09:00"`
	// 서버 가동 시간(초)
	Uptime int64 `json:"uptime" example:"3600"`
	// 리스닝 포트
	Port int `json:"port" example:"3001"`
	// 지원하는 쇼핑몰 목록
	Vendor []string `json:"vendor" example:"naver,coupang"`
	// 네이버 세션 상태 (쿠키 값은 포함하지 않음)
	Cookie CookieStatus `json:"cookie"`
	// 헤드리스 브라우저 사용 현황 (브라우저가 비활성화되면 생략)
	Browser *BrowserStatus `json:"browser,omitempty"`
	// 캐시 백엔드
	Cache CacheStatus `json:"cache"`
}

// CookieStatus 네이버 세션 상태 요약
type CookieStatus struct {
	HasCookie     bool       `json:"hasCookie" example:"true"`
	LastRefreshed *time.Time `json:"lastRefreshed,omitempty"`
	Refreshing    bool       `json:"refreshing" example:"false"`
}

// BrowserStatus 헤드리스 브라우저 풀 사용 현황
type BrowserStatus struct {
	Engine   string `json:"engine" example:"playwright"`
	InUse    int64  `json:"inUse" example:"1"`
	Capacity int64  `json:"capacity" example:"2"`
}

// CacheStatus 추출 결과 캐시 상태
type CacheStatus struct {
	Backend string `json:"backend" example:"memory"`
}
