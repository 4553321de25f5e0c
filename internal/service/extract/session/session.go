// Package session 네이버 요청에 사용하는 쿠키/User-Agent 세션 값과 이를 갱신하는 Refresher 를 제공합니다.
//
// Session 은 불변 값입니다. Store 는 현재 Session 을 원자적으로 교체하며, 갱신은 Refresher 만 수행합니다.
// fetcher 와 브라우저 컨텍스트는 요청마다 Store 에서 최신 값을 읽습니다.
package session

import (
	"sync/atomic"
	"time"
)

const component = "extract.session"

// Session 특정 시점의 쿠키와 User-Agent 입니다.
type Session struct {
	Cookie        string
	UserAgent     string
	LastRefreshed time.Time
}

// HasCookie 쿠키가 설정되어 있는지 여부를 반환합니다.
func (s Session) HasCookie() bool {
	return s.Cookie != ""
}

// Store 현재 Session 을 보관합니다. 동시에 읽고 교체해도 안전합니다.
type Store struct {
	current atomic.Pointer[Session]
}

// NewStore initial 을 현재 세션으로 하는 Store 를 생성합니다.
func NewStore(initial Session) *Store {
	s := &Store{}
	s.current.Store(&initial)
	return s
}

// Load 현재 세션의 사본을 반환합니다.
func (s *Store) Load() Session {
	return *s.current.Load()
}

// Cookie fetcher.SessionSource 구현
func (s *Store) Cookie() string {
	return s.current.Load().Cookie
}

// UserAgent fetcher.SessionSource 구현
func (s *Store) UserAgent() string {
	return s.current.Load().UserAgent
}

func (s *Store) replace(next Session) {
	s.current.Store(&next)
}

// Summary 갱신 상태 없이 현재 세션만 요약합니다. (Refresher 가 없는 구성에서 사용)
func (s *Store) Summary() Summary {
	current := s.Load()
	return Summary{
		HasCookie:     current.HasCookie(),
		LastRefreshed: current.LastRefreshed,
	}
}
