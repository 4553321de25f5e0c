package model

import (
	"fmt"
	"sync"
)

// Trace 하나의 추출 요청 동안 진단 정보를 누적합니다.
// 내부 API 호출이 동시에 기록하므로 모든 메서드는 동시 호출에 안전합니다.
type Trace struct {
	mu sync.Mutex
	d  Debug
}

// NewTrace 빈 Trace 를 생성합니다.
func NewTrace() *Trace {
	return &Trace{d: Debug{
		Steps:     []string{},
		Errors:    []string{},
		Endpoints: []EndpointResult{},
	}}
}

// Step 진행 단계를 기록합니다.
func (t *Trace) Step(format string, args ...any) {
	if t == nil {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.d.Steps = append(t.d.Steps, msg)
}

// Error 실패 내용을 기록합니다. nil 에러는 무시합니다.
func (t *Trace) Error(stage string, err error) {
	if t == nil || err == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.d.Errors = append(t.d.Errors, fmt.Sprintf("%s: %v", stage, err))
}

// Endpoint 외부 API 호출 결과를 기록합니다.
func (t *Trace) Endpoint(r EndpointResult) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.d.Endpoints = append(t.d.Endpoints, r)
}

// Attempt 식별자 조회 시도를 기록합니다.
func (t *Trace) Attempt(a Attempt) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.d.Attempts = append(t.d.Attempts, a)
}

// Strategy 추출 전략 실행 결과를 기록합니다.
func (t *Trace) Strategy(s StrategyResult) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.d.Strategies = append(t.d.Strategies, s)
}

// Snapshot 지금까지 누적된 진단 정보의 사본을 반환합니다.
func (t *Trace) Snapshot() Debug {
	if t == nil {
		return Debug{Steps: []string{}, Errors: []string{}, Endpoints: []EndpointResult{}}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.d.clone()
}
