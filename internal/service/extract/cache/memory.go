package cache

import (
	"context"
	"sync"
	"time"

	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
)

type entry struct {
	result   *model.ExtractionResult
	storedAt time.Time
}

// Memory 프로세스 메모리에 결과를 보관하는 TTL 캐시입니다. 크기 제한은 없습니다.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration

	now func() time.Time
}

var _ Cache = (*Memory)(nil)

// NewMemory 새로운 메모리 캐시를 생성합니다.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (*model.ExtractionResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.storedAt) >= m.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return e.result.Clone(), true
}

func (m *Memory) Set(_ context.Context, key string, result *model.ExtractionResult) {
	if result == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{result: result.Clone(), storedAt: m.now()}
}

// Len 만료 여부와 관계없이 보관 중인 항목 수입니다.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Backend() string { return BackendMemory }

func (m *Memory) Close() error { return nil }
