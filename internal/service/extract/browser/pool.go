package browser

import (
	"context"
	"sync"
	"sync/atomic"

	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"golang.org/x/sync/semaphore"
)

// Stats Pool 의 현재 사용 현황입니다.
type Stats struct {
	Engine   string `json:"engine"`
	InUse    int64  `json:"inUse"`
	Capacity int64  `json:"capacity"`
}

// Pool 동시에 열려 있는 페이지 수를 capacity 로 제한합니다.
// 슬롯이 없으면 ctx 가 끝날 때까지 기다리며, 페이지를 Close 하면 슬롯이 반환됩니다.
type Pool struct {
	engine   Engine
	sem      *semaphore.Weighted
	capacity int64

	inUse  atomic.Int64
	closed atomic.Bool
}

var _ Browser = (*Pool)(nil)

// NewPool 새로운 Pool 을 생성합니다. capacity 가 1 미만이면 1 로 보정합니다.
func NewPool(engine Engine, capacity int) *Pool {
	if engine == nil {
		panic("browser: engine 은 nil 일 수 없습니다")
	}
	if capacity < 1 {
		capacity = 1
	}

	return &Pool{
		engine:   engine,
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: int64(capacity),
	}
}

// NewPage 슬롯을 확보한 뒤 엔진에서 새 페이지를 엽니다.
func (p *Pool) NewPage(ctx context.Context, opts PageOptions) (Page, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, newErrPoolAcquire(err)
	}
	p.inUse.Add(1)

	release := sync.OnceFunc(func() {
		p.inUse.Add(-1)
		p.sem.Release(1)
	})

	page, err := p.engine.NewPage(ctx, opts)
	if err != nil {
		release()
		return nil, err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"engine":   p.engine.Name(),
		"in_use":   p.inUse.Load(),
		"capacity": p.capacity,
	}).Debug("브라우저 페이지 할당")

	return &pooledPage{Page: page, release: release}, nil
}

// Stats 현재 사용 현황을 반환합니다.
func (p *Pool) Stats() Stats {
	return Stats{
		Engine:   p.engine.Name(),
		InUse:    p.inUse.Load(),
		Capacity: p.capacity,
	}
}

// Close 엔진을 종료합니다. 이후의 NewPage 호출은 ErrPoolClosed 를 반환합니다.
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.engine.Close()
}

type pooledPage struct {
	Page
	release func()
}

func (pp *pooledPage) Close() error {
	defer pp.release()
	return pp.Page.Close()
}
