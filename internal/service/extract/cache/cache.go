// Package cache 추출 결과를 URL 단위로 일정 시간 재사용하는 캐시를 제공합니다.
//
// 만료된 항목은 다음 조회 시점에 버려지며 별도의 주기적 정리는 하지 않습니다.
// 실패한 추출 결과는 캐시하지 않는 것이 호출자의 책임입니다.
package cache

import (
	"context"

	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
)

const component = "extract.cache"

// 캐시 백엔드 이름
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Cache 추출 결과 캐시입니다.
//
// Get 은 항상 호출자가 마음대로 수정해도 되는 사본을 반환하며, 백엔드 오류는 캐시 미스로 취급합니다.
type Cache interface {
	Get(ctx context.Context, key string) (*model.ExtractionResult, bool)
	Set(ctx context.Context, key string, result *model.ExtractionResult)
	Backend() string
	Close() error
}

// Key 쇼핑몰과 URL 로 캐시 키를 만듭니다.
func Key(vendor model.Vendor, url string) string {
	return string(vendor) + ":" + url
}

// Nop 아무것도 저장하지 않는 캐시입니다. TTL 이 0 일 때 사용합니다.
type Nop struct{}

var _ Cache = Nop{}

func (Nop) Get(context.Context, string) (*model.ExtractionResult, bool) { return nil, false }
func (Nop) Set(context.Context, string, *model.ExtractionResult)        {}
func (Nop) Backend() string                                            { return BackendNone }
func (Nop) Close() error                                               { return nil }
