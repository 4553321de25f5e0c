package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/redis/go-redis/v9"
)

// Redis 여러 인스턴스가 결과를 공유하도록 Redis 에 JSON 으로 보관하는 캐시입니다.
// 만료는 Redis 의 키 TTL 이 처리합니다.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Cache = (*Redis)(nil)

// NewRedis 새로운 Redis 캐시를 생성합니다.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if client == nil {
		panic("cache: redis client 는 nil 일 수 없습니다")
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(key string) string {
	return r.prefix + "extract:" + key
}

func (r *Redis) Get(ctx context.Context, key string) (*model.ExtractionResult, bool) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			applog.WithComponentAndFields(component, applog.Fields{
				"key":   key,
				"error": err,
			}).Warn("Redis 캐시 조회 실패: 캐시 미스로 처리합니다")
		}
		return nil, false
	}

	var result model.ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"key":   key,
			"error": err,
		}).Warn("Redis 캐시 값이 손상되었습니다: 캐시 미스로 처리합니다")
		return nil, false
	}
	return &result, true
}

func (r *Redis) Set(ctx context.Context, key string, result *model.ExtractionResult) {
	if result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{"key": key, "error": err}).Warn("캐시 값 직렬화 실패")
		return
	}
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{"key": key, "error": err}).Warn("Redis 캐시 저장 실패")
	}
}

func (r *Redis) Backend() string { return BackendRedis }

func (r *Redis) Close() error { return r.client.Close() }
