package cache

import (
	"context"
	"time"

	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/redis/go-redis/v9"
)

// pingTimeout 시작 시 Redis 연결을 확인하는 제한 시간
const pingTimeout = 3 * time.Second

// Config 캐시 생성 설정입니다.
type Config struct {
	Backend string
	TTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// New 설정에 맞는 캐시를 생성합니다.
//
// TTL 이 0 이하이면 Nop 을 반환합니다. redis 백엔드인데 주소가 비어있으면 메모리 캐시를 사용하고,
// 주소가 있는데 연결에 실패하면 에러를 반환합니다.
func New(ctx context.Context, cfg Config) (Cache, error) {
	if cfg.TTL <= 0 {
		return Nop{}, nil
	}

	if cfg.Backend != BackendRedis || cfg.RedisAddr == "" {
		return NewMemory(cfg.TTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrapf(err, apperrors.Unavailable, "Redis 캐시에 연결할 수 없습니다 (addr=%s)", cfg.RedisAddr)
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"addr": cfg.RedisAddr,
		"db":   cfg.RedisDB,
		"ttl":  cfg.TTL.String(),
	}).Info("Redis 캐시 연결 완료")

	return NewRedis(client, cfg.KeyPrefix, cfg.TTL), nil
}
