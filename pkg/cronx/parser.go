// Package cronx 애플리케이션 전역에서 공유하는 Cron 표현식 파서를 제공합니다.
package cronx

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// StandardParser 초 단위를 포함하는 6필드 형식의 Cron 파서를 반환합니다.
//
// 필드 순서는 [초] [분] [시] [일] [월] [요일] 이며, @daily, @every 1h 같은 Descriptor 도 허용합니다.
// 표준 5필드 형식은 지원하지 않습니다.
func StandardParser() cron.Parser {
	return cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// Parse spec 을 StandardParser 로 해석합니다.
func Parse(spec string) (cron.Schedule, error) {
	schedule, err := StandardParser().Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("Cron 표현식 파싱 실패(spec=%q): %w", spec, err)
	}
	return schedule, nil
}

// Every 고정 간격 스케줄을 반환합니다. interval 은 1초 미만일 수 없습니다.
func Every(interval time.Duration) cron.Schedule {
	return cron.Every(interval)
}
