package browser

import (
	"time"
)

// DefaultNavigationTimeout 페이지 이동 및 요소 대기의 기본 제한 시간
const DefaultNavigationTimeout = 30 * time.Second

// Config 브라우저 엔진 설정입니다.
type Config struct {
	Engine            string
	Headless          bool
	ExecutablePath    string
	NavigationTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = DefaultNavigationTimeout
	}
	return c
}

// NewEngine 설정된 이름의 엔진을 생성합니다. 빈 이름은 Playwright 로 취급합니다.
func NewEngine(cfg Config) (Engine, error) {
	switch cfg.Engine {
	case "", EnginePlaywright:
		return NewPlaywrightEngine(cfg), nil
	case EngineChromedp:
		return NewChromedpEngine(cfg), nil
	default:
		return nil, newErrUnsupportedEngine(cfg.Engine)
	}
}
