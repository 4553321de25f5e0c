package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "product-extractor"

	// DefaultFilename 실행 인자로 경로가 주어지지 않았을 때 탐색하는 설정 파일명입니다.
	// 파일이 없으면 기본값과 환경 변수만으로 구동합니다.
	DefaultFilename = AppName + ".json"

	// EnvPrefix 구조화된 환경 변수의 접두사입니다.
	// 예: EXTRACTOR_BROWSER__MAX_CONCURRENT=4 -> browser.max_concurrent
	EnvPrefix = "EXTRACTOR_"
)

// 실행 환경
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// 캐시 백엔드
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// 헤드리스 브라우저 엔진
const (
	BrowserEnginePlaywright = "playwright"
	BrowserEngineChromedp   = "chromedp"
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug       bool             `json:"debug"`
	Environment string           `json:"environment" validate:"oneof=development production"`
	HTTPServer  HTTPServerConfig `json:"http_server"`
	Extractor   ExtractorConfig  `json:"extractor"`
	Browser     BrowserConfig    `json:"browser"`
	Naver       NaverConfig      `json:"naver"`
	Coupang     CoupangConfig    `json:"coupang"`
	Alert       AlertConfig      `json:"alert"`
}

// IsProduction 운영 환경으로 구동 중인지 여부를 반환합니다.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// HTTPServerConfig API 서버 설정
type HTTPServerConfig struct {
	ListenPort     int             `json:"listen_port" validate:"min=1,max=65535"`
	StaticDir      string          `json:"static_dir" validate:"omitempty,dir"`
	AllowOrigins   []string        `json:"allow_origins" validate:"min=1,dive,cors_origin"`
	RequestTimeout time.Duration   `json:"request_timeout" validate:"min=1s"`
	RateLimit      RateLimitConfig `json:"rate_limit"`
}

// RateLimitConfig IP 별 요청 속도 제한 설정
type RateLimitConfig struct {
	RequestsPerSecond int `json:"requests_per_second" validate:"min=1"`
	Burst             int `json:"burst" validate:"min=1"`
}

// ExtractorConfig 추출 파이프라인 설정
type ExtractorConfig struct {
	CacheTTL        time.Duration `json:"cache_ttl"`
	CacheBackend    string        `json:"cache_backend" validate:"oneof=memory redis"`
	Redis           RedisConfig   `json:"redis"`
	StrategyTimeout time.Duration `json:"strategy_timeout" validate:"min=1s"`
	ReviewLimit     int           `json:"review_limit" validate:"min=0,max=100"`
	QALimit         int           `json:"qa_limit" validate:"min=0,max=100"`
	ImageLimit      int           `json:"image_limit" validate:"min=1,max=50"`
	DumpEnabled     bool          `json:"dump_enabled"`
	DumpDir         string        `json:"dump_dir" validate:"required_if=DumpEnabled true"`
	DumpMaxBytes    int           `json:"dump_max_bytes" validate:"min=1024"`
}

// RedisConfig 캐시 백엔드가 redis 일 때 사용하는 접속 정보
type RedisConfig struct {
	Addr      string `json:"addr" validate:"omitempty,hostname_port"`
	Password  string `json:"password"`
	DB        int    `json:"db" validate:"min=0"`
	KeyPrefix string `json:"key_prefix"`
}

// BrowserConfig 헤드리스 브라우저 설정
type BrowserConfig struct {
	Engine            string         `json:"engine" validate:"oneof=playwright chromedp"`
	Headless          bool           `json:"headless"`
	ExecutablePath    string         `json:"executable_path" validate:"omitempty,file"`
	MaxConcurrent     int            `json:"max_concurrent" validate:"min=1,max=16"`
	NavigationTimeout time.Duration  `json:"navigation_timeout" validate:"min=1s"`
	SettleDelay       time.Duration  `json:"settle_delay"`
	ScrollCount       int            `json:"scroll_count" validate:"min=0,max=20"`
	UserAgent         string         `json:"user_agent" validate:"required"`
	Locale            string         `json:"locale" validate:"required"`
	Viewport          ViewportConfig `json:"viewport"`
}

// ViewportConfig 브라우저 뷰포트 크기
type ViewportConfig struct {
	Width  int `json:"width" validate:"min=320"`
	Height int `json:"height" validate:"min=240"`
}

// NaverConfig 네이버 스마트스토어 세션 및 요청 헤더 설정
type NaverConfig struct {
	Cookie             string        `json:"cookie"`
	UserAgent          string        `json:"user_agent" validate:"required"`
	Accept             string        `json:"accept"`
	AcceptLanguage     string        `json:"accept_language"`
	ClientVersion      string        `json:"client_version"`
	RefreshInterval    time.Duration `json:"refresh_interval"`
	RefreshSchedule    string        `json:"refresh_schedule" validate:"omitempty,cron_spec"`
	RefreshSettleDelay time.Duration `json:"refresh_settle_delay"`
	StorefrontURL      string        `json:"storefront_url" validate:"required,http_url"`
}

// CoupangConfig 쿠팡 파트너스 Open API 설정
type CoupangConfig struct {
	AccessKey      string `json:"access_key"`
	SecretKey      string `json:"secret_key" validate:"required_with=AccessKey"`
	APIBaseURL     string `json:"api_base_url" validate:"required,http_url"`
	AcceptLanguage string `json:"accept_language"`
}

// HasCredentials 쿠팡 Open API 호출에 필요한 키가 모두 설정되었는지 여부를 반환합니다.
func (c *CoupangConfig) HasCredentials() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// AlertConfig 운영 알림 설정
type AlertConfig struct {
	Telegram                TelegramConfig `json:"telegram"`
	RefreshFailureThreshold int            `json:"refresh_failure_threshold" validate:"min=1"`
}

// TelegramConfig 텔레그램 봇 설정. BotToken 이 비어있으면 알림을 보내지 않습니다.
type TelegramConfig struct {
	BotToken string `json:"bot_token" validate:"omitempty,telegram_bot_token"`
	ChatID   int64  `json:"chat_id" validate:"required_with=BotToken"`
}

// Enabled 텔레그램 알림이 활성화되었는지 여부를 반환합니다.
func (c *TelegramConfig) Enabled() bool {
	return c.BotToken != ""
}

// VerifyRecommendations 서비스 운영의 안정성을 위해 권장되는 설정 준수 여부를 진단합니다.
// 강제적인 에러를 발생시키지는 않으며 경고 메시지 목록만 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if c.HTTPServer.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.HTTPServer.ListenPort))
	}
	if c.Naver.Cookie == "" {
		warnings = append(warnings, "네이버 쿠키(naver.cookie)가 설정되지 않았습니다. 첫 요청 전까지 내부 API 호출이 거부될 수 있습니다")
	}
	if !c.Coupang.HasCredentials() {
		warnings = append(warnings, "쿠팡 Open API 키가 설정되지 않아 공식 API 전략을 건너뜁니다")
	}
	if c.Extractor.CacheBackend == CacheBackendRedis && c.Extractor.Redis.Addr == "" {
		warnings = append(warnings, "캐시 백엔드가 redis 이지만 접속 주소(extractor.redis.addr)가 비어있어 메모리 캐시를 사용합니다")
	}
	if c.Naver.RefreshInterval == 0 && c.Naver.RefreshSchedule == "" {
		warnings = append(warnings, "쿠키 자동 갱신 주기가 설정되지 않았습니다. 인증 오류가 발생할 때만 갱신합니다")
	}

	return warnings
}

func defaults() map[string]any {
	return map[string]any{
		"debug":       false,
		"environment": EnvDevelopment,

		"http_server.listen_port":                    3001,
		"http_server.allow_origins":                  []string{"*"},
		"http_server.request_timeout":                90 * time.Second,
		"http_server.rate_limit.requests_per_second": 5,
		"http_server.rate_limit.burst":               10,

		"extractor.cache_ttl":        60 * time.Second,
		"extractor.cache_backend":    CacheBackendMemory,
		"extractor.redis.key_prefix": AppName + ":",
		"extractor.strategy_timeout": 30 * time.Second,
		"extractor.review_limit":     20,
		"extractor.qa_limit":         20,
		"extractor.image_limit":      10,
		"extractor.dump_dir":         "debug",
		"extractor.dump_max_bytes":   2 * 1024 * 1024,

		"browser.engine":             BrowserEnginePlaywright,
		"browser.headless":           true,
		"browser.max_concurrent":     2,
		"browser.navigation_timeout": 30 * time.Second,
		"browser.settle_delay":       3 * time.Second,
		"browser.scroll_count":       3,
		"browser.user_agent":         DefaultUserAgent,
		"browser.locale":             "ko-KR",
		"browser.viewport.width":     1920,
		"browser.viewport.height":    1080,

		"naver.user_agent":           DefaultUserAgent,
		"naver.accept":               "application/json, text/plain, */*",
		"naver.accept_language":      "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
		"naver.client_version":       "20251016170128",
		"naver.refresh_interval":     6 * time.Hour,
		"naver.refresh_settle_delay": 5 * time.Second,
		"naver.storefront_url":       "https://smartstore.naver.com",

		"coupang.api_base_url":    "https://api-gateway.coupang.com",
		"coupang.accept_language": "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",

		"alert.refresh_failure_threshold": 3,
	}
}

// DefaultUserAgent 브라우저와 정적 요청에 사용하는 기본 User-Agent 입니다.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// legacyEnvKeys 구조화 이전부터 사용하던 환경 변수 이름과 설정 키의 대응표입니다.
var legacyEnvKeys = map[string]string{
	"PORT":                  "http_server.listen_port",
	"NODE_ENV":              "environment",
	"DEBUG":                 "debug",
	"HEADLESS":              "browser.headless",
	"NAVER_COOKIE":          "naver.cookie",
	"NAVER_USER_AGENT":      "naver.user_agent",
	"NAVER_ACCEPT":          "naver.accept",
	"NAVER_ACCEPT_LANGUAGE": "naver.accept_language",
	"COUPANG_ACCESS_KEY":    "coupang.access_key",
	"COUPANG_SECRET_KEY":    "coupang.secret_key",
}

func legacyEnv(lookup func(string) (string, bool)) map[string]any {
	m := make(map[string]any)
	for name, key := range legacyEnvKeys {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			m[key] = strings.TrimSpace(v)
		}
	}
	return m
}

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 기본값, 설정 파일, 환경 변수 순으로 설정을 겹쳐 AppConfig 를 생성합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	return load(filename, os.LookupEnv)
}

func load(filename string, lookupEnv func(string) (string, bool)) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값 로드 (가장 낮은 우선순위)
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드 (없으면 건너뜀)
	if filename != "" {
		if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
			}
		}
	}

	// 3. 구조화된 환경 변수 로드
	// 구분자: 이중 언더스코어(__)를 점(.)으로 변환 (예: EXTRACTOR_NAVER__COOKIE -> naver.cookie)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 기존 환경 변수 이름 (최우선 순위)
	if err := k.Load(confmap.Provider(legacyEnv(lookupEnv), "."), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 5. 구조체 언마샬링
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			ErrorUnused:      true,
			WeaklyTypedInput: true,
		},
	}
	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	// 덤프 저장 여부를 명시하지 않으면 디버그 모드를 따른다.
	if !k.Exists("extractor.dump_enabled") {
		appConfig.Extractor.DumpEnabled = appConfig.Debug
	}

	// 6. 유효성 검사
	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정 값의 유효성 검증에 실패했습니다")
	}

	return &appConfig, nil
}
