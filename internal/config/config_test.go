package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func mapEnv(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, err := load(filepath.Join(t.TempDir(), "missing.json"), noEnv)
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 3001, cfg.HTTPServer.ListenPort)
	assert.Equal(t, []string{"*"}, cfg.HTTPServer.AllowOrigins)
	assert.Equal(t, 90*time.Second, cfg.HTTPServer.RequestTimeout)

	assert.Equal(t, 60*time.Second, cfg.Extractor.CacheTTL)
	assert.Equal(t, CacheBackendMemory, cfg.Extractor.CacheBackend)
	assert.Equal(t, 30*time.Second, cfg.Extractor.StrategyTimeout)
	assert.Equal(t, 20, cfg.Extractor.ReviewLimit)
	assert.Equal(t, 2*1024*1024, cfg.Extractor.DumpMaxBytes)
	assert.False(t, cfg.Extractor.DumpEnabled, "디버그 모드가 아니면 덤프를 저장하지 않아야 합니다")

	assert.Equal(t, BrowserEnginePlaywright, cfg.Browser.Engine)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 2, cfg.Browser.MaxConcurrent)
	assert.Equal(t, 1920, cfg.Browser.Viewport.Width)

	assert.Equal(t, 6*time.Hour, cfg.Naver.RefreshInterval)
	assert.Equal(t, "https://api-gateway.coupang.com", cfg.Coupang.APIBaseURL)
	assert.Equal(t, "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7", cfg.Coupang.AcceptLanguage)
	assert.False(t, cfg.Coupang.HasCredentials())
	assert.False(t, cfg.Alert.Telegram.Enabled())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `{
		"debug": true,
		"http_server": { "listen_port": 8080, "allow_origins": ["http://localhost:5173"] },
		"extractor": { "cache_ttl": "2m", "review_limit": 5 },
		"browser": { "engine": "chromedp", "max_concurrent": 4 },
		"naver": { "refresh_schedule": "0 0 */6 * * *" }
	}`)

	cfg, err := load(path, noEnv)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 8080, cfg.HTTPServer.ListenPort)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTPServer.AllowOrigins)
	assert.Equal(t, 2*time.Minute, cfg.Extractor.CacheTTL)
	assert.Equal(t, 5, cfg.Extractor.ReviewLimit)
	assert.Equal(t, 20, cfg.Extractor.QALimit, "파일에 없는 값은 기본값을 유지해야 합니다")
	assert.Equal(t, BrowserEngineChromedp, cfg.Browser.Engine)
	assert.Equal(t, 4, cfg.Browser.MaxConcurrent)
	assert.True(t, cfg.Extractor.DumpEnabled, "dump_enabled 를 지정하지 않으면 debug 값을 따라야 합니다")
}

func TestLoad_LegacyEnvironmentVariables(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `{ "http_server": { "listen_port": 8080 }, "browser": { "headless": true } }`)

	cfg, err := load(path, mapEnv(map[string]string{
		"PORT":               "9090",
		"NODE_ENV":           "production",
		"HEADLESS":           "false",
		"DEBUG":              "true",
		"NAVER_COOKIE":       "NNB=abc; NID_AUT=xyz",
		"NAVER_USER_AGENT":   "test-agent",
		"COUPANG_ACCESS_KEY": "access",
		"COUPANG_SECRET_KEY": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPServer.ListenPort, "환경 변수가 설정 파일보다 우선해야 합니다")
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Browser.Headless)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "NNB=abc; NID_AUT=xyz", cfg.Naver.Cookie)
	assert.Equal(t, "test-agent", cfg.Naver.UserAgent)
	assert.True(t, cfg.Coupang.HasCredentials())
}

// 프로세스 환경 변수를 변경하므로 병렬로 실행하지 않는다.
func TestLoad_PrefixedEnvironmentVariables(t *testing.T) {
	t.Setenv("EXTRACTOR_BROWSER__MAX_CONCURRENT", "3")
	t.Setenv("EXTRACTOR_EXTRACTOR__CACHE_BACKEND", "redis")
	t.Setenv("EXTRACTOR_EXTRACTOR__REDIS__ADDR", "localhost:6379")

	cfg, err := load("", noEnv)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Browser.MaxConcurrent)
	assert.Equal(t, CacheBackendRedis, cfg.Extractor.CacheBackend)
	assert.Equal(t, "localhost:6379", cfg.Extractor.Redis.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{
			name:        "JSON 문법 오류",
			content:     `{ "debug": `,
			errContains: "설정 파일 로드 중 오류",
		},
		{
			name:        "정의되지 않은 키",
			content:     `{ "unknown_key": 1 }`,
			errContains: "구조체로 변환",
		},
		{
			name:        "포트 범위 초과",
			content:     `{ "http_server": { "listen_port": 70000 } }`,
			errContains: "http_server.listen_port",
		},
		{
			name:        "지원하지 않는 브라우저 엔진",
			content:     `{ "browser": { "engine": "firefox" } }`,
			errContains: "browser.engine",
		},
		{
			name:        "잘못된 CORS Origin",
			content:     `{ "http_server": { "allow_origins": ["https://example.com/"] } }`,
			errContains: "CORS Origin",
		},
		{
			name:        "와일드카드와 도메인 혼용",
			content:     `{ "http_server": { "allow_origins": ["*", "https://example.com"] } }`,
			errContains: "와일드카드",
		},
		{
			name:        "5필드 Cron 표현식",
			content:     `{ "naver": { "refresh_schedule": "0 */6 * * *" } }`,
			errContains: "naver.refresh_schedule",
		},
		{
			name:        "쿠팡 Secret Key 누락",
			content:     `{ "coupang": { "access_key": "access" } }`,
			errContains: "coupang.secret_key",
		},
		{
			name:        "잘못된 텔레그램 토큰",
			content:     `{ "alert": { "telegram": { "bot_token": "invalid", "chat_id": 1 } } }`,
			errContains: "alert.telegram.bot_token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := load(writeConfigFile(t, tt.content), noEnv)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestVerifyRecommendations(t *testing.T) {
	t.Parallel()

	cfg, err := load("", noEnv)
	require.NoError(t, err)

	warnings := cfg.VerifyRecommendations()
	assert.NotEmpty(t, warnings)

	cfg.Naver.Cookie = "NNB=abc"
	cfg.Coupang.AccessKey, cfg.Coupang.SecretKey = "a", "b"
	assert.Empty(t, cfg.VerifyRecommendations())
}
