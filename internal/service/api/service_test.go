package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/product-extractor/internal/config"
	"github.com/darkkaiser/product-extractor/internal/pkg/version"
	"github.com/darkkaiser/product-extractor/internal/service/extract"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/session"
	"github.com/darkkaiser/product-extractor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// =============================================================================
// Test Helpers
// =============================================================================

type fakeExtractor struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeExtractor) Extract(_ context.Context, rawURL string) extract.Result {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	f.mu.Unlock()

	return extract.Result{
		Kind: extract.KindSucceeded,
		Envelope: &model.ExtractionResult{
			OK:        true,
			Vendor:    model.VendorNaver,
			ProductID: "5012345678",
			Product:   model.ProductRecord{Name: "유기농 현미 4kg", Images: []string{}, Source: model.SourceAPI},
			Reviews:   []model.ReviewRecord{},
			QA:        []model.QARecord{},
		},
	}
}

type fakeSession struct{}

func (fakeSession) Summary() session.Summary {
	return session.Summary{HasCookie: true}
}

type fakeCache struct{}

func (fakeCache) CacheBackend() string { return "memory" }

func newTestConfig(port int) *config.AppConfig {
	appConfig := &config.AppConfig{Debug: true}
	appConfig.HTTPServer.ListenPort = port
	appConfig.HTTPServer.AllowOrigins = []string{"*"}
	appConfig.HTTPServer.RequestTimeout = 5 * time.Second
	appConfig.HTTPServer.RateLimit = config.RateLimitConfig{RequestsPerSecond: 5, Burst: 10}
	return appConfig
}

func newTestDependencies() Dependencies {
	return Dependencies{
		Extractor: &fakeExtractor{},
		Session:   fakeSession{},
		Cache:     fakeCache{},
	}
}

// startService 서비스를 시작하고 서버가 리스닝할 때까지 기다립니다.
func startService(t *testing.T, s *Service) (context.CancelFunc, *sync.WaitGroup) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)

	require.NoError(t, s.Start(ctx, wg))
	testutil.WaitForListen(t, s.appConfig.HTTPServer.ListenPort, 5*time.Second)

	return cancel, wg
}

func waitGroupDone(wg *sync.WaitGroup, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

var testClient = &http.Client{
	Timeout:   5 * time.Second,
	Transport: &http.Transport{DisableKeepAlives: true},
}

// =============================================================================
// Constructor Tests
// =============================================================================

func TestNewService(t *testing.T) {
	t.Parallel()

	t.Run("정상 생성", func(t *testing.T) {
		t.Parallel()

		appConfig := newTestConfig(8080)
		deps := newTestDependencies()
		buildInfo := version.Info{Version: "1.2.3"}

		s := NewService(appConfig, deps, buildInfo)

		assert.Equal(t, appConfig, s.appConfig)
		assert.Equal(t, deps.Extractor, s.deps.Extractor)
		assert.Equal(t, buildInfo, s.buildInfo)
		assert.False(t, s.running, "초기 상태는 running=false여야 함")
	})

	t.Run("설정 누락 시 패닉", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "AppConfig는 필수입니다", func() {
			NewService(nil, newTestDependencies(), version.Info{})
		})
	})
}

// =============================================================================
// Server Setup Tests
// =============================================================================

func TestService_setupServer(t *testing.T) {
	t.Parallel()

	s := NewService(newTestConfig(8080), newTestDependencies(), version.Info{})

	e := s.setupServer()
	require.NotNil(t, e)
	assert.True(t, e.Debug, "Config의 Debug가 true이면 Echo Debug도 true여야 함")

	routes := make(map[string]bool)
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /api/health",
		"GET /version",
		"POST /api/extract",
		"POST /api/cookie/refresh",
		"GET /swagger/*",
	} {
		assert.True(t, routes[want], "라우트가 등록되어야 합니다: %s", want)
	}
	assert.False(t, routes["GET /metrics"], "Metrics 핸들러가 없으면 /metrics 를 등록하지 않습니다")
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestService_Start_ExtractorMissing(t *testing.T) {
	t.Parallel()

	s := NewService(newTestConfig(8080), Dependencies{}, version.Info{})

	wg := &sync.WaitGroup{}
	wg.Add(1)

	err := s.Start(context.Background(), wg)
	require.ErrorIs(t, err, ErrExtractorNotInitialized)
	assert.True(t, waitGroupDone(wg, time.Second), "실패 시에도 WaitGroup 을 완료해야 합니다")
	assert.False(t, s.running)
}

func TestService_StartAndShutdown(t *testing.T) {
	port := testutil.FreePort(t)

	extractor := &fakeExtractor{}
	deps := newTestDependencies()
	deps.Extractor = extractor

	s := NewService(newTestConfig(port), deps, version.Info{Version: "1.0.0"})
	cancel, wg := startService(t, s)

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	t.Run("헬스체크", func(t *testing.T) {
		resp, err := testClient.Get(baseURL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
		assert.EqualValues(t, port, body["port"])
	})

	t.Run("상품 추출", func(t *testing.T) {
		resp, err := testClient.Post(baseURL+"/api/extract", "application/json",
			strings.NewReader(`{"url":"https://smartstore.naver.com/miliving/products/5012345678"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got model.ExtractionResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.True(t, got.OK)
		assert.Equal(t, model.VendorNaver, got.Vendor)
		assert.Equal(t, "5012345678", got.ProductID)
		assert.Equal(t, "유기농 현미 4kg", got.Product.Name)
		assert.NotEmpty(t, resp.Header.Get("X-Request-Id"), "요청 ID 헤더가 있어야 합니다")
	})

	t.Run("쿠키 갱신 비활성화", func(t *testing.T) {
		resp, err := testClient.Post(baseURL+"/api/cookie/refresh", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("중복 시작은 무시", func(t *testing.T) {
		wg.Add(1)
		require.NoError(t, s.Start(context.Background(), wg))
	})

	cancel()
	require.True(t, waitGroupDone(wg, 10*time.Second), "서비스가 제한 시간 내에 종료되어야 합니다")

	extractor.mu.Lock()
	assert.Equal(t, []string{"https://smartstore.naver.com/miliving/products/5012345678"}, extractor.calls)
	extractor.mu.Unlock()

	s.runningMu.Lock()
	assert.False(t, s.running, "종료 후 running=false여야 함")
	s.runningMu.Unlock()
}

func TestService_PortInUse(t *testing.T) {
	port := testutil.FreePort(t)

	first := NewService(newTestConfig(port), newTestDependencies(), version.Info{})
	cancel, wg := startService(t, first)
	defer func() {
		cancel()
		waitGroupDone(wg, 10*time.Second)
	}()

	second := NewService(newTestConfig(port), newTestDependencies(), version.Info{})
	secondWG := &sync.WaitGroup{}
	secondWG.Add(1)

	ctx, cancelSecond := context.WithCancel(context.Background())
	defer cancelSecond()

	require.NoError(t, second.Start(ctx, secondWG))
	assert.True(t, waitGroupDone(secondWG, 5*time.Second), "포트 바인딩에 실패하면 서비스 루프가 스스로 종료되어야 합니다")
}
