package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/darkkaiser/product-extractor/internal/config"
	"github.com/darkkaiser/product-extractor/internal/pkg/version"
	"github.com/darkkaiser/product-extractor/internal/service/alert"
	"github.com/darkkaiser/product-extractor/internal/service/api"
	"github.com/darkkaiser/product-extractor/internal/service/contract"
	"github.com/darkkaiser/product-extractor/internal/service/extract"
	"github.com/darkkaiser/product-extractor/internal/service/extract/browser"
	"github.com/darkkaiser/product-extractor/internal/service/extract/cache"
	"github.com/darkkaiser/product-extractor/internal/service/extract/dump"
	"github.com/darkkaiser/product-extractor/internal/service/extract/metrics"
	"github.com/darkkaiser/product-extractor/internal/service/extract/session"
	"github.com/darkkaiser/product-extractor/internal/service/extract/strategy"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title Product Extractor API
// @version 1.0.0
// @description 네이버 스마트스토어와 쿠팡 상품 페이지에서 상품 정보, 리뷰, Q&A 를 추출하는 서버의 REST API입니다.
// @description
// @description ## 주요 기능
// @description - 상품 URL 하나로 상품 정보, 리뷰, Q&A 추출
// @description - 내장 JSON, 내부 API, 헤드리스 브라우저, 정적 HTML 순서의 다단계 추출
// @description - 네이버 세션 쿠키 자동 갱신
// @description
// @description ## 응답 형식
// @description 추출 결과는 성공과 실패 모두 같은 형식(ok, error, debug 포함)으로 반환됩니다.
// @description debug.strategies 에서 각 추출 단계의 시도 결과를 확인할 수 있습니다.

// @contact.name DarkKaiser
// @contact.url https://github.com/DarkKaiser
// @contact.email darkkaiser@gmail.com

// @license.name MIT

// @BasePath /

const banner = `
  ____                _            _     _____      _                  _
 |  _ \ _ __ ___   __| |_   _  ___| |_  | ____|_  _| |_ _ __ __ _  ___| |_ ___  _ __
 | |_) | '__/ _ \ / _' | | | |/ __| __| |  _| \ \/ / __| '__/ _' |/ __| __/ _ \| '__|
 |  __/| | | (_) | (_| | |_| | (__| |_  | |___ >  <| |_| | | (_| | (__| || (_) | |
 |_|   |_|  \___/ \__,_|\__,_|\___|\__| |_____/_/\_\\__|_|  \__,_|\___|\__\___/|_|
                                                                            %s
                                                            developed by DarkKaiser
--------------------------------------------------------------------------------------
`

func main() {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := config.Load()
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	var logOpts applog.Options
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	} else {
		logOpts = applog.NewProductionOptions(config.AppName)
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	applog.SetDebugMode(appConfig.Debug)

	buildInfo := version.Get()

	fmt.Printf(banner, buildInfo.Version)

	applog.WithComponentAndFields("main", applog.Fields{
		"version": buildInfo.String(),
		"env":     appConfig.Environment,
	}).Info("서버 초기화 시작")

	for _, warning := range appConfig.VerifyRecommendations() {
		applog.WithComponent("main").Warn(warning)
	}

	if err := run(appConfig, buildInfo); err != nil {
		applog.WithComponentAndFields("main", applog.Fields{
			"error": err,
		}).Error("서버 구동 실패로 프로그램을 종료합니다")

		appLogCloser.Close()
		os.Exit(1)
	}
}

// run 구성 요소를 생성하고 서비스를 시작한 뒤, 종료 시그널을 받으면 모든 서비스가 멈출 때까지 기다립니다.
func run(appConfig *config.AppConfig, buildInfo version.Info) error {
	serviceStopCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 추출 결과 캐시
	resultCache, err := cache.New(serviceStopCtx, cache.Config{
		Backend:       appConfig.Extractor.CacheBackend,
		TTL:           appConfig.Extractor.CacheTTL,
		RedisAddr:     appConfig.Extractor.Redis.Addr,
		RedisPassword: appConfig.Extractor.Redis.Password,
		RedisDB:       appConfig.Extractor.Redis.DB,
		KeyPrefix:     appConfig.Extractor.Redis.KeyPrefix,
	})
	if err != nil {
		return err
	}
	defer resultCache.Close()

	// 지표
	registry := prometheus.DefaultRegisterer
	extractMetrics := metrics.New(registry)

	// 헤드리스 브라우저 (첫 페이지 요청 시 프로세스를 띄운다)
	engine, err := browser.NewEngine(browser.Config{
		Engine:            appConfig.Browser.Engine,
		Headless:          appConfig.Browser.Headless,
		ExecutablePath:    appConfig.Browser.ExecutablePath,
		NavigationTimeout: appConfig.Browser.NavigationTimeout,
	})
	if err != nil {
		return err
	}
	pool := browser.NewPool(engine, appConfig.Browser.MaxConcurrent)
	defer pool.Close()

	metrics.RegisterBrowserGauges(registry,
		func() float64 { return float64(pool.Stats().InUse) },
		func() float64 { return float64(pool.Stats().Capacity) },
	)

	// 네이버 세션
	store := session.NewStore(session.Session{
		Cookie:    appConfig.Naver.Cookie,
		UserAgent: appConfig.Naver.UserAgent,
	})

	var notifier session.FailureNotifier
	if appConfig.Alert.Telegram.Enabled() {
		telegramNotifier, err := alert.NewTelegramNotifier(appConfig.Alert.Telegram, appConfig.Debug)
		if err != nil {
			applog.WithComponentAndFields("main", applog.Fields{
				"error": err,
			}).Warn("텔레그램 알림을 초기화하지 못했습니다. 쿠키 갱신 실패 알림 없이 계속합니다")
		} else {
			notifier = telegramNotifier
		}
	}

	refresher := session.NewRefresher(store, pool, notifier, session.RefresherConfig{
		StorefrontURL:    appConfig.Naver.StorefrontURL,
		UserAgent:        appConfig.Naver.UserAgent,
		Locale:           appConfig.Browser.Locale,
		SettleDelay:      appConfig.Naver.RefreshSettleDelay,
		MaxAge:           appConfig.Naver.RefreshInterval,
		FailureThreshold: appConfig.Alert.RefreshFailureThreshold,
		OnOutcome: func(o session.Outcome) {
			extractMetrics.ObserveSessionRefresh(string(o))
		},
	})

	// 디버그 덤프
	var dumper strategy.Dumper
	if appConfig.Extractor.DumpEnabled {
		w, err := dump.New(appConfig.Extractor.DumpDir, appConfig.Extractor.DumpMaxBytes)
		if err != nil {
			return err
		}
		dumper = w
	}

	// 추출 파이프라인
	pipeline := extract.New(extract.NewPlans(extract.Deps{
		Config:    appConfig,
		Browser:   pool,
		Session:   store,
		Refresher: refresher,
		Dumper:    dumper,
	}), resultCache, extractMetrics, extract.Config{
		StrategyTimeout: appConfig.Extractor.StrategyTimeout,
	})

	apiService := api.NewService(appConfig, api.Dependencies{
		Extractor: pipeline,
		Refresher: refresher,
		Session:   refresher,
		Browser:   pool,
		Cache:     pipeline,
		Metrics:   promhttp.Handler(),
	}, buildInfo)

	scheduler := session.NewScheduler(refresher, appConfig.Naver.RefreshSchedule, appConfig.Naver.RefreshInterval)

	serviceStopWG := &sync.WaitGroup{}

	// 서비스를 시작한다.
	services := []contract.Service{scheduler, apiService}
	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			cancel() // 이미 시작된 서비스도 종료
			serviceStopWG.Wait()

			return err
		}
	}

	// 쿠키가 없거나 오래되었으면 첫 요청 전에 미리 갱신한다.
	serviceStopWG.Add(1)
	go func() {
		defer serviceStopWG.Done()

		if _, err := refresher.RefreshIfStale(serviceStopCtx); err != nil {
			applog.WithComponentAndFields("main", applog.Fields{
				"error": err,
			}).Warn("시작 시 쿠키 갱신에 실패했습니다. 기존 쿠키로 계속합니다")
		}
	}()

	// Handle sigterm and await termC signal
	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent("main").Info("서버 가동 완료")

	<-termC // Blocks here until interrupted

	applog.WithComponent("main").Info("Shutdown signal received")
	cancel()             // Signal cancellation to context.Context
	serviceStopWG.Wait() // Block here until are workers are done

	return nil
}
