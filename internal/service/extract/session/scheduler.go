package session

import (
	"context"
	"sync"
	"time"

	"github.com/darkkaiser/product-extractor/internal/service/contract"
	"github.com/darkkaiser/product-extractor/pkg/cronx"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/robfig/cron/v3"
)

// refreshJobTimeout 예약된 갱신 한 번에 허용하는 최대 시간
const refreshJobTimeout = 2 * time.Minute

// Refreshable Scheduler 가 주기적으로 호출하는 갱신 대상입니다.
type Refreshable interface {
	Refresh(ctx context.Context, reason string) (Outcome, error)
}

// Scheduler 설정된 Cron 표현식 또는 고정 간격에 맞춰 쿠키를 갱신하는 서비스입니다.
// 표현식이 우선이며, 둘 다 비어있으면 아무것도 등록하지 않습니다.
type Scheduler struct {
	refresher Refreshable
	spec      string
	interval  time.Duration

	cron *cron.Cron

	running   bool
	runningMu sync.Mutex
}

var _ contract.Service = (*Scheduler)(nil)

// NewScheduler 새로운 Scheduler 를 생성합니다.
func NewScheduler(refresher Refreshable, spec string, interval time.Duration) *Scheduler {
	if refresher == nil {
		panic("Refresher는 필수입니다")
	}

	return &Scheduler{
		refresher: refresher,
		spec:      spec,
		interval:  interval,
	}
}

// Start 스케줄을 등록하고 Cron 엔진을 시작합니다. serviceStopCtx 가 취소되면 스스로 중지합니다.
func (s *Scheduler) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("쿠키 갱신 스케줄러가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	schedule, err := s.schedule()
	if err != nil {
		serviceStopWG.Done()
		return err
	}
	if schedule == nil {
		serviceStopWG.Done()
		applog.WithComponent(component).Info("쿠키 갱신 주기가 설정되지 않아 스케줄러를 시작하지 않습니다")
		return nil
	}

	s.cron = cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(cron.VerbosePrintfLogger(applog.StandardLogger())),
		cron.WithChain(
			cron.Recover(cron.VerbosePrintfLogger(applog.StandardLogger())),
			cron.SkipIfStillRunning(cron.VerbosePrintfLogger(applog.StandardLogger())),
		),
	)
	s.cron.Schedule(schedule, cron.FuncJob(s.run))
	s.cron.Start()
	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"spec":     s.spec,
		"interval": s.interval.String(),
	}).Info("쿠키 갱신 스케줄러 시작")

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.Stop()
	}()

	return nil
}

// Stop 스케줄러를 중지하고 실행 중인 갱신이 끝날 때까지 기다립니다.
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return
	}

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}

	s.cron = nil
	s.running = false

	applog.WithComponent(component).Info("쿠키 갱신 스케줄러 종료")
}

func (s *Scheduler) schedule() (cron.Schedule, error) {
	if s.spec != "" {
		schedule, err := cronx.Parse(s.spec)
		if err != nil {
			return nil, newErrInvalidSchedule(s.spec, err)
		}
		return schedule, nil
	}
	if s.interval > 0 {
		return cronx.Every(s.interval), nil
	}
	return nil, nil
}

// run 서비스 종료 신호와 분리된 컨텍스트로 실행합니다. cron.Stop 이 진행 중인 갱신의 완료를 기다립니다.
func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshJobTimeout)
	defer cancel()

	outcome, err := s.refresher.Refresh(ctx, "scheduled")
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"outcome": outcome,
			"error":   err,
		}).Warn("예약된 쿠키 갱신 실패")
	}
}
