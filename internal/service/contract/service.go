// Package contract 서비스 간에 공유하는 인터페이스를 정의합니다.
package contract

import (
	"context"
	"sync"
)

// Service 프로세스 수명 동안 백그라운드에서 동작하는 구성 요소입니다.
//
// Start 는 즉시 반환되어야 하며, serviceStopCtx 가 취소되면 정리 작업을 마친 뒤
// serviceStopWG.Done() 을 호출해야 합니다. 시작에 실패한 경우에도 Done() 은 호출되어야 합니다.
type Service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}
