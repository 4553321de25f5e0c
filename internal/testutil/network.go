// Package testutil 여러 패키지의 테스트에서 공통으로 사용하는 헬퍼를 제공합니다.
package testutil

import (
	"net"
	"strconv"
	"testing"
	"time"
)

// dialInterval 서버 리스닝 여부를 다시 확인하기까지의 간격
const dialInterval = 10 * time.Millisecond

// FreePort 로컬에서 비어있는 TCP 포트를 하나 골라 반환합니다.
// 반환 후 다른 프로세스가 먼저 점유할 수 있으므로 바로 사용해야 합니다.
func FreePort(tb testing.TB) int {
	tb.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("빈 포트를 찾지 못했습니다: %v", err)
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}

// WaitForListen port 에 TCP 연결이 가능해질 때까지 기다립니다. timeout 안에 열리지 않으면 테스트를 중단합니다.
func WaitForListen(tb testing.TB, port int, timeout time.Duration) {
	tb.Helper()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.DialTimeout("tcp", addr, dialInterval)
		if err == nil {
			_ = conn.Close()
			return
		}
		if time.Now().After(deadline) {
			tb.Fatalf("서버가 %v 안에 %s 에서 리스닝하지 않았습니다: %v", timeout, addr, err)
		}
		time.Sleep(dialInterval)
	}
}
