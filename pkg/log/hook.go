package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// hook 레벨에 따라 로그를 분배합니다.
//
//   - console: 모든 레벨
//   - critical: ERROR 이상
//   - verbose: DEBUG 이하 (main 으로는 가지 않음)
//   - main: INFO 이상
type hook struct {
	mainWriter     io.Writer
	criticalWriter io.Writer
	verboseWriter  io.Writer
	consoleWriter  io.Writer

	formatter Formatter

	mu     sync.RWMutex
	closed bool
}

func (h *hook) Levels() []Level {
	return AllLevels
}

func (h *hook) Fire(entry *Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}

	msg, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	if h.consoleWriter != nil {
		if _, err := h.consoleWriter.Write(msg); err != nil {
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-WARN] 콘솔 출력 실패: %v\n", err)
		}
	}

	var firstErr error
	record := func(w io.Writer, name string) {
		if w == nil {
			return
		}
		if _, err := w.Write(msg); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-FAILURE] %s 로그 파일 쓰기 실패: %v\n", name, err)
		}
	}

	if entry.Level <= ErrorLevel {
		record(h.criticalWriter, "Critical")
	}

	if entry.Level >= DebugLevel {
		record(h.verboseWriter, "Verbose")
		return firstErr
	}

	record(h.mainWriter, "Main")

	return firstErr
}

// Close 이후의 모든 Fire 호출을 무시하도록 전환합니다. 진행 중인 Fire 가 끝날 때까지 기다립니다.
func (h *hook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	return nil
}
