// Package dump 운영자가 추출 실패 원인을 살펴볼 수 있도록 페이지 HTML, 스크린샷, 프레임, 내부 API 응답을
// 파일로 남깁니다.
//
// 덤프는 최선 노력으로만 기록되며 실패는 로그만 남기고 요청 처리에 영향을 주지 않습니다.
// 같은 상품의 덤프는 최신 내용으로 덮어씁니다.
package dump

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/darkkaiser/product-extractor/internal/service/extract/strategy"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
)

const component = "extract.dump"

// DefaultMaxBytes 파일 하나의 기본 최대 크기 (2MB)
const DefaultMaxBytes = 2 * 1024 * 1024

// tempFilePattern 원자적 쓰기에 사용하는 임시 파일 이름 패턴
const tempFilePattern = "dump-*.tmp"

// 덤프 종류 (파일명 접두사)
const (
	KindPage     = "page"
	KindShot     = "shot"
	KindFrame    = "frame"
	KindResponse = "resp"
)

// Writer 덤프 파일을 기록합니다. nil Writer 의 메서드는 아무것도 하지 않습니다.
type Writer struct {
	dir      string
	maxBytes int
}

var _ strategy.Dumper = (*Writer)(nil)

// New dir 에 덤프를 기록하는 Writer 를 생성합니다. 디렉터리가 없으면 만듭니다.
func New(dir string, maxBytes int) (*Writer, error) {
	if dir == "" {
		dir = "debug"
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, newErrDirectoryAccessFailed(err, dir)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, newErrDirectoryAccessFailed(err, absDir)
	}

	return &Writer{dir: absDir, maxBytes: maxBytes}, nil
}

// Dir 덤프 디렉터리의 절대 경로입니다.
func (w *Writer) Dir() string { return w.dir }

func (w *Writer) Page(name, html string) {
	w.write(filename(KindPage, name, ".html"), []byte(html))
}

func (w *Writer) Frame(name string, index int, html string) {
	w.write(filename(KindFrame, name+" "+strconv.Itoa(index), ".html"), []byte(html))
}

func (w *Writer) Screenshot(name string, png []byte) {
	w.write(filename(KindShot, name, ".png"), png)
}

func (w *Writer) Response(name string, body []byte) {
	w.write(filename(KindResponse, name, ".json"), body)
}

func (w *Writer) write(name string, data []byte) {
	if w == nil || len(data) == 0 {
		return
	}

	truncated := false
	if len(data) > w.maxBytes {
		data = data[:w.maxBytes]
		truncated = true
	}

	path := filepath.Join(w.dir, name)
	if err := writeAtomic(path, data); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"file":  path,
			"error": err,
		}).Warn("디버그 덤프 저장 실패")
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"file":      path,
		"bytes":     len(data),
		"truncated": truncated,
	}).Debug("디버그 덤프 저장")
}

// writeAtomic 임시 파일에 쓴 뒤 이름을 바꿔, 읽는 쪽이 반쯤 쓰인 파일을 보지 않게 합니다.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return newErrFileWriteFailed(err, path)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return newErrFileWriteFailed(err, path)
	}
	if err := tmp.Close(); err != nil {
		return newErrFileWriteFailed(err, path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return newErrFileWriteFailed(err, path)
	}
	return nil
}
