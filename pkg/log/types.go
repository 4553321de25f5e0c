package log

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Level logrus.Level 별칭입니다.
type Level = logrus.Level

const (
	PanicLevel Level = logrus.PanicLevel
	FatalLevel Level = logrus.FatalLevel
	ErrorLevel Level = logrus.ErrorLevel
	WarnLevel  Level = logrus.WarnLevel
	InfoLevel  Level = logrus.InfoLevel
	DebugLevel Level = logrus.DebugLevel
	TraceLevel Level = logrus.TraceLevel
)

// AllLevels 모든 로그 레벨입니다.
var AllLevels = logrus.AllLevels

type (
	Fields        = logrus.Fields
	Entry         = logrus.Entry
	Hook          = logrus.Hook
	Logger        = logrus.Logger
	Formatter     = logrus.Formatter
	JSONFormatter = logrus.JSONFormatter
	TextFormatter = logrus.TextFormatter
)

// StandardLogger 전역 로거를 반환합니다.
func StandardLogger() *Logger { return logrus.StandardLogger() }

// SetLevel 전역 로거의 레벨을 변경합니다.
func SetLevel(level Level) { logrus.SetLevel(level) }

// SetOutput 전역 로거의 기본 출력 대상을 변경합니다. 주로 테스트에서 로그를 캡처할 때 사용합니다.
func SetOutput(w io.Writer) { logrus.SetOutput(w) }

// SetFormatter 전역 로거의 포맷터를 변경합니다.
func SetFormatter(f Formatter) { logrus.SetFormatter(f) }

// WithFields 필드가 추가된 Entry 를 반환합니다.
func WithFields(fields Fields) *Entry { return logrus.WithFields(fields) }

// WithContext 컨텍스트가 연결된 Entry 를 반환합니다.
func WithContext(ctx context.Context) *Entry { return logrus.WithContext(ctx) }
