// Package log 서비스 전역에서 사용하는 구조화 로거입니다.
//
// logrus 전역 로거를 기반으로 하며, Setup 으로 lumberjack 로테이션 파일 출력을 구성합니다.
// 각 컴포넌트는 WithComponent 로 "component" 필드를 붙여 기록합니다.
package log

import (
	"maps"

	"github.com/sirupsen/logrus"
)

// SetDebugMode 디버그 모드면 Trace, 아니면 Info 레벨로 설정합니다.
func SetDebugMode(debug bool) {
	if debug {
		logrus.SetLevel(logrus.TraceLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// MaskSensitiveData 쿠키, 키, 서명 등의 민감 정보를 로그에 남길 수 있도록 가립니다.
func MaskSensitiveData(data string) string {
	switch {
	case data == "":
		return ""
	case len(data) <= 3:
		return "***"
	case len(data) <= 12:
		return data[:4] + "***"
	default:
		return data[:4] + "***" + data[len(data)-4:]
	}
}

// WithComponent component 필드가 포함된 Entry 를 반환합니다.
func WithComponent(component string) *Entry {
	return logrus.WithField("component", component)
}

// WithComponentAndFields component 필드와 추가 필드가 포함된 Entry 를 반환합니다.
func WithComponentAndFields(component string, fields Fields) *Entry {
	merged := make(Fields, len(fields)+1)
	maps.Copy(merged, fields)
	merged["component"] = component
	return logrus.WithFields(merged)
}
