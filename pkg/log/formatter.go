package log

import "github.com/sirupsen/logrus"

// discardFormatter 표준 로거 자체의 출력을 만들지 않습니다.
// 파일과 콘솔 출력은 모두 hook 이 자신의 포맷터로 기록합니다.
type discardFormatter struct{}

var _ logrus.Formatter = discardFormatter{}

func (discardFormatter) Format(*logrus.Entry) ([]byte, error) {
	return nil, nil
}
