package validation

import (
	"github.com/darkkaiser/product-extractor/pkg/cronx"
)

// ValidateCronExpression 초 단위를 포함한 6필드 Cron 표현식인지 검증합니다.
// 빈 문자열은 "스케줄 없음"을 의미하므로 유효한 값으로 취급합니다.
func ValidateCronExpression(spec string) error {
	if spec == "" {
		return nil
	}
	_, err := cronx.Parse(spec)
	return err
}
