package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
	"github.com/darkkaiser/product-extractor/pkg/validation"
	"github.com/go-playground/validator/v10"
)

var (
	// 텔레그램 봇 토큰 형식 (예: 123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11)
	telegramBotTokenRegex = regexp.MustCompile(`^\d{3,20}:[a-zA-Z0-9_-]{30,50}$`)

	validate = newValidator()
)

// newValidator 새로운 Validator 인스턴스를 생성하고 커스텀 유효성 검사 함수를 등록합니다.
func newValidator() *validator.Validate {
	v := validator.New()

	// 검증 에러 메시지에 Go 필드명 대신 설정 파일의 JSON 키 이름이 나오도록 한다.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, fn := range map[string]validator.Func{
		"cors_origin":        validateCORSOrigin,
		"cron_spec":          validateCronSpec,
		"telegram_bot_token": validateTelegramBotToken,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("초기화 치명적 오류: '%s' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", tag, err))
		}
	}

	return v
}

func validateCORSOrigin(fl validator.FieldLevel) bool {
	return validation.ValidateCORSOrigin(fl.Field().String()) == nil
}

func validateCronSpec(fl validator.FieldLevel) bool {
	return validation.ValidateCronExpression(fl.Field().String()) == nil
}

func validateTelegramBotToken(fl validator.FieldLevel) bool {
	return telegramBotTokenRegex.MatchString(fl.Field().String())
}

// validate 설정 로드 직후 각 항목의 정합성을 검증합니다.
func (c *AppConfig) validate() error {
	if err := checkStruct(c); err != nil {
		return err
	}

	// 와일드카드는 단독으로만 사용할 수 있다.
	if slices.Contains(c.HTTPServer.AllowOrigins, "*") && len(c.HTTPServer.AllowOrigins) > 1 {
		return apperrors.New(apperrors.InvalidInput, "와일드카드(*)는 다른 도메인과 함께 사용할 수 없습니다. 모든 도메인을 허용하려면 와일드카드만 설정하세요")
	}

	if c.Extractor.CacheBackend == CacheBackendRedis && c.IsProduction() && c.Extractor.Redis.Addr == "" {
		return apperrors.New(apperrors.InvalidInput, "운영 환경에서 redis 캐시를 사용하려면 접속 주소(extractor.redis.addr)가 필요합니다")
	}

	return nil
}

// checkStruct 구조체의 유효성을 검사하고, 첫 번째 위반 항목의 설정 키를 담은 에러를 반환합니다.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return apperrors.Wrap(err, apperrors.InvalidInput, "설정 유효성 검증에 실패했습니다")
	}

	fieldErr := validationErrors[0]
	key := configKey(fieldErr.Namespace())

	switch fieldErr.Tag() {
	case "cors_origin":
		return apperrors.Newf(apperrors.InvalidInput, "CORS Origin 형식이 올바르지 않습니다: '%v' (형식: Scheme://Host[:Port], 예: https://example.com)", fieldErr.Value())
	case "cron_spec":
		return apperrors.Newf(apperrors.InvalidInput, "%s 의 Cron 표현식이 올바르지 않습니다: '%v' (초 단위를 포함한 6필드 형식, 예: 0 0 */6 * * *)", key, fieldErr.Value())
	case "telegram_bot_token":
		return apperrors.Newf(apperrors.InvalidInput, "%s 의 텔레그램 봇 토큰 형식이 올바르지 않습니다", key)
	case "oneof":
		return apperrors.Newf(apperrors.InvalidInput, "%s 의 값 '%v' 은(는) 허용되지 않습니다 (허용: %s)", key, fieldErr.Value(), fieldErr.Param())
	case "required", "required_if", "required_with":
		return apperrors.Newf(apperrors.InvalidInput, "%s 설정은 필수입니다", key)
	}

	return apperrors.Newf(apperrors.InvalidInput, "%s 설정이 올바르지 않습니다: '%v' (조건: %s)", key, fieldErr.Value(), fieldErr.ActualTag())
}

// configKey "AppConfig.http_server.listen_port" 형태의 네임스페이스에서 루트 구조체 이름을 제거합니다.
func configKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
