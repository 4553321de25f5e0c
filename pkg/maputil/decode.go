// Package maputil 느슨한 타입의 JSON 맵을 구조체로 변환합니다.
//
// 벤더 내부 API 응답은 같은 필드가 숫자로 오기도 하고 문자열로 오기도 하며,
// 작성자처럼 객체({"name": ...})로 오는 값도 있어 mapstructure 의 약한 타입 변환과
// 전용 훅을 함께 사용합니다.
package maputil

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode input 을 T 로 디코딩한 새 값을 반환합니다.
//
//	product, err := maputil.Decode[naverProduct](raw)
func Decode[T any](input any, opts ...Option) (*T, error) {
	output := new(T)
	if err := DecodeTo(input, output, opts...); err != nil {
		return nil, err
	}
	return output, nil
}

// DecodeTo input 을 output 에 병합하여 디코딩합니다.
func DecodeTo[T any](input any, output *T, opts ...Option) error {
	if output == nil {
		return errors.New("디코딩 결과를 저장할 output 포인터가 nil입니다")
	}

	cfg := &decodingConfig{
		tagName:          "json",
		weaklyTypedInput: true,
		squash:           true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		TagName:          cfg.tagName,
		WeaklyTypedInput: cfg.weaklyTypedInput,
		ErrorUnused:      cfg.errorUnused,
		Squash:           cfg.squash,
		DecodeHook:       cfg.buildDecodeHook(),
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("입력 데이터를 %T(으)로 디코딩하는 데 실패했습니다: %w", output, err)
	}
	return nil
}

type decodingConfig struct {
	tagName          string
	weaklyTypedInput bool
	errorUnused      bool
	squash           bool
	extraHooks       []mapstructure.DecodeHookFunc
}

func (c *decodingConfig) buildDecodeHook() mapstructure.DecodeHookFunc {
	hooks := make([]mapstructure.DecodeHookFunc, 0, len(c.extraHooks)+2)
	hooks = append(hooks, c.extraHooks...)
	hooks = append(hooks,
		mapstructure.StringToTimeDurationHookFunc(),
		floatToIntegerStringHookFunc(),
	)
	return mapstructure.ComposeDecodeHookFunc(hooks...)
}

// Option 디코딩 동작을 바꾸는 함수형 옵션입니다.
type Option func(*decodingConfig)

// WithTagName 필드 매핑에 사용할 태그 이름을 지정합니다. (기본값: "json")
func WithTagName(tagName string) Option {
	return func(c *decodingConfig) { c.tagName = tagName }
}

// WithErrorUnused 구조체에 없는 키가 있으면 에러를 반환합니다. (기본값: false)
func WithErrorUnused(enable bool) Option {
	return func(c *decodingConfig) { c.errorUnused = enable }
}

// WithDecodeHook 기본 훅보다 먼저 실행될 훅을 추가합니다.
func WithDecodeHook(hooks ...mapstructure.DecodeHookFunc) Option {
	return func(c *decodingConfig) { c.extraHooks = append(c.extraHooks, hooks...) }
}
