package maputil

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ObjectToStringHookFunc 객체 값을 문자열 필드로 디코딩할 때, keys 중 처음으로 비어있지 않은
// 키의 값을 사용합니다. {"name": "홍길동"} 형태의 작성자나 {"imageUrl": "..."} 형태의
// 이미지 목록을 문자열로 평탄화하는 데 사용합니다.
func ObjectToStringHookFunc(keys ...string) mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t.Kind() != reflect.String || f.Kind() != reflect.Map {
			return data, nil
		}
		m, ok := data.(map[string]any)
		if !ok {
			return data, nil
		}
		for _, k := range keys {
			if v, ok := m[k]; ok && v != nil {
				if s := strings.TrimSpace(toString(v)); s != "" {
					return s, nil
				}
			}
		}
		return "", nil
	}
}

// floatToIntegerStringHookFunc JSON 숫자(float64)를 문자열 필드로 디코딩할 때 지수 표기 없이
// 변환합니다. 예: 1.29e+06 -> "1290000"
func floatToIntegerStringHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t.Kind() != reflect.String || f.Kind() != reflect.Float64 {
			return data, nil
		}
		return toString(reflect.ValueOf(data).Float()), nil
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e18 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
