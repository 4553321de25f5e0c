package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSensitiveData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"NID_AUT=1", "NID_***"},
		{"NID_AUT=abcdefghijklmnop", "NID_***mnop"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskSensitiveData(tt.in), tt.in)
	}
}

func TestWithComponentAndFields(t *testing.T) {
	t.Parallel()

	fields := Fields{"url": "https://smartstore.naver.com/a/products/1"}
	entry := WithComponentAndFields("extract.pipeline", fields)

	assert.Equal(t, "extract.pipeline", entry.Data["component"])
	assert.Equal(t, fields["url"], entry.Data["url"])
	assert.NotContains(t, fields, "component", "입력 필드 맵은 변경되지 않아야 합니다")
}

func TestWithComponent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "api.service", WithComponent("api.service").Data["component"])
}

func TestOptions_Validate(t *testing.T) {
	t.Parallel()

	assert.Error(t, (&Options{}).Validate())
	assert.Error(t, (&Options{Name: "x", MaxAge: -1}).Validate())

	opts := NewProductionOptions("product-extractor")
	assert.NoError(t, opts.Validate())
	assert.True(t, opts.EnableCriticalLog)

	dev := NewDevelopmentOptions("product-extractor")
	assert.True(t, dev.EnableConsoleLog)
	assert.Equal(t, TraceLevel, dev.Level)
}
