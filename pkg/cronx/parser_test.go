package cronx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "6필드 - 초 포함", spec: "30 * * * * *"},
		{name: "6필드 - 6시간 간격", spec: "0 0 */6 * * *"},
		{name: "Descriptor - @daily", spec: "@daily"},
		{name: "Descriptor - @every", spec: "@every 1h30m"},
		{name: "5필드는 지원하지 않음", spec: "0 */6 * * *", wantErr: true},
		{name: "빈 문자열", spec: "", wantErr: true},
		{name: "범위를 벗어난 값", spec: "60 * * * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			schedule, err := Parse(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "Cron 표현식 파싱 실패")
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, schedule)
		})
	}
}

func TestParse_NextActivation(t *testing.T) {
	t.Parallel()

	schedule, err := Parse("0 0 */6 * * *")
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC), schedule.Next(base))
}

func TestEvery(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, base.Add(6*time.Hour), Every(6*time.Hour).Next(base))
}
