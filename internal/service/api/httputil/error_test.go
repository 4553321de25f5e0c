package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darkkaiser/product-extractor/internal/service/api/constants"
	"github.com/darkkaiser/product-extractor/internal/service/api/model/response"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logEntry 로그 검증을 위한 구조체
type logEntry struct {
	Level      string `json:"level"`
	Message    string `json:"msg"`
	StatusCode int    `json:"status_code"`
	RemoteIP   string `json:"remote_ip"`
	RequestID  string `json:"request_id"`
}

// 주의: 이 테스트는 pkg/log 의 전역 상태를 변경하므로 t.Parallel() 을 사용하지 않습니다.
func TestErrorHandler(t *testing.T) {
	buf := new(bytes.Buffer)
	setupTestLogger(t, buf)

	tests := []struct {
		name           string
		method         string
		err            error
		setupContext   func(c echo.Context, req *http.Request, rec *httptest.ResponseRecorder)
		expectedStatus int
		expectedJSON   string
		expectedLog    *logEntry
		expectNoLog    bool
	}{
		{
			name:           "404 기본 메시지는 한국어로 변환",
			method:         http.MethodGet,
			err:            echo.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedJSON:   `{"result_code":404,"message":"요청한 리소스를 찾을 수 없습니다"}`,
			expectedLog:    &logEntry{Level: "warning", Message: constants.LogMsgHTTP4xxClientError, StatusCode: http.StatusNotFound},
		},
		{
			name:           "404 커스텀 메시지 유지",
			method:         http.MethodGet,
			err:            echo.NewHTTPError(http.StatusNotFound, "Custom Check"),
			expectedStatus: http.StatusNotFound,
			expectedJSON:   `{"result_code":404,"message":"Custom Check"}`,
		},
		{
			name:           "ErrorResponse 타입 메시지",
			method:         http.MethodPost,
			err:            NewBadRequestError(constants.ErrMsgBadRequestInvalidBody),
			expectedStatus: http.StatusBadRequest,
			expectedJSON:   `{"result_code":400,"message":"요청 본문을 파싱할 수 없습니다. JSON 형식을 확인해주세요"}`,
		},
		{
			name:           "413 본문 크기 초과",
			method:         http.MethodPost,
			err:            echo.ErrStatusRequestEntityTooLarge,
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedJSON:   `{"result_code":413,"message":"요청 본문이 너무 큽니다"}`,
		},
		{
			name:           "일반 에러는 500",
			method:         http.MethodGet,
			err:            errors.New("unexpected"),
			expectedStatus: http.StatusInternalServerError,
			expectedJSON:   `{"result_code":500,"message":"내부 서버 오류가 발생했습니다"}`,
			expectedLog:    &logEntry{Level: "error", Message: constants.LogMsgHTTP5xxServerError, StatusCode: http.StatusInternalServerError},
		},
		{
			name:   "로깅 필드: IP 및 RequestID",
			method: http.MethodGet,
			err:    echo.NewHTTPError(http.StatusBadRequest, "Bad Request"),
			setupContext: func(_ echo.Context, req *http.Request, rec *httptest.ResponseRecorder) {
				req.RemoteAddr = "192.168.1.100:12345"
				rec.Header().Set(echo.HeaderXRequestID, "test-req-id-123")
			},
			expectedStatus: http.StatusBadRequest,
			expectedJSON:   `{"result_code":400,"message":"Bad Request"}`,
			expectedLog:    &logEntry{RemoteIP: "192.168.1.100", RequestID: "test-req-id-123"},
		},
		{
			name:           "HEAD 요청은 본문 없음",
			method:         http.MethodHead,
			err:            echo.ErrNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "이미 응답이 커밋됨",
			method: http.MethodGet,
			err:    errors.New("error after write"),
			setupContext: func(c echo.Context, _ *http.Request, _ *httptest.ResponseRecorder) {
				c.Response().Committed = true
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "3xx 는 로그를 남기지 않음",
			method:         http.MethodGet,
			err:            echo.NewHTTPError(http.StatusFound, "Redirecting"),
			expectedStatus: http.StatusFound,
			expectedJSON:   `{"result_code":302,"message":"Redirecting"}`,
			expectNoLog:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			e := echo.New()
			req := httptest.NewRequest(tt.method, "/api/extract", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.setupContext != nil {
				tt.setupContext(c, req, rec)
			}

			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedJSON != "" {
				assert.JSONEq(t, tt.expectedJSON, rec.Body.String())
			} else {
				assert.Empty(t, rec.Body.String())
			}

			if tt.expectNoLog {
				assert.Empty(t, buf.String())
				return
			}
			if tt.expectedLog == nil {
				return
			}

			var got logEntry
			require.NoError(t, json.Unmarshal(buf.Bytes(), &got), "로그 파싱 실패: %s", buf.String())
			if tt.expectedLog.Level != "" {
				assert.Equal(t, tt.expectedLog.Level, got.Level)
			}
			if tt.expectedLog.Message != "" {
				assert.Equal(t, tt.expectedLog.Message, got.Message)
			}
			if tt.expectedLog.StatusCode != 0 {
				assert.Equal(t, tt.expectedLog.StatusCode, got.StatusCode)
			}
			if tt.expectedLog.RemoteIP != "" {
				assert.Equal(t, tt.expectedLog.RemoteIP, got.RemoteIP)
			}
			if tt.expectedLog.RequestID != "" {
				assert.Equal(t, tt.expectedLog.RequestID, got.RequestID)
			}
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		createError    func(string) error
		expectedStatus int
	}{
		{"BadRequest", NewBadRequestError, http.StatusBadRequest},
		{"UnsupportedMediaType", NewUnsupportedMediaTypeError, http.StatusUnsupportedMediaType},
		{"TooManyRequests", NewTooManyRequestsError, http.StatusTooManyRequests},
		{"InternalServer", NewInternalServerError, http.StatusInternalServerError},
		{"ServiceUnavailable", NewServiceUnavailableError, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.createError("메시지 <특수문자>")

			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.expectedStatus, he.Code)

			body, ok := he.Message.(response.ErrorResponse)
			require.True(t, ok)
			assert.Equal(t, tt.expectedStatus, body.ResultCode)
			assert.Equal(t, "메시지 <특수문자>", body.Message)
		})
	}
}

// setupTestLogger 테스트 동안 로거 출력을 버퍼로 바꾸고, 끝나면 원래대로 되돌립니다.
func setupTestLogger(t *testing.T, buf *bytes.Buffer) {
	t.Helper()

	logger := applog.StandardLogger()
	originalOut, originalFormatter, originalLevel := logger.Out, logger.Formatter, logger.Level

	applog.SetOutput(buf)
	applog.SetFormatter(&applog.JSONFormatter{})
	applog.SetLevel(applog.InfoLevel)

	t.Cleanup(func() {
		applog.SetOutput(originalOut)
		applog.SetFormatter(originalFormatter)
		applog.SetLevel(originalLevel)
	})
}
