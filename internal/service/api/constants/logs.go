package constants

// 내부 로깅을 위한 메시지 상수입니다.
const (
	// ------------------------------------------------------------------------------------------------
	// 서비스 생명주기
	// ------------------------------------------------------------------------------------------------

	LogMsgServiceStarting       = "API 서비스 시작중..."
	LogMsgServiceStarted        = "API 서비스 시작됨"
	LogMsgServiceAlreadyStarted = "API 서비스가 이미 시작됨!!!"
	LogMsgServiceStopping       = "API 서비스 중지중..."
	LogMsgServiceStopped        = "API 서비스 중지됨"
	LogMsgServiceUnexpectedExit = "API 서비스가 예기치 않게 종료되었습니다"

	LogMsgServiceHTTPServerStarting      = "API 서비스 > http 서버 시작"
	LogMsgServiceHTTPServerStopped       = "API 서비스 > http 서버 중지됨"
	LogMsgServiceHTTPServerShutdownError = "API 서비스 > http 서버 종료 중 오류 발생"
	LogMsgServiceHTTPServerFatalError    = "API 서비스 > http 서버를 구성하는 중에 치명적인 오류가 발생하였습니다."

	// ------------------------------------------------------------------------------------------------
	// 핸들러
	// ------------------------------------------------------------------------------------------------

	LogMsgHealthCheck        = "헬스체크 요청"
	LogMsgVersionInfo        = "버전 정보 요청"
	LogMsgExtractRequest     = "상품 추출 요청"
	LogMsgExtractCompleted   = "상품 추출 완료"
	LogMsgExtractFailed      = "상품 추출 실패"
	LogMsgCookieRefreshStart = "쿠키 수동 갱신 요청"
	LogMsgCookieRefreshDone  = "쿠키 수동 갱신 완료"

	// ------------------------------------------------------------------------------------------------
	// 미들웨어 및 에러 핸들러
	// ------------------------------------------------------------------------------------------------

	LogMsgHTTPRequest            = "HTTP 요청"
	LogMsgPanicRecovered         = "패닉 복구: 예기치 못한 오류가 발생하여 안전하게 복구했습니다"
	LogMsgRateLimitExceeded      = "요청 차단: 속도 제한(Rate Limit)을 초과하였습니다"
	LogMsgUnsupportedContentType = "요청 차단: 지원하지 않는 Content-Type 입니다"
	LogMsgHTTP5xxServerError     = "HTTP 5xx: 서버 내부 오류가 발생했습니다"
	LogMsgHTTP4xxClientError     = "HTTP 4xx: 클라이언트 요청 오류입니다"
)
