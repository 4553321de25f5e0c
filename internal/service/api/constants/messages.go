package constants

// 클라이언트에게 반환되는 에러 메시지 상수입니다.
const (
	// 400 Bad Request
	ErrMsgBadRequest            = "잘못된 요청입니다"
	ErrMsgBadRequestInvalidBody = "요청 본문을 파싱할 수 없습니다. JSON 형식을 확인해주세요"

	// 404 Not Found
	ErrMsgNotFound = "요청한 리소스를 찾을 수 없습니다"

	// 413 Request Entity Too Large
	ErrMsgRequestEntityTooLarge = "요청 본문이 너무 큽니다"

	// 415 Unsupported Media Type
	ErrMsgUnsupportedMediaType = "지원하지 않는 미디어 타입입니다"

	// 429 Too Many Requests
	ErrMsgTooManyRequests = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요"

	// 500 Internal Server Error
	ErrMsgInternalServer = "내부 서버 오류가 발생했습니다"

	// 503 Service Unavailable
	ErrMsgCookieRefreshUnavailable = "쿠키 갱신 기능이 비활성화되어 있습니다. 헤드리스 브라우저 설정을 확인해주세요"
	ErrMsgCookieRefreshFailed      = "쿠키 갱신에 실패했습니다. 기존 쿠키로 계속 요청합니다"
)

// 서비스 구성 오류 시 패닉 메시지입니다.
const (
	PanicMsgAppConfigRequired = "AppConfig는 필수입니다"
	PanicMsgExtractorRequired = "Extractor는 필수입니다"
)
