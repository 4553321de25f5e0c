package response

// ErrorResponse API 오류 응답
//
// 추출 요청의 실패는 이 형식이 아니라 추출 결과(ok: false)로 응답합니다.
// 요청 자체를 처리할 수 없을 때(잘못된 JSON, 속도 제한 등)만 사용합니다.
type ErrorResponse struct {
	// ResultCode HTTP 상태 코드 (예: 400, 429, 500)
	ResultCode int `json:"result_code" example:"400"`

	// Message 에러 메시지
	Message string `json:"message" example:"요청 본문을 파싱할 수 없습니다. JSON 형식을 확인해주세요"`
}
