package constants

// 헬스체크 응답에 사용되는 상수입니다.
const (
	// HealthStatusOK 헬스체크 상태: 정상
	// 프로세스가 응답할 수 있으면 항상 이 값을 반환합니다.
	HealthStatusOK = "ok"
)
