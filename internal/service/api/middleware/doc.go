// Package middleware API 서버의 Echo 미들웨어를 제공합니다.
//
//   - PanicRecovery: 핸들러 패닉 복구 및 스택 트레이스 로깅
//   - HTTPLogger: 요청/응답 구조화 로깅 (민감한 쿼리 파라미터 마스킹)
//   - RateLimit: IP 별 요청 속도 제한
//   - RequireJSON: 본문이 있는 요청의 Content-Type 검증
//   - Logger: Echo 내부 로거를 애플리케이션 로거로 연결
package middleware
