package constants

const componentPrefix = "api."

// 로그의 component 필드 값
const (
	ComponentService      = componentPrefix + "service"
	ComponentHandler      = componentPrefix + "handler"
	ComponentErrorHandler = componentPrefix + "error_handler"

	ComponentMiddlewareRateLimit     = componentPrefix + "middleware.rate_limit"
	ComponentMiddlewarePanicRecovery = componentPrefix + "middleware.panic_recovery"
	ComponentMiddlewareContentType   = componentPrefix + "middleware.content_type"
	ComponentMiddlewareHTTPLogger    = componentPrefix + "middleware.http_logger"
)
