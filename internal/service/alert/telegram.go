// Package alert 네이버 쿠키 갱신이 반복해서 실패할 때 운영자에게 텔레그램으로 알립니다.
package alert

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/darkkaiser/product-extractor/internal/config"
	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
	"github.com/darkkaiser/product-extractor/internal/service/extract/session"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/darkkaiser/product-extractor/pkg/strutil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const component = "alert.telegram"

const (
	// httpClientTimeout 텔레그램 API 요청 하나의 제한 시간
	httpClientTimeout = 15 * time.Second

	// sendTimeout 알림 한 건(재시도 포함)에 허용하는 최대 시간
	sendTimeout = 30 * time.Second

	maxRetries        = 3
	defaultRetryDelay = 2 * time.Second

	// 텔레그램은 같은 채팅방에 초당 1건 정도를 권장합니다.
	rateLimit = 1
	rateBurst = 3

	// maxErrorLength 메시지에 포함할 에러 문자열의 최대 길이
	maxErrorLength = 500
)

// botClient 테스트에서 교체할 수 있도록 필요한 메서드만 추린 봇 API 입니다.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier session.FailureNotifier 구현체입니다.
type TelegramNotifier struct {
	bot     botClient
	chatID  int64
	appName string

	limiter    *rate.Limiter
	retryDelay time.Duration
}

var _ session.FailureNotifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier 봇 토큰으로 텔레그램 클라이언트를 초기화합니다.
// 토큰 검증을 위해 텔레그램 API 를 한 번 호출합니다.
func NewTelegramNotifier(cfg config.TelegramConfig, debug bool) (*TelegramNotifier, error) {
	applog.WithComponentAndFields(component, applog.Fields{
		"bot_token": applog.MaskSensitiveData(cfg.BotToken),
		"chat_id":   cfg.ChatID,
	}).Debug("텔레그램 봇 클라이언트 초기화")

	client := &http.Client{Timeout: httpClientTimeout}

	botAPI, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "텔레그램 봇 API 클라이언트 초기화에 실패했습니다. BotToken이 올바른지 확인해주세요.")
	}
	botAPI.Debug = debug

	return newTelegramNotifier(botAPI, cfg.ChatID), nil
}

func newTelegramNotifier(bot botClient, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{
		bot:        bot,
		chatID:     chatID,
		appName:    config.AppName,
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		retryDelay: defaultRetryDelay,
	}
}

// NotifyRefreshFailure 연속 갱신 실패를 알립니다. 전송 실패는 로그만 남깁니다.
func (n *TelegramNotifier) NotifyRefreshFailure(ctx context.Context, consecutiveFailures int, err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	if sendErr := n.send(ctx, n.refreshFailureMessage(consecutiveFailures, err)); sendErr != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"chat_id":              n.chatID,
			"consecutive_failures": consecutiveFailures,
			"error":                sendErr,
		}).Error("쿠키 갱신 실패 알림을 보내지 못했습니다")
	}
}

func (n *TelegramNotifier) refreshFailureMessage(consecutiveFailures int, err error) string {
	detail := "알 수 없는 오류"
	if err != nil {
		detail = strutil.Truncate(err.Error(), maxErrorLength)
	}

	return fmt.Sprintf(
		"<b>[%s] 네이버 쿠키 갱신 실패</b>\n연속 실패: %d회\n오류: <code>%s</code>\n\n기존 쿠키로 계속 요청합니다. naver.cookie 설정 또는 스토어 접근 상태를 확인해주세요.",
		html.EscapeString(n.appName), consecutiveFailures, html.EscapeString(detail),
	)
}

// send HTML 모드로 보내고, 429 와 5xx 는 잠시 기다린 뒤 재시도합니다.
// 400 은 HTML 파싱 오류로 보고 일반 텍스트로 한 번 더 보냅니다.
func (n *TelegramNotifier) send(ctx context.Context, message string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, message)
	msg.ParseMode = tgbotapi.ModeHTML

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := n.bot.Send(msg)
		if err == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"chat_id": n.chatID,
				"attempt": attempt,
			}).Info("텔레그램 알림 발송 완료")
			return nil
		}
		lastErr = err

		code, retryAfter := parseTelegramError(err)
		if code == http.StatusBadRequest && msg.ParseMode != "" {
			msg.ParseMode = ""
			continue
		}
		if !shouldRetry(code) {
			break
		}

		wait := n.retryDelay
		if retryAfter > 0 {
			wait = time.Duration(retryAfter) * time.Second
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return apperrors.Wrap(lastErr, apperrors.Unavailable, "텔레그램 메시지 발송에 실패했습니다")
}

// shouldRetry 4xx 중에서는 429 만 재시도합니다. 네트워크 오류(코드 0)와 5xx 는 재시도합니다.
func shouldRetry(code int) bool {
	if code >= 400 && code < 500 {
		return code == http.StatusTooManyRequests
	}
	return true
}

func parseTelegramError(err error) (code int, retryAfter int) {
	if apiErr, ok := err.(tgbotapi.Error); ok {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}
	if apiErrPtr, ok := err.(*tgbotapi.Error); ok {
		return apiErrPtr.Code, apiErrPtr.ResponseParameters.RetryAfter
	}
	return 0, 0
}
