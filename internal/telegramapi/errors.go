package telegramapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

type RequestError struct {
	Method      string
	StatusCode  int
	ErrorCode   int
	Description string
	RetryAfter  time.Duration
	Body        string
}

func (e *RequestError) Error() string {
	if e == nil {
		return "telegram request failed"
	}
	method := strings.TrimSpace(e.Method)
	if method == "" {
		method = "request"
	}
	desc := strings.TrimSpace(e.Description)
	if desc != "" {
		if e.StatusCode > 0 {
			return fmt.Sprintf("telegram %s: http %d: %s", method, e.StatusCode, desc)
		}
		return fmt.Sprintf("telegram %s: %s", method, desc)
	}
	body := strings.TrimSpace(e.Body)
	if e.StatusCode > 0 {
		if body != "" {
			return fmt.Sprintf("telegram %s: http %d: %s", method, e.StatusCode, body)
		}
		return fmt.Sprintf("telegram %s: http %d", method, e.StatusCode)
	}
	if body != "" {
		return fmt.Sprintf("telegram %s: %s", method, body)
	}
	return fmt.Sprintf("telegram %s failed", method)
}

// IsMessageNotFound reports whether Telegram rejected a copy because the
// source or reply target no longer exists.
func IsMessageNotFound(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	desc := strings.ToLower(reqErr.Description)
	return strings.Contains(desc, "message to copy not found") ||
		strings.Contains(desc, "message to be replied not found")
}

// IsForbidden reports whether the bot was blocked or removed from the chat.
func IsForbidden(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.StatusCode == 403 || reqErr.ErrorCode == 403
}

func IsPollTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "client.timeout exceeded")
}
