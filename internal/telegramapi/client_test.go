package telegramapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{HTTPClient: srv.Client(), BaseURL: srv.URL, Token: "T", SendRate: -1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()
	if _, err := New(Options{Token: "  "}); err == nil {
		t.Fatalf("New() error = nil, want error")
	}
}

func TestCopyMessageSendsReplyAndThread(t *testing.T) {
	t.Parallel()

	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botT/copyMessage" {
			t.Errorf("path = %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":555}}`)
	})
	id, err := c.CopyMessage(context.Background(), CopyMessageRequest{
		ChatID:           100,
		FromChatID:       -42,
		MessageID:        9,
		ReplyToMessageID: 7,
		MessageThreadID:  15,
	})
	if err != nil {
		t.Fatalf("CopyMessage() error = %v", err)
	}
	if id != 555 {
		t.Fatalf("CopyMessage() = %d, want 555", id)
	}
	if got["chat_id"] != float64(100) || got["from_chat_id"] != float64(-42) || got["message_thread_id"] != float64(15) {
		t.Fatalf("request body = %v", got)
	}
	reply, ok := got["reply_parameters"].(map[string]any)
	if !ok || reply["message_id"] != float64(7) || reply["allow_sending_without_reply"] != true {
		t.Fatalf("reply_parameters = %v", got["reply_parameters"])
	}
}

func TestCopyMessageOmitsUnsetFields(t *testing.T) {
	t.Parallel()

	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1}}`)
	})
	if _, err := c.CopyMessage(context.Background(), CopyMessageRequest{ChatID: 1, FromChatID: 2, MessageID: 3}); err != nil {
		t.Fatalf("CopyMessage() error = %v", err)
	}
	if _, ok := got["reply_parameters"]; ok {
		t.Fatalf("reply_parameters present: %v", got)
	}
	if _, ok := got["message_thread_id"]; ok {
		t.Fatalf("message_thread_id present: %v", got)
	}
}

func TestRequestErrorCarriesDescriptionAndRetryAfter(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 3","parameters":{"retry_after":3}}`)
	})
	_, err := c.CopyMessage(context.Background(), CopyMessageRequest{ChatID: 1, FromChatID: 2, MessageID: 3})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("CopyMessage() error = %T %v, want *RequestError", err, err)
	}
	if reqErr.StatusCode != 429 || reqErr.ErrorCode != 429 || reqErr.RetryAfter != 3*time.Second {
		t.Fatalf("RequestError = %+v", reqErr)
	}
	if !strings.Contains(err.Error(), "copyMessage") || !strings.Contains(err.Error(), "Too Many Requests") {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestErrorClassifiers(t *testing.T) {
	t.Parallel()

	notFound := &RequestError{Method: "copyMessage", StatusCode: 400, Description: "Bad Request: message to copy not found"}
	if !IsMessageNotFound(notFound) {
		t.Fatalf("IsMessageNotFound() = false")
	}
	blocked := &RequestError{StatusCode: 403, Description: "Forbidden: bot was blocked by the user"}
	if !IsForbidden(blocked) || IsMessageNotFound(blocked) {
		t.Fatalf("classifiers wrong for %v", blocked)
	}
	if !IsPollTimeoutError(context.DeadlineExceeded) || IsPollTimeoutError(errors.New("boom")) {
		t.Fatalf("IsPollTimeoutError() mismatch")
	}
}

func TestGetUpdatesAdvancesOffset(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") != "10" || r.URL.Query().Get("timeout") != "1" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"ok":true,"result":[{"update_id":10,"message":{"message_id":1,"chat":{"id":5}}},{"update_id":12,"edited_message":{"message_id":2,"chat":{"id":5}}}]}`)
	})
	updates, next, err := c.GetUpdates(context.Background(), 10, time.Second)
	if err != nil {
		t.Fatalf("GetUpdates() error = %v", err)
	}
	if len(updates) != 2 || next != 13 {
		t.Fatalf("GetUpdates() = %d updates next %d, want 2 next 13", len(updates), next)
	}
	if updates[0].Kind() != "message" || updates[1].Kind() != "edited_message" {
		t.Fatalf("kinds = %s %s", updates[0].Kind(), updates[1].Kind())
	}
}

func TestGetMeAndSendMessage(t *testing.T) {
	t.Parallel()

	var sent sendMessageRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botT/getMe":
			_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"username":"anon_bot"}}`)
		case "/botT/sendMessage":
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &sent)
			_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":3}}`)
		default:
			http.NotFound(w, r)
		}
	})
	me, err := c.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe() error = %v", err)
	}
	if me.Username != "anon_bot" {
		t.Fatalf("GetMe().Username = %q", me.Username)
	}
	if err := c.SendMessage(context.Background(), 42, "  hello ", 0); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if sent.ChatID != 42 || sent.Text != "hello" {
		t.Fatalf("sent = %+v", sent)
	}
}

func TestTransportErrorsHideToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c, err := New(Options{BaseURL: srv.URL, Token: "123:secret", SendRate: -1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = c.GetMe(context.Background())
	if err == nil {
		t.Fatalf("GetMe() error = nil, want connection error")
	}
	if strings.Contains(err.Error(), "123:secret") {
		t.Fatalf("error leaks token: %v", err)
	}
}
