package telegramapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.telegram.org"

	defaultSendRate  = 25
	defaultSendBurst = 5
)

type Options struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	// SendRate caps outbound sendMessage/copyMessage calls per second.
	// Zero uses the default, negative disables throttling.
	SendRate  float64
	SendBurst int
}

// Client talks to the Telegram Bot API over plain HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	limiter *rate.Limiter
}

func New(opts Options) (*Client, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	var limiter *rate.Limiter
	if opts.SendRate >= 0 {
		sendRate := opts.SendRate
		if sendRate == 0 {
			sendRate = defaultSendRate
		}
		burst := opts.SendBurst
		if burst <= 0 {
			burst = defaultSendBurst
		}
		limiter = rate.NewLimiter(rate.Limit(sendRate), burst)
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		token:   token,
		limiter: limiter,
	}, nil
}

type apiResponse struct {
	envelope
	Result json.RawMessage `json:"result,omitempty"`
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

func (c *Client) do(req *http.Request, method string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return c.redactToken(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	var parsed apiResponse
	_ = json.Unmarshal(raw, &parsed)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !parsed.OK {
		reqErr := &RequestError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			ErrorCode:   parsed.ErrorCode,
			Description: parsed.Description,
			Body:        strings.TrimSpace(string(raw)),
		}
		if parsed.Parameters != nil && parsed.Parameters.RetryAfter > 0 {
			reqErr.RetryAfter = time.Duration(parsed.Parameters.RetryAfter) * time.Second
		}
		return reqErr
	}
	if out == nil {
		return nil
	}
	if len(parsed.Result) == 0 {
		return fmt.Errorf("telegram %s: missing result", method)
	}
	if err := json.Unmarshal(parsed.Result, out); err != nil {
		return fmt.Errorf("telegram %s: decode result: %w", method, err)
	}
	return nil
}

// redactToken strips the bot token from the request URL that net/http puts
// into transport errors.
func (c *Client) redactToken(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, c.token, "<token>")
	}
	return err
}

func (c *Client) postJSON(ctx context.Context, method string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("telegram %s: encode request: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, method, out)
}

func (c *Client) waitSend(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) GetMe(ctx context.Context) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.methodURL("getMe"), nil)
	if err != nil {
		return nil, err
	}
	var me User
	if err := c.do(req, "getMe", &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetUpdates long-polls for updates starting at offset and returns the offset
// to use for the next call.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	q := url.Values{}
	q.Set("timeout", strconv.Itoa(secs))
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.methodURL("getUpdates")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, offset, err
	}
	var updates []Update
	if err := c.do(req, "getUpdates", &updates); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

type CopyMessageRequest struct {
	ChatID           int64
	FromChatID       int64
	MessageID        int64
	ReplyToMessageID int64
	MessageThreadID  int64
}

// CopyMessage copies a message without a link to the original and returns
// the id of the new message.
func (c *Client) CopyMessage(ctx context.Context, in CopyMessageRequest) (int64, error) {
	if in.ChatID == 0 {
		return 0, fmt.Errorf("telegram copyMessage: chat_id is required")
	}
	if in.FromChatID == 0 {
		return 0, fmt.Errorf("telegram copyMessage: from_chat_id is required")
	}
	if in.MessageID <= 0 {
		return 0, fmt.Errorf("telegram copyMessage: message_id is required")
	}
	body := copyMessageRequest{
		ChatID:          in.ChatID,
		MessageThreadID: in.MessageThreadID,
		FromChatID:      in.FromChatID,
		MessageID:       in.MessageID,
	}
	if in.ReplyToMessageID > 0 {
		body.ReplyParameters = &replyParameters{
			MessageID:                in.ReplyToMessageID,
			AllowSendingWithoutReply: true,
		}
	}
	if err := c.waitSend(ctx); err != nil {
		return 0, err
	}
	var out messageIDResult
	if err := c.postJSON(ctx, "copyMessage", body, &out); err != nil {
		return 0, err
	}
	if out.MessageID <= 0 {
		return 0, fmt.Errorf("telegram copyMessage: missing message_id in result")
	}
	return out.MessageID, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, threadID int64) error {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "(empty)"
	}
	if err := c.waitSend(ctx); err != nil {
		return err
	}
	return c.postJSON(ctx, "sendMessage", sendMessageRequest{
		ChatID:                chatID,
		MessageThreadID:       threadID,
		Text:                  text,
		DisableWebPagePreview: true,
	}, nil)
}

func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	return c.postJSON(ctx, "setMyCommands", setMyCommandsRequest{Commands: commands}, nil)
}
