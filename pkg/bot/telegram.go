package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTelegramAPI is the public Bot API endpoint.
const DefaultTelegramAPI = "https://api.telegram.org"

// ReadToken reads a bot token from path, trimming surrounding whitespace.
func ReadToken(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(content))
	if token == "" {
		return "", fmt.Errorf("read token: %s is empty", path)
	}
	return token, nil
}

// TelegramOption configures a TelegramClient.
type TelegramOption func(*TelegramClient)

// WithAPIURL points the client at another Bot API server.
func WithAPIURL(api string) TelegramOption {
	return func(c *TelegramClient) {
		if api = strings.TrimRight(strings.TrimSpace(api), "/"); api != "" {
			c.api = api
		}
	}
}

// WithPollTimeout sets the getUpdates long-poll timeout.
func WithPollTimeout(d time.Duration) TelegramOption {
	return func(c *TelegramClient) {
		if d >= 0 {
			c.pollTimeout = d
		}
	}
}

// WithRetry sets how often a failed poll is retried and the pause between tries.
func WithRetry(attempts int, delay time.Duration) TelegramOption {
	return func(c *TelegramClient) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) TelegramOption {
	return func(c *TelegramClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// TelegramClient long-polls getUpdates and replies with sendMessage. It is a
// Source and a Sender. Next must not be called concurrently; Send may be.
type TelegramClient struct {
	http        *http.Client
	api         string
	token       string
	pollTimeout time.Duration
	attempts    int
	retryDelay  time.Duration

	offset  int64
	pending []gjson.Result
}

// NewTelegramClient builds a client for the bot identified by token.
func NewTelegramClient(token string, opts ...TelegramOption) *TelegramClient {
	c := &TelegramClient{
		api:         DefaultTelegramAPI,
		token:       token,
		pollTimeout: 30 * time.Second,
		attempts:    5,
		retryDelay:  3 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.pollTimeout + 10*time.Second}
	}
	return c
}

// apiError is a Bot API response with "ok": false.
type apiError struct {
	Method      string
	Code        int
	Description string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Method, e.Code, e.Description)
}

// permanent reports errors that retrying cannot fix, such as a revoked token.
func (e *apiError) permanent() bool {
	return e.Code == http.StatusUnauthorized || e.Code == http.StatusNotFound
}

// Next returns the next update, polling the Bot API when none are buffered.
func (c *TelegramClient) Next(ctx context.Context) (Update, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Update{}, err
		}
		if len(c.pending) == 0 {
			updates, err := c.poll(ctx)
			if err != nil {
				return Update{}, err
			}
			c.pending = updates
			continue
		}

		raw := c.pending[0]
		c.pending = c.pending[1:]
		id := raw.Get("update_id").Int()
		if id >= c.offset {
			c.offset = id + 1
		}
		u, reason := decodeUpdate(raw.Raw)
		if reason != "" {
			return Update{}, &MalformedUpdateError{UpdateID: id, Reason: reason}
		}
		return u, nil
	}
}

// poll fetches one batch of updates, retrying transient failures.
func (c *TelegramClient) poll(ctx context.Context) ([]gjson.Result, error) {
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(c.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		query := url.Values{}
		query.Set("offset", strconv.FormatInt(c.offset, 10))
		query.Set("timeout", strconv.Itoa(int(c.pollTimeout/time.Second)))
		query.Set("allowed_updates", `["message","edited_message"]`)
		body, err := c.call(ctx, http.MethodGet, "getUpdates", query, "")
		if err == nil {
			return gjson.Get(body, "result").Array(), nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.permanent() {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("poll updates after %d attempts: %w", c.attempts, lastErr)
}

// Send delivers r with sendMessage.
func (c *TelegramClient) Send(ctx context.Context, r Reply) error {
	payload, err := encodeReply(r)
	if err != nil {
		return err
	}
	_, err = c.call(ctx, http.MethodPost, "sendMessage", nil, payload)
	return err
}

// call invokes a Bot API method and returns the response body once "ok" is true.
func (c *TelegramClient) call(ctx context.Context, httpMethod, method string, query url.Values, payload string) (string, error) {
	endpoint := c.api + "/bot" + c.token + "/" + method
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var body io.Reader
	if payload != "" {
		body = strings.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, httpMethod, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", method, err)
	}
	if payload != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The URL carries the token; keep it out of error text.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return "", fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read response: %w", method, err)
	}
	text := string(raw)
	if !gjson.Valid(text) {
		return "", &apiError{Method: method, Code: resp.StatusCode, Description: "invalid response"}
	}
	if !gjson.Get(text, "ok").Bool() {
		code := int(gjson.Get(text, "error_code").Int())
		if code == 0 {
			code = resp.StatusCode
		}
		return "", &apiError{Method: method, Code: code, Description: gjson.Get(text, "description").String()}
	}
	return text, nil
}
