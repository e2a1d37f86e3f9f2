package bot

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// fakeBotAPI serves canned getUpdates batches and records sendMessage calls.
type fakeBotAPI struct {
	t       *testing.T
	mu      sync.Mutex
	batches []string
	offsets []string
	sent    []Reply
	onSend  func(n int)
	status  int
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
		return
	}
	switch r.URL.Path {
	case "/botT0KEN/getUpdates":
		f.offsets = append(f.offsets, r.URL.Query().Get("offset"))
		batch := `[]`
		if len(f.batches) > 0 {
			batch, f.batches = f.batches[0], f.batches[1:]
		}
		_, _ = io.WriteString(w, `{"ok":true,"result":`+batch+`}`)
	case "/botT0KEN/sendMessage":
		body, err := io.ReadAll(r.Body)
		assert.NoError(f.t, err)
		f.sent = append(f.sent, Reply{
			ChatID: gjson.GetBytes(body, "chat_id").Int(),
			Text:   gjson.GetBytes(body, "text").String(),
		})
		_, _ = io.WriteString(w, `{"ok":true,"result":{}}`)
		if f.onSend != nil {
			f.onSend(len(f.sent))
		}
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func (f *fakeBotAPI) recorded() ([]string, []Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.offsets...), append([]Reply(nil), f.sent...)
}

func newTestClient(t *testing.T, api *fakeBotAPI) *TelegramClient {
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return NewTelegramClient("T0KEN",
		WithAPIURL(srv.URL+"/"),
		WithPollTimeout(0),
		WithRetry(2, time.Millisecond),
		WithHTTPClient(srv.Client()),
	)
}

func TestTelegramNextAdvancesOffset(t *testing.T) {
	api := &fakeBotAPI{t: t, batches: []string{
		`[{"update_id":10,"message":{"chat":{"id":1},"text":"3pm est to cet"}},
		  {"update_id":11,"channel_post":{"chat":{"id":2},"text":"x"}}]`,
		`[{"update_id":12,"edited_message":{"chat":{"id":3},"text":"/start","entities":[{"type":"bot_command","offset":0}]}}]`,
	}}
	c := newTestClient(t, api)
	ctx := context.Background()

	u, err := c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, Update{ChatID: 1, Text: "3pm est to cet"}, u)

	_, err = c.Next(ctx)
	var malformed *MalformedUpdateError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, int64(11), malformed.UpdateID)
	assert.Equal(t, "update 11: no message", err.Error())

	u, err = c.Next(ctx)
	require.NoError(t, err)
	assert.True(t, IsCommand(u))

	offsets, _ := api.recorded()
	assert.Equal(t, []string{"0", "12"}, offsets)
}

func TestTelegramSend(t *testing.T) {
	api := &fakeBotAPI{t: t}
	c := newTestClient(t, api)

	require.NoError(t, c.Send(context.Background(), Reply{ChatID: -5, Text: "That's 21:00 CEST 🇪🇺👌"}))
	_, sent := api.recorded()
	assert.Equal(t, []Reply{{ChatID: -5, Text: "That's 21:00 CEST 🇪🇺👌"}}, sent)
}

func TestTelegramUnauthorizedIsNotRetried(t *testing.T) {
	api := &fakeBotAPI{t: t, status: http.StatusUnauthorized}
	c := newTestClient(t, api)

	_, err := c.Next(context.Background())
	require.Error(t, err)
	assert.Equal(t, "getUpdates: 401 Unauthorized", err.Error())
	assert.NotContains(t, err.Error(), "T0KEN")
}

func TestTelegramRetriesGiveUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()
	c := NewTelegramClient("T0KEN", WithAPIURL(srv.URL), WithPollTimeout(0), WithRetry(3, time.Millisecond))

	_, err := c.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Contains(t, err.Error(), "502 invalid response")
}

func TestRunOverTelegram(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := &fakeBotAPI{t: t, batches: []string{
		`[{"update_id":1,"message":{"chat":{"id":7},"text":"/start","entities":[{"type":"bot_command","offset":0}]}},
		  {"update_id":2,"message":{"chat":{"id":7},"text":"14:30 in pst"}}]`,
	}}
	api.onSend = func(n int) {
		if n == 1 {
			cancel()
		}
	}
	c := newTestClient(t, api)

	d := newTestDispatcher(c)
	require.NoError(t, d.Run(ctx, c))
	_, sent := api.recorded()
	assert.Equal(t, []Reply{{ChatID: 7, Text: "That's 05:30 PDT 😜🇺🇸🇺🇸"}}, sent)
}

func TestReadToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(path, []byte("  123:abc\n"), 0o600))

	token, err := ReadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "123:abc", token)

	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))
	_, err = ReadToken(path)
	require.Error(t, err)

	_, err = ReadToken(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
