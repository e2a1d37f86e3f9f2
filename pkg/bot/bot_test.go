package bot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minhyannv/timebot-go/pkg/interpreter"
	loggerpkg "github.com/minhyannv/timebot-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var fixedNow = time.Date(2026, time.July, 15, 12, 0, 0, 0, time.UTC)

type recordingSender struct {
	mu      sync.Mutex
	replies []Reply
	failFor int64
}

func (s *recordingSender) Send(_ context.Context, r Reply) error {
	if r.ChatID == s.failFor {
		return errors.New("chat not found")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, r)
	return nil
}

func (s *recordingSender) sorted() []Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Reply(nil), s.replies...)
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out
}

type sliceSource struct {
	updates []Update
	errs    []error
}

func (s *sliceSource) Next(context.Context) (Update, error) {
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return Update{}, err
		}
	}
	if len(s.updates) == 0 {
		return Update{}, io.EOF
	}
	u := s.updates[0]
	s.updates = s.updates[1:]
	return u, nil
}

func newTestDispatcher(sender Sender, opts ...Option) *Dispatcher {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewDispatcher(interpreter.New(nil), sender, opts...)
}

func TestIsCommand(t *testing.T) {
	assert.True(t, IsCommand(Update{Text: "/start"}))
	assert.True(t, IsCommand(Update{Text: "  /help 3pm est"}))
	assert.True(t, IsCommand(Update{Text: "3pm est", IsCommand: true}))
	assert.False(t, IsCommand(Update{Text: "3pm est / cet"}))
}

func TestHandle(t *testing.T) {
	sender := &recordingSender{}
	d := newTestDispatcher(sender)

	sent, err := d.Handle(context.Background(), Update{ChatID: 7, Text: "3pm est to cet"})
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = d.Handle(context.Background(), Update{ChatID: 7, Text: "/convert 3pm est to cet"})
	require.NoError(t, err)
	assert.False(t, sent)

	sent, err = d.Handle(context.Background(), Update{ChatID: 7, Text: "good morning"})
	require.NoError(t, err)
	assert.False(t, sent)

	assert.Equal(t, []Reply{{ChatID: 7, Text: "That's 21:00 CEST 🇪🇺👌"}}, sender.sorted())
}

func TestHandleSendFailure(t *testing.T) {
	d := newTestDispatcher(&recordingSender{failFor: 9})

	_, err := d.Handle(context.Background(), Update{ChatID: 9, Text: "9am pst"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat 9")
}

func TestRunIsolatesFailures(t *testing.T) {
	var logs bytes.Buffer
	sender := &recordingSender{failFor: 2}
	d := newTestDispatcher(sender, WithWorkers(3), WithLogger(loggerpkg.NewWriterLogger(&logs), false))

	src := &sliceSource{
		updates: []Update{
			{ChatID: 1, Text: "3pm est to cet"},
			{ChatID: 2, Text: "9am pst"},
			{ChatID: 3, Text: "9 europe/london to est"},
			{ChatID: 4, Text: "/start"},
			{ChatID: 5, Text: "lunch?"},
			{ChatID: 6, Text: "14:30 in pst"},
		},
		errs: []error{nil, &MalformedUpdateError{Line: 2, Reason: "no text"}},
	}
	require.NoError(t, d.Run(context.Background(), src))

	assert.Equal(t, []Reply{
		{ChatID: 1, Text: "That's 21:00 CEST 🇪🇺👌"},
		{ChatID: 3, Text: `Whatevs 😎 (unknown time zone "EUROPE/LONDON")`},
		{ChatID: 6, Text: "That's 05:30 PDT 😜🇺🇸🇺🇸"},
	}, sender.sorted())
	assert.Contains(t, logs.String(), "update failed")
	assert.Contains(t, logs.String(), "update skipped")
}

func TestRunReturnsReadErrors(t *testing.T) {
	d := newTestDispatcher(&recordingSender{})
	readErr := errors.New("connection reset")

	err := d.Run(context.Background(), &sliceSource{errs: []error{readErr}})
	require.ErrorIs(t, err, readErr)

	err = NewDispatcher(nil, nil).Run(context.Background(), &sliceSource{})
	require.Error(t, err)
}

func TestLineTransport(t *testing.T) {
	input := strings.Join([]string{
		`{"update_id":1,"message":{"chat":{"id":42},"text":"3PM EST to CET"}}`,
		``,
		`{"update_id":2,"message":{"chat":{"id":43},"text":"/start","entities":[{"type":"bot_command","offset":0,"length":6}]}}`,
		`not json`,
		`{"update_id":3,"message":{"chat":{"id":44}}}`,
		`{"update_id":4,"edited_message":{"chat":{"id":45},"text":"9am pst"}}`,
		`{"update_id":5,"channel_post":{"chat":{"id":46},"text":"9am pst"}}`,
	}, "\n")

	var out bytes.Buffer
	d := newTestDispatcher(NewRateLimitedSender(NewLineSender(&out), 0, 1))
	require.NoError(t, d.Run(context.Background(), NewLineSource(strings.NewReader(input))))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	got := map[int64]string{}
	for _, line := range lines {
		require.True(t, gjson.Valid(line), line)
		got[gjson.Get(line, "chat_id").Int()] = gjson.Get(line, "text").String()
	}
	assert.Equal(t, map[int64]string{
		42: "That's 21:00 CEST 🇪🇺👌",
		45: "That's 18:00 CEST 🇪🇺👌",
	}, got)
}

func TestDecodeUpdate(t *testing.T) {
	u, reason := decodeUpdate(`{"message":{"chat":{"id":-100},"text":"hi /there","entities":[{"type":"bot_command","offset":3}]}}`)
	require.Empty(t, reason)
	assert.Equal(t, Update{ChatID: -100, Text: "hi /there"}, u)

	for _, raw := range []string{`[]`, `{"message":{"text":"x"}}`, `{"message":{"chat":{"id":"a"},"text":"x"}}`} {
		_, reason := decodeUpdate(raw)
		assert.NotEmpty(t, reason, raw)
	}
}

func TestLineSourceReportsLineNumbers(t *testing.T) {
	src := NewLineSource(strings.NewReader("\n[]\n"))
	_, err := src.Next(context.Background())
	var malformed *MalformedUpdateError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Line)
	assert.Equal(t, "line 2: no message", err.Error())
}

func TestLineSourceSkipsOversizedLines(t *testing.T) {
	input := `{"message":{"chat":{"id":1},"text":"` + strings.Repeat("x", 200) + `"}}` + "\n" +
		`{"message":{"chat":{"id":2},"text":"9am pst"}}` + "\n"
	src := NewLineSource(strings.NewReader(input))
	src.maxSize = 64

	_, err := src.Next(context.Background())
	var malformed *MalformedUpdateError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, malformed.Line)

	u, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Update{ChatID: 2, Text: "9am pst"}, u)

	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestRunContinuesPastOversizedUpdate(t *testing.T) {
	input := `{"message":{"chat":{"id":1},"text":"3pm est to cet ` + strings.Repeat("z", 2*MaxLineSize) + `"}}` + "\n" +
		`{"message":{"chat":{"id":2},"text":"3pm est to cet"}}`

	var logs bytes.Buffer
	sender := &recordingSender{}
	d := newTestDispatcher(sender, WithLogger(loggerpkg.NewWriterLogger(&logs), false))
	require.NoError(t, d.Run(context.Background(), NewLineSource(strings.NewReader(input))))

	assert.Equal(t, []Reply{{ChatID: 2, Text: "That's 21:00 CEST 🇪🇺👌"}}, sender.sorted())
	assert.Contains(t, logs.String(), "update skipped")
}

func TestLineSourceHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLineSource(strings.NewReader(`{}`)).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimitedSender(t *testing.T) {
	sender := &recordingSender{}
	limited := NewRateLimitedSender(sender, 1, 1)

	require.NoError(t, limited.Send(context.Background(), Reply{ChatID: 1, Text: "a"}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := limited.Send(ctx, Reply{ChatID: 2, Text: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Len(t, sender.sorted(), 1)
}
