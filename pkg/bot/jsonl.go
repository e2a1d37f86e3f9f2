package bot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MaxLineSize is the longest update line LineSource accepts by default.
const MaxLineSize = 1 << 20

// MalformedUpdateError reports an input that is not a usable update. Line is
// set by LineSource and UpdateID by TelegramClient.
type MalformedUpdateError struct {
	Line     int
	UpdateID int64
	Reason   string
}

func (e *MalformedUpdateError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("update %d: %s", e.UpdateID, e.Reason)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// LineSource reads one Bot API update object per line:
//
//	{"update_id":1,"message":{"chat":{"id":42},"text":"3pm est to cet"}}
//
// Lines longer than the size limit are reported as malformed and skipped.
// Next must not be called concurrently.
type LineSource struct {
	r       *bufio.Reader
	line    int
	maxSize int
}

// NewLineSource reads updates from r.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: bufio.NewReader(r), maxSize: MaxLineSize}
}

// Next returns the next update, skipping blank lines.
func (s *LineSource) Next(ctx context.Context) (Update, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Update{}, err
		}
		raw, tooLong, err := s.readLine()
		if err != nil {
			return Update{}, err
		}
		s.line++
		if tooLong {
			return Update{}, &MalformedUpdateError{
				Line:   s.line,
				Reason: fmt.Sprintf("longer than %d bytes", s.maxSize),
			}
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		u, reason := decodeUpdate(line)
		if reason != "" {
			return Update{}, &MalformedUpdateError{Line: s.line, Reason: reason}
		}
		return u, nil
	}
}

// readLine returns the next line without its terminator. The remainder of an
// oversized line is consumed and dropped.
func (s *LineSource) readLine() (string, bool, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, isPrefix, err := s.r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && (tooLong || len(buf) > 0) {
				return string(buf), tooLong, nil
			}
			return "", false, err
		}
		if !tooLong {
			buf = append(buf, chunk...)
			if len(buf) > s.maxSize {
				tooLong = true
				buf = nil
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

// decodeUpdate extracts an Update from one Bot API update object. A non-empty
// reason explains why the object is unusable.
func decodeUpdate(raw string) (Update, string) {
	if !gjson.Valid(raw) {
		return Update{}, "invalid JSON"
	}
	msg := gjson.Get(raw, "message")
	if !msg.Exists() {
		msg = gjson.Get(raw, "edited_message")
	}
	if !msg.Exists() {
		return Update{}, "no message"
	}
	chat := msg.Get("chat.id")
	if chat.Type != gjson.Number {
		return Update{}, "no chat id"
	}
	text := msg.Get("text")
	if text.Type != gjson.String {
		return Update{}, "no text"
	}

	command := msg.Get(`entities.#(type=="bot_command")`)
	return Update{
		ChatID:    chat.Int(),
		Text:      text.String(),
		IsCommand: command.Exists() && command.Get("offset").Int() == 0,
	}, ""
}

// encodeReply builds a sendMessage payload.
func encodeReply(r Reply) (string, error) {
	payload, err := sjson.Set("", "chat_id", r.ChatID)
	if err != nil {
		return "", fmt.Errorf("encode chat_id: %w", err)
	}
	payload, err = sjson.Set(payload, "text", r.Text)
	if err != nil {
		return "", fmt.Errorf("encode text: %w", err)
	}
	return payload, nil
}

// LineSender writes each reply as a sendMessage payload on its own line.
type LineSender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineSender writes replies to w.
func NewLineSender(w io.Writer) *LineSender {
	return &LineSender{w: w}
}

// Send encodes r and writes it.
func (s *LineSender) Send(_ context.Context, r Reply) error {
	payload, err := encodeReply(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = io.WriteString(s.w, payload+"\n")
	return err
}
