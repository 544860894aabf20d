// Package tokencount estimates prompt sizes for research requests.
//
// Gemini and DeepSeek do not publish a Go tokenizer, so the cl100k_base
// encoding from tiktoken-go is used as an approximation. When the encoding
// cannot be loaded the count falls back to a character heuristic.
package tokencount

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// Counter provides thread-safe token counting.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewCounter creates a counter. The encoding is loaded on first use.
func NewCounter() *Counter { return &Counter{} }

// DefaultCounter is the process-wide counter.
var DefaultCounter = NewCounter()

func (c *Counter) encoding() (*tiktoken.Tiktoken, error) {
	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding(encodingName)
		if c.err != nil {
			slog.Warn("token encoding unavailable, using estimate", slog.Any("error", c.err))
		}
	})
	return c.enc, c.err
}

// CountTokens returns the exact cl100k_base token count of text.
func (c *Counter) CountTokens(text string) (int, error) {
	enc, err := c.encoding()
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Count returns CountTokens, or Estimate when the encoding is unavailable.
func (c *Counter) Count(text string) int {
	n, err := c.CountTokens(text)
	if err != nil {
		return Estimate(text)
	}
	return n
}

// Estimate approximates tokens as one per four characters, rounding up.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

// Count uses DefaultCounter.
func Count(text string) int { return DefaultCounter.Count(text) }
