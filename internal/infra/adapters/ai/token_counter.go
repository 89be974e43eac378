package ai

import (
	"github.com/pkoukk/tiktoken-go"

	"lecture-summary/internal/domain/ports/adapter"
)

var _ adapter.TokenCounter = (*TiktokenCounter)(nil)

// TiktokenCounter estimates prompt size with a BPE encoding. Gemini uses its
// own tokenizer, so the count is an approximation for dashboards.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) CountTokens(text string) (int, error) {
	return len(c.enc.Encode(text, nil, nil)), nil
}
