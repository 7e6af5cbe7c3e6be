package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Counter measures prompt text in model tokens.
type Counter interface {
	Count(text string) int
}

var loaderOnce sync.Once

type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter uses the embedded BPE ranks so nothing is fetched at runtime.
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}
