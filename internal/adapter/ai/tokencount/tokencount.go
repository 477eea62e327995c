// Package tokencount estimates token usage for chat completions, used when
// the provider response omits its usage block.
//
// Counting is backed by tiktoken-go. OpenRouter model ids are normalized to
// the nearest tiktoken-known family; unknown families fall back to the
// cl100k_base encoding, which approximates most modern tokenizers.
package tokencount

import (
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"
)

// Encodings ship with the binary; the default loader would fetch BPE files
// over the network on first use.
var loaderOnce sync.Once

// Usage holds estimated token counts for one chat completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Counter caches tiktoken encodings per normalized model. Safe for
// concurrent use.
type Counter struct {
	mu    sync.RWMutex
	cache map[string]*tiktoken.Tiktoken
}

func NewCounter() *Counter {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
	})
	return &Counter{cache: make(map[string]*tiktoken.Tiktoken)}
}

// Count returns the token count of text for the given model, or an error if
// no encoding could be resolved at all.
func (c *Counter) Count(text, model string) (int, error) {
	enc, err := c.encodingFor(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// EstimateUsage estimates prompt and completion tokens for a two-message
// chat call. It never fails: when no encoding resolves, it falls back to a
// rough four-characters-per-token estimate.
func (c *Counter) EstimateUsage(systemPrompt, userPrompt, completion, model string) Usage {
	enc, err := c.encodingFor(model)
	if err != nil {
		promptTokens := (len(systemPrompt) + len(userPrompt)) / 4
		completionTokens := len(completion) / 4
		return Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		}
	}

	// Message framing overhead for OpenAI-compatible chat APIs: 3 tokens per
	// message plus 1 per role, and 3 tokens priming the assistant reply.
	const tokensPerMessage, tokensPerRole, replyPriming = 3, 1, 3

	promptTokens := 2*(tokensPerMessage+tokensPerRole) + replyPriming
	promptTokens += len(enc.Encode("system", nil, nil))
	promptTokens += len(enc.Encode(systemPrompt, nil, nil))
	promptTokens += len(enc.Encode("user", nil, nil))
	promptTokens += len(enc.Encode(userPrompt, nil, nil))

	completionTokens := len(enc.Encode(completion, nil, nil))

	return Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
}

func (c *Counter) encodingFor(model string) (*tiktoken.Tiktoken, error) {
	normalized := normalizeModel(model)

	c.mu.RLock()
	enc, ok := c.cache[normalized]
	c.mu.RUnlock()
	if ok {
		return enc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.cache[normalized]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(normalized)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	c.cache[normalized] = enc
	return enc, nil
}

// normalizeModel maps an OpenRouter model id (e.g.
// "meta-llama/llama-3.1-8b-instruct:free") to a tiktoken-known name.
func normalizeModel(model string) string {
	model = strings.ToLower(model)
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	model = strings.TrimSuffix(model, ":free")

	switch {
	case strings.Contains(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	case strings.Contains(model, "gpt-4"):
		return "gpt-4"
	default:
		// Llama, Mistral, Qwen, Claude and friends tokenize close enough to
		// cl100k_base for accounting purposes.
		return "gpt-4"
	}
}
