package tokencount

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeModel(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"openai/gpt-4o-mini":                    "gpt-4",
		"openai/gpt-3.5-turbo":                  "gpt-3.5-turbo",
		"meta-llama/llama-3.1-8b-instruct:free": "gpt-4",
		"anthropic/claude-3.5-sonnet":           "gpt-4",
		"gpt-4":                                 "gpt-4",
		"totally-unknown-model":                 "gpt-4",
	}
	for in, want := range cases {
		require.Equal(t, want, normalizeModel(in), in)
	}
}

func TestCount(t *testing.T) {
	t.Parallel()
	c := NewCounter()
	n, err := c.Count("the quick brown fox jumps over the lazy dog", "openai/gpt-4o-mini")
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}
	require.Positive(t, n)

	again, err := c.Count("the quick brown fox jumps over the lazy dog", "openai/gpt-4o-mini")
	require.NoError(t, err)
	require.Equal(t, n, again)
}

func TestEstimateUsage(t *testing.T) {
	t.Parallel()
	c := NewCounter()
	system := strings.Repeat("You are a recruiting analyst. ", 10)
	user := strings.Repeat("Candidate data goes here. ", 20)
	completion := `{"score": 80}`

	usage := c.EstimateUsage(system, user, completion, "openai/gpt-4o-mini")
	require.Positive(t, usage.PromptTokens)
	require.Positive(t, usage.CompletionTokens)
	require.Greater(t, usage.PromptTokens, usage.CompletionTokens)
	require.Equal(t, usage.PromptTokens+usage.CompletionTokens, usage.TotalTokens)
}
