// Package stub provides a deterministic offline AI client so the pipeline
// can run end to end without an OpenRouter key. Responses follow the schema
// the prompt asks for, with scores derived from the input so rankings stay
// stable but non-uniform.
package stub

import (
	"encoding/json"
	"hash/fnv"
	"strings"
	"time"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

type Client struct{}

func New() *Client { return &Client{} }

// Model returns a fixed identifier so output filenames stay stable offline.
func (c *Client) Model() string { return "stub/offline-v1" }

// ChatJSON inspects the system prompt to decide which payload shape the
// caller expects and answers deterministically.
func (c *Client) ChatJSON(_ domain.Context, systemPrompt, userPrompt string, _ int) (string, error) {
	// Simulate a tiny bit of processing latency to resemble real work
	time.Sleep(20 * time.Millisecond)

	h := fnv.New32a()
	_, _ = h.Write([]byte(userPrompt))
	seed := h.Sum32()

	var payload map[string]any
	switch {
	case strings.Contains(systemPrompt, `"questions"`):
		payload = map[string]any{
			"questions": []string{
				"Walk me through the largest deal you closed end to end.",
				"How do you rebuild pipeline after losing a key account?",
				"What does your first 90 days in this role look like?",
			},
		}
	case strings.Contains(systemPrompt, "bio_summary"):
		payload = map[string]any{
			"bio_summary":           "Experienced sales professional with a consistent closing record.",
			"sold_to_finance":       seed%2 == 0,
			"is_founder":            seed%7 == 0,
			"startup_experience":    seed%3 == 0,
			"enterprise_experience": seed%2 == 1,
			"max_acv_mentioned":     nil,
			"quota_attainment":      nil,
			"industries":            []string{"saas"},
			"sales_methodologies":   []string{},
			"red_flags": map[string]any{
				"job_hopping":        seed%5 == 0,
				"title_inflation":    false,
				"gaps_in_employment": false,
				"overqualified":      false,
				"concerns":           []string{},
			},
		}
	default:
		score := 45 + int(seed%51)
		payload = map[string]any{
			"score":            score,
			"one_line_summary": "Credible candidate based on available profile data.",
			"pros":             []string{"Relevant sales background", "Complete profile"},
			"cons":             []string{"Limited verification possible offline"},
			"reasoning":        "Offline heuristic assessment derived from profile completeness.",
		}
	}
	b, _ := json.Marshal(payload)
	return string(b), nil
}
