package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/config"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/retry"
	"github.com/fairyhunter13/ai-candidate-ranker/pkg/jsonx"
)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New()
	})
	return vld
}

// Semantic extracts the judgement-call candidate fields with an LLM.
// Extract never returns an error: when the retry budget is exhausted the
// fixed fallback result is substituted so one bad candidate cannot stall
// a batch.
type Semantic struct {
	ai        domain.AIClient
	policy    retry.Policy
	profile   config.Profile
	maxTokens int
}

// NewSemantic wires a semantic extractor. The retry policy is injected so
// tests can run without sleeping.
func NewSemantic(ai domain.AIClient, policy retry.Policy, profile config.Profile, maxTokens int) *Semantic {
	return &Semantic{ai: ai, policy: policy, profile: profile, maxTokens: maxTokens}
}

// Extract runs the semantic pass for one candidate. Non-retryable upstream
// errors short-circuit the budget; everything else is retried per the policy.
func (s *Semantic) Extract(ctx context.Context, cand domain.ProcessedCandidate, enrich Enrichment) domain.ExtractionResult {
	system := extractionSystemPrompt(s.profile)
	user := extractionUserPrompt(cand, enrich)

	var out domain.ExtractionResult
	attempt := 0
	op := func() error {
		attempt++
		raw, err := s.ai.ChatJSON(ctx, system, user, s.maxTokens)
		if err != nil {
			slog.Warn("semantic extraction call failed",
				slog.String("candidate_id", cand.ID),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			if !domain.Retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		res, err := decodeExtraction(raw)
		if err != nil {
			slog.Warn("semantic extraction output rejected",
				slog.String("candidate_id", cand.ID),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return err
		}
		out = res
		return nil
	}

	if err := retry.Do(ctx, s.policy, op); err != nil {
		slog.Warn("semantic extraction exhausted, substituting fallback",
			slog.String("candidate_id", cand.ID),
			slog.Int("attempts", attempt),
			slog.Any("error", err))
		return domain.FallbackExtraction()
	}
	return out
}

// decodeExtraction cleans, parses, and validates one LLM response.
func decodeExtraction(raw string) (domain.ExtractionResult, error) {
	var res domain.ExtractionResult
	cleaned, ok := jsonx.CleanObject(raw)
	if !ok {
		return res, fmt.Errorf("%w: no JSON object in response", domain.ErrMalformedJSON)
	}
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return res, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
	}
	if err := getValidator().Struct(&res); err != nil {
		return res, fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err)
	}
	normalizeExtraction(&res)
	return res, nil
}

// normalizeExtraction keeps slice fields non-nil so downstream JSON always
// renders arrays.
func normalizeExtraction(res *domain.ExtractionResult) {
	if res.Industries == nil {
		res.Industries = []string{}
	}
	if res.SalesMethodologies == nil {
		res.SalesMethodologies = []string{}
	}
	if res.RedFlags.Concerns == nil {
		res.RedFlags.Concerns = []string{}
	}
}
