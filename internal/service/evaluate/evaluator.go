// Package evaluate runs the qualitative AI assessment of processed
// candidates and generates tailored interview questions on demand.
package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/config"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
	"github.com/fairyhunter13/ai-candidate-ranker/pkg/jsonx"
)

// QuestionCount is the number of interview questions produced per candidate.
const QuestionCount = 3

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

// Evaluator holds the AI client and role profile for evaluation calls.
// Evaluate makes a single logical attempt: transport-level retry lives in
// the client, and the pipeline substitutes the fixed fallback on error, so
// stacking another retry loop here would only multiply latency.
type Evaluator struct {
	ai        domain.AIClient
	profile   config.Profile
	maxTokens int
}

func New(ai domain.AIClient, profile config.Profile, maxTokens int) *Evaluator {
	return &Evaluator{ai: ai, profile: profile, maxTokens: maxTokens}
}

// Evaluate scores one candidate against the role rubric.
func (e *Evaluator) Evaluate(ctx context.Context, cand domain.ProcessedCandidate, algoScore int) (domain.Evaluation, error) {
	raw, err := e.ai.ChatJSON(ctx, evaluationSystemPrompt(e.profile), evaluationUserPrompt(cand, algoScore), e.maxTokens)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("evaluate candidate %s: %w", cand.ID, err)
	}
	eval, err := decodeEvaluation(raw)
	if err != nil {
		slog.Warn("evaluation output rejected",
			slog.String("candidate_id", cand.ID),
			slog.Any("error", err))
		return domain.Evaluation{}, fmt.Errorf("evaluate candidate %s: %w", cand.ID, err)
	}
	return eval, nil
}

// GenerateQuestions produces interview questions for an already scored
// candidate, informed by its pros, cons, and red flags.
func (e *Evaluator) GenerateQuestions(ctx context.Context, sc domain.ScoredCandidate) ([]string, error) {
	raw, err := e.ai.ChatJSON(ctx, questionsSystemPrompt(e.profile), questionsUserPrompt(sc), e.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("questions for candidate %s: %w", sc.ID, err)
	}
	qs, err := decodeQuestions(raw)
	if err != nil {
		return nil, fmt.Errorf("questions for candidate %s: %w", sc.ID, err)
	}
	return qs, nil
}

func decodeEvaluation(raw string) (domain.Evaluation, error) {
	var eval domain.Evaluation
	cleaned, ok := jsonx.CleanObject(raw)
	if !ok {
		return eval, fmt.Errorf("%w: no JSON object in response", domain.ErrMalformedJSON)
	}
	if err := json.Unmarshal([]byte(cleaned), &eval); err != nil {
		return eval, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
	}
	eval.Score = domain.ClampScore(eval.Score)
	if err := getValidator().Struct(&eval); err != nil {
		return eval, fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err)
	}
	if eval.Pros == nil {
		eval.Pros = []string{}
	}
	if eval.Cons == nil {
		eval.Cons = []string{}
	}
	return eval, nil
}

func decodeQuestions(raw string) ([]string, error) {
	cleaned, ok := jsonx.CleanObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", domain.ErrMalformedJSON)
	}
	var payload struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
	}
	out := make([]string, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty questions list", domain.ErrSchemaInvalid)
	}
	if len(out) > QuestionCount {
		out = out[:QuestionCount]
	}
	return out, nil
}
