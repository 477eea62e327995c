package usecase

import (
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/evaluate"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/runstate"
)

// QuestionService generates interview questions lazily, on first request per
// candidate. Generated questions stick to the candidate record; the shared
// cache is optional and keyed by candidate content so re-uploads reuse it.
type QuestionService struct {
	Registry  *runstate.Registry
	Evaluator *evaluate.Evaluator
	Cache     domain.QuestionCache
}

// NewQuestionService constructs a QuestionService. Cache may be nil.
func NewQuestionService(reg *runstate.Registry, ev *evaluate.Evaluator, cache domain.QuestionCache) QuestionService {
	return QuestionService{Registry: reg, Evaluator: ev, Cache: cache}
}

// QuestionsFor returns the candidate's interview questions, generating and
// caching them on first request.
func (s QuestionService) QuestionsFor(ctx domain.Context, runID, candidateID string) ([]string, error) {
	run, err := resolveRun(s.Registry, runID)
	if err != nil {
		return nil, err
	}
	sc, ok := run.FindScored(candidateID)
	if !ok {
		return nil, fmt.Errorf("%w: candidate %s", domain.ErrNotFound, candidateID)
	}
	if len(sc.InterviewQuestions) > 0 {
		return sc.InterviewQuestions, nil
	}

	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, sc)
		if err != nil {
			slog.Warn("question cache lookup failed",
				slog.String("candidate_id", candidateID),
				slog.Any("error", err))
		} else if len(cached) > 0 {
			run.SetQuestions(candidateID, cached)
			return cached, nil
		}
	}

	questions, err := s.Evaluator.GenerateQuestions(ctx, sc)
	if err != nil {
		return nil, err
	}
	run.SetQuestions(candidateID, questions)
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, sc, questions); err != nil {
			slog.Warn("question cache write failed",
				slog.String("candidate_id", candidateID),
				slog.Any("error", err))
		}
	}
	slog.Info("interview questions generated",
		slog.String("run_id", run.ID()),
		slog.String("candidate_id", candidateID),
		slog.Int("count", len(questions)))
	return questions, nil
}
