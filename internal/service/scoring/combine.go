package scoring

import (
	"math"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

// Blend weights for the final score. The AI verdict carries more weight than
// the rule-based pre-score but cannot override it entirely.
const (
	algoWeight = 0.4
	aiWeight   = 0.6
)

// FinalScore blends the algorithmic and AI scores, rounding half away from
// zero.
func FinalScore(algo, ai int) int {
	blended := algoWeight*float64(algo) + aiWeight*float64(ai)
	return domain.ClampScore(int(math.Round(blended)))
}

// TierFor maps a final score to its display band.
func TierFor(score int) domain.Tier {
	switch {
	case score >= 85:
		return domain.TierTop
	case score >= 70:
		return domain.TierStrong
	case score >= 55:
		return domain.TierGood
	case score >= 40:
		return domain.TierEvaluate
	default:
		return domain.TierPoor
	}
}

// Compose builds the terminal record for one candidate from its processed
// profile, pre-score, and evaluation outcome. Rank is left zero; a ranking
// pass assigns it.
func Compose(cand domain.ProcessedCandidate, algo int, outcome domain.EvalOutcome) domain.ScoredCandidate {
	eval := outcome.Evaluation()
	final := FinalScore(algo, eval.Score)
	return domain.ScoredCandidate{
		Tier:              TierFor(final),
		AlgoScore:         algo,
		AIScore:           eval.Score,
		FinalScore:        final,
		ID:                cand.ID,
		Name:              cand.Name,
		Title:             cand.Title,
		Company:           cand.Company,
		City:              cand.City,
		State:             cand.State,
		YearsExperience:   cand.YearsExperience,
		Skills:            nonNil(cand.Skills),
		HasEnrichmentData: cand.HasEnrichmentData,
		BioSummary:        cand.Extraction.BioSummary,
		RedFlagCount:      cand.Extraction.RedFlags.Count(),
		OneLineSummary:    eval.OneLineSummary,
		Pros:              nonNil(eval.Pros),
		Cons:              nonNil(eval.Cons),
		Reasoning:         eval.Reasoning,

		InterviewQuestions: []string{},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
