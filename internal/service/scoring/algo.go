// Package scoring holds the deterministic half of candidate assessment: the
// rule-based pre-score, the blend with the AI score, tier banding, and
// ranking.
package scoring

import "github.com/fairyhunter13/ai-candidate-ranker/internal/domain"

// Rule weights for the algorithmic pre-score. The base keeps a bare but
// clean profile near the middle of the scale so signals move it in both
// directions.
const (
	baseScore = 30

	yearsPerPoint = 2  // per year of experience
	yearsCap      = 10 // years counted at most

	soldToFinanceBonus = 10
	enterpriseBonus    = 8
	startupBonus       = 5
	founderBonus       = 5

	quotaStrongBonus = 10 // attainment >= 100%
	quotaSolidBonus  = 5  // attainment >= 80%

	acvLargeBonus = 8 // >= $100k deals
	acvMidBonus   = 4 // >= $25k deals

	redFlagPenalty     = 5 // per boolean flag
	concernPenalty     = 2 // per free-text concern
	concernPenaltyCap  = 6
	enrichmentBonus    = 4
	skillDepthBonus    = 3 // five or more listed skills
	titlePresentBonus  = 2
	quotaSolidCutoff   = 0.8
	quotaStrongCutoff  = 1.0
	acvMidCutoffUSD    = 25_000
	acvLargeCutoffUSD  = 100_000
	skillDepthCutoff   = 5
)

// AlgoScore computes the rule-based pre-score for one candidate on the
// 0..100 scale. It reads only deterministic and extracted fields, so equal
// inputs always produce equal scores.
func AlgoScore(c domain.ProcessedCandidate) int {
	score := baseScore

	years := c.YearsExperience
	if years > yearsCap {
		years = yearsCap
	}
	if years > 0 {
		score += years * yearsPerPoint
	}

	ex := c.Extraction
	if ex.SoldToFinance {
		score += soldToFinanceBonus
	}
	if ex.EnterpriseExperience {
		score += enterpriseBonus
	}
	if ex.StartupExperience {
		score += startupBonus
	}
	if ex.IsFounder {
		score += founderBonus
	}

	if ex.QuotaAttainment != nil {
		switch {
		case *ex.QuotaAttainment >= quotaStrongCutoff:
			score += quotaStrongBonus
		case *ex.QuotaAttainment >= quotaSolidCutoff:
			score += quotaSolidBonus
		}
	}
	if ex.MaxACVMentioned != nil {
		switch {
		case *ex.MaxACVMentioned >= acvLargeCutoffUSD:
			score += acvLargeBonus
		case *ex.MaxACVMentioned >= acvMidCutoffUSD:
			score += acvMidBonus
		}
	}

	score -= ex.RedFlags.Count() * redFlagPenalty
	if p := len(ex.RedFlags.Concerns) * concernPenalty; p > 0 {
		if p > concernPenaltyCap {
			p = concernPenaltyCap
		}
		score -= p
	}

	if c.HasEnrichmentData {
		score += enrichmentBonus
	}
	if len(c.Skills) >= skillDepthCutoff {
		score += skillDepthBonus
	}
	if c.Title != "" {
		score += titlePresentBonus
	}

	return domain.ClampScore(score)
}
