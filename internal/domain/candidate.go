package domain

// Field defaults substituted by the deterministic pass when both the source
// row and the enrichment payload are silent.
const (
	DefaultCandidateName = "Unknown User"
	MaxSkills            = 15
)

// RawCandidateRow is one candidate as read from the source CSV.
// Immutable once read; SourceIndex is the zero-based row position and is the
// basis for the candidate's stable id.
type RawCandidateRow struct {
	SourceIndex     int
	Name            string
	Title           string
	Company         string
	Location        string
	YearsExperience int
	BaseSalary      *int
	OTE             *int
	OpenToRemote    bool
	OpenToTravel    bool
	// Enrichment is the raw JSON text of the optional third-party profile
	// payload. It may be an object, a list, empty, or garbage.
	Enrichment string
}

// RedFlags holds the concerns surfaced by the semantic extractor.
type RedFlags struct {
	JobHopping       bool     `json:"job_hopping"`
	TitleInflation   bool     `json:"title_inflation"`
	GapsInEmployment bool     `json:"gaps_in_employment"`
	Overqualified    bool     `json:"overqualified"`
	Concerns         []string `json:"concerns"`
}

// Count returns the number of boolean flags set to true.
func (rf RedFlags) Count() int {
	n := 0
	for _, b := range []bool{rf.JobHopping, rf.TitleInflation, rf.GapsInEmployment, rf.Overqualified} {
		if b {
			n++
		}
	}
	return n
}

// ExtractionResult is the semantic extractor's structured output.
// It is always fully populated: on any failure the fixed fallback below is
// used instead of a partial value.
type ExtractionResult struct {
	BioSummary           string   `json:"bio_summary" validate:"required"`
	SoldToFinance        bool     `json:"sold_to_finance"`
	IsFounder            bool     `json:"is_founder"`
	StartupExperience    bool     `json:"startup_experience"`
	EnterpriseExperience bool     `json:"enterprise_experience"`
	MaxACVMentioned      *int     `json:"max_acv_mentioned" validate:"omitempty,gte=0"`
	QuotaAttainment      *float64 `json:"quota_attainment" validate:"omitempty,gte=0,lte=10"`
	Industries           []string `json:"industries"`
	SalesMethodologies   []string `json:"sales_methodologies"`
	RedFlags             RedFlags `json:"red_flags"`
}

// FallbackBioSummary is the sentinel bio used when every extraction attempt
// has been exhausted.
const FallbackBioSummary = "Unable to extract profile summary."

// FallbackExtraction returns the fixed safe ExtractionResult substituted when
// the semantic extractor runs out of attempts. All booleans false, lists
// empty, numerics absent.
func FallbackExtraction() ExtractionResult {
	return ExtractionResult{
		BioSummary:         FallbackBioSummary,
		Industries:         []string{},
		SalesMethodologies: []string{},
		RedFlags:           RedFlags{Concerns: []string{}},
	}
}

// ProcessedCandidate is the union of the deterministic fields and the
// semantic extraction, keyed by the stable id (source row index as string).
// Created once per candidate per run and never mutated afterwards.
type ProcessedCandidate struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Title             string   `json:"title"`
	Company           string   `json:"company"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	YearsExperience   int      `json:"years_experience"`
	BaseSalary        *int     `json:"base_salary"`
	OTE               *int     `json:"ote"`
	OpenToRemote      bool     `json:"open_to_remote"`
	OpenToTravel      bool     `json:"open_to_travel"`
	Skills            []string `json:"skills"`
	HasEnrichmentData bool     `json:"has_enrichment_data"`

	Extraction ExtractionResult `json:"extraction"`
}

// Evaluation is the AI evaluator's qualitative verdict for one candidate.
type Evaluation struct {
	Score          int      `json:"score" validate:"gte=0,lte=100"`
	OneLineSummary string   `json:"one_line_summary" validate:"required"`
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	Reasoning      string   `json:"reasoning"`
}

// FallbackEvaluation returns the fixed Evaluation substituted when a
// candidate's evaluation call fails for any reason.
func FallbackEvaluation() Evaluation {
	return Evaluation{
		Score:          50,
		OneLineSummary: "Evaluation error",
		Pros:           []string{"Profile available"},
		Cons:           []string{"Error during scoring"},
		Reasoning:      "Technical error occurred.",
	}
}

// Tier is the discrete band a final score falls into.
type Tier string

const (
	TierTop      Tier = "Top Tier"
	TierStrong   Tier = "Strong"
	TierGood     Tier = "Good"
	TierEvaluate Tier = "Evaluate"
	TierPoor     Tier = "Poor"
)

// ScoredCandidate is the terminal per-candidate record. Rank is reassigned on
// every ranking pass; every other field is immutable after creation.
// InterviewQuestions starts empty and is populated lazily on first request.
type ScoredCandidate struct {
	Rank       int  `json:"rank"`
	Tier       Tier `json:"tier"`
	AlgoScore  int  `json:"algo_score"`
	AIScore    int  `json:"ai_score"`
	FinalScore int  `json:"final_score"`

	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Title             string   `json:"title"`
	Company           string   `json:"company"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	YearsExperience   int      `json:"years_experience"`
	Skills            []string `json:"skills"`
	HasEnrichmentData bool     `json:"has_enrichment_data"`

	BioSummary   string `json:"bio_summary"`
	RedFlagCount int    `json:"red_flag_count"`

	OneLineSummary string   `json:"one_line_summary"`
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	Reasoning      string   `json:"reasoning"`

	InterviewQuestions []string `json:"interview_questions"`
}

// ClampScore bounds a score to the [0,100] scale shared by all three scores.
func ClampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
