package extract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/config"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/retry"
)

const goodExtraction = `{
  "bio_summary": "Enterprise seller with eight years closing six-figure SaaS deals.",
  "sold_to_finance": true,
  "is_founder": false,
  "startup_experience": true,
  "enterprise_experience": true,
  "max_acv_mentioned": 250000,
  "quota_attainment": 1.15,
  "industries": ["fintech", "saas"],
  "sales_methodologies": ["MEDDIC"],
  "red_flags": {
    "job_hopping": true,
    "title_inflation": false,
    "gaps_in_employment": false,
    "overqualified": false,
    "concerns": ["four jobs in five years"]
  }
}`

// aiStub scripts ChatJSON responses by call number.
type aiStub struct {
	fn    func(call int) (string, error)
	calls int
}

func (s *aiStub) ChatJSON(_ context.Context, _, _ string, _ int) (string, error) {
	s.calls++
	return s.fn(s.calls)
}

func (s *aiStub) Model() string { return "stub-model" }

func TestParseEnrichment(t *testing.T) {
	t.Parallel()
	absent := []struct {
		name string
		raw  string
	}{
		{"empty cell", ""},
		{"whitespace", "   "},
		{"nan placeholder", "nan"},
		{"null literal", "null"},
		{"empty array", "[]"},
		{"empty object", "{}"},
		{"invalid json", "{not json"},
		{"array of scalars", `["a", "b"]`},
		{"bare string", `"hello"`},
	}
	for _, tc := range absent {
		t.Run(tc.name, func(t *testing.T) {
			e := ParseEnrichment(tc.raw)
			require.False(t, e.Present())
			require.Empty(t, e.Raw())
		})
	}

	t.Run("object payload", func(t *testing.T) {
		e := ParseEnrichment(`{"occupation": "AE"}`)
		require.True(t, e.Present())
		require.Equal(t, "AE", e.Str("occupation"))
	})

	t.Run("array picks first object", func(t *testing.T) {
		e := ParseEnrichment(`[1, {"occupation": "SDR"}, {"occupation": "AE"}]`)
		require.True(t, e.Present())
		require.Equal(t, "SDR", e.Str("occupation"))
	})
}

func TestEnrichmentSkills(t *testing.T) {
	t.Parallel()
	e := ParseEnrichment(`{"skills": ["Salesforce", {"name": "MEDDIC"}, 42, {"level": "expert"}, "  "]}`)
	require.Equal(t, []string{"Salesforce", "MEDDIC"}, e.Skills(15))

	var long string
	for i := 0; i < 20; i++ {
		long += fmt.Sprintf("%q,", fmt.Sprintf("skill-%d", i))
	}
	e = ParseEnrichment(`{"skills": [` + long[:len(long)-1] + `]}`)
	require.Len(t, e.Skills(15), 15)
}

func TestSplitLocation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in          string
		city, state string
	}{
		{"Austin, Texas", "Austin", "Texas"},
		{"Austin, Texas, USA", "Austin", "Texas"},
		{"Austin", "Austin", ""},
		{"", "", ""},
		{"  Denver ,  Colorado ", "Denver", "Colorado"},
	}
	for _, tc := range cases {
		city, state := SplitLocation(tc.in)
		require.Equal(t, tc.city, city, tc.in)
		require.Equal(t, tc.state, state, tc.in)
	}
}

func TestDeterministic_CSVWinsOverEnrichment(t *testing.T) {
	t.Parallel()
	row := domain.RawCandidateRow{
		SourceIndex:     2,
		Name:            "Casey Roe",
		Title:           "Senior AE",
		Location:        "Denver, Colorado",
		YearsExperience: 7,
		Enrichment:      `{"full_name": "Someone Else", "occupation": "SDR", "location": "Austin, Texas"}`,
	}
	cand, enrich := Deterministic(row)
	require.True(t, enrich.Present())
	require.Equal(t, "2", cand.ID)
	require.Equal(t, "Casey Roe", cand.Name)
	require.Equal(t, "Senior AE", cand.Title)
	require.Equal(t, "Denver", cand.City)
	require.Equal(t, "Colorado", cand.State)
	require.Equal(t, 7, cand.YearsExperience)
	require.True(t, cand.HasEnrichmentData)
}

func TestDeterministic_EnrichmentFillsGaps(t *testing.T) {
	t.Parallel()
	row := domain.RawCandidateRow{
		SourceIndex: 0,
		Enrichment: `{
			"full_name": "Riley Fox",
			"occupation": "Account Executive",
			"company": "Acme",
			"location": "Austin, Texas, USA",
			"years_experience": 6,
			"skills": ["Salesforce", {"name": "MEDDIC"}]
		}`,
	}
	cand, _ := Deterministic(row)
	require.Equal(t, "0", cand.ID)
	require.Equal(t, "Riley Fox", cand.Name)
	require.Equal(t, "Account Executive", cand.Title)
	require.Equal(t, "Acme", cand.Company)
	require.Equal(t, "Austin", cand.City)
	require.Equal(t, "Texas", cand.State)
	require.Equal(t, 6, cand.YearsExperience)
	require.Equal(t, []string{"Salesforce", "MEDDIC"}, cand.Skills)
}

func TestDeterministic_DefaultsWhenBothSilent(t *testing.T) {
	t.Parallel()
	row := domain.RawCandidateRow{SourceIndex: 4, Enrichment: "[]"}
	cand, enrich := Deterministic(row)
	require.False(t, enrich.Present())
	require.False(t, cand.HasEnrichmentData)
	require.Equal(t, "4", cand.ID)
	require.Equal(t, domain.DefaultCandidateName, cand.Name)
	require.Empty(t, cand.Title)
	require.Empty(t, cand.Skills)
	require.Zero(t, cand.YearsExperience)
}

func TestSemantic_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()
	stub := &aiStub{fn: func(call int) (string, error) {
		if call < 3 {
			return "", errors.New("upstream hiccup")
		}
		return "```json\n" + goodExtraction + "\n```", nil
	}}
	sem := NewSemantic(stub, retry.Immediate(2), config.DefaultProfile(), 512)

	out := sem.Extract(context.Background(), domain.ProcessedCandidate{ID: "1", Name: "A"}, Enrichment{})
	require.Equal(t, 3, stub.calls)
	require.Equal(t, "Enterprise seller with eight years closing six-figure SaaS deals.", out.BioSummary)
	require.True(t, out.SoldToFinance)
	require.Equal(t, 1, out.RedFlags.Count())
}

func TestSemantic_FallbackAfterExhaustion(t *testing.T) {
	t.Parallel()
	stub := &aiStub{fn: func(int) (string, error) {
		return "I'm sorry, I can't produce JSON today.", nil
	}}
	sem := NewSemantic(stub, retry.Immediate(2), config.DefaultProfile(), 512)

	out := sem.Extract(context.Background(), domain.ProcessedCandidate{ID: "7"}, Enrichment{})
	require.Equal(t, 3, stub.calls)
	require.Equal(t, domain.FallbackBioSummary, out.BioSummary)
	require.False(t, out.SoldToFinance)
	require.False(t, out.IsFounder)
	require.NotNil(t, out.Industries)
	require.Empty(t, out.Industries)
}

func TestSemantic_PermanentErrorSkipsRetries(t *testing.T) {
	t.Parallel()
	stub := &aiStub{fn: func(int) (string, error) {
		return "", fmt.Errorf("%w: prompt rejected", domain.ErrInvalidArgument)
	}}
	sem := NewSemantic(stub, retry.Immediate(5), config.DefaultProfile(), 512)

	out := sem.Extract(context.Background(), domain.ProcessedCandidate{ID: "9"}, Enrichment{})
	require.Equal(t, 1, stub.calls)
	require.Equal(t, domain.FallbackBioSummary, out.BioSummary)
}

func TestSemantic_SchemaViolationRetried(t *testing.T) {
	t.Parallel()
	stub := &aiStub{fn: func(call int) (string, error) {
		if call == 1 {
			return `{"sold_to_finance": true}`, nil // missing bio_summary
		}
		return goodExtraction, nil
	}}
	sem := NewSemantic(stub, retry.Immediate(2), config.DefaultProfile(), 512)

	out := sem.Extract(context.Background(), domain.ProcessedCandidate{ID: "3"}, Enrichment{})
	require.Equal(t, 2, stub.calls)
	require.NotEqual(t, domain.FallbackBioSummary, out.BioSummary)
}

func TestDecodeExtraction_NormalizesSlices(t *testing.T) {
	t.Parallel()
	res, err := decodeExtraction(`{"bio_summary": "Short profile."}`)
	require.NoError(t, err)
	require.NotNil(t, res.Industries)
	require.NotNil(t, res.SalesMethodologies)
	require.NotNil(t, res.RedFlags.Concerns)

	_, err = decodeExtraction("no json here")
	require.ErrorIs(t, err, domain.ErrMalformedJSON)
}
