// Package extract turns raw CSV rows into processed candidate profiles.
// The deterministic half is pure field mapping; the semantic half asks an
// LLM for the judgement-call fields and never fails the pipeline.
package extract

import (
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

// Deterministic computes every candidate field that needs no LLM. For each
// field the CSV value wins, then the enrichment payload, then a default.
// The parsed Enrichment is returned so the semantic pass can reuse it.
func Deterministic(row domain.RawCandidateRow) (domain.ProcessedCandidate, Enrichment) {
	enrich := ParseEnrichment(row.Enrichment)

	cand := domain.ProcessedCandidate{
		ID:                strconv.Itoa(row.SourceIndex),
		Name:              firstNonEmpty(row.Name, enrich.Str("full_name", "name"), domain.DefaultCandidateName),
		Title:             firstNonEmpty(row.Title, enrich.Str("occupation", "headline")),
		Company:           firstNonEmpty(row.Company, enrich.Str("company", "experiences.0.company")),
		YearsExperience:   row.YearsExperience,
		BaseSalary:        row.BaseSalary,
		OTE:               row.OTE,
		OpenToRemote:      row.OpenToRemote,
		OpenToTravel:      row.OpenToTravel,
		Skills:            enrich.Skills(domain.MaxSkills),
		HasEnrichmentData: enrich.Present(),
	}

	cand.City, cand.State = SplitLocation(row.Location)
	if cand.City == "" && cand.State == "" {
		cand.City, cand.State = enrich.Location()
	}
	if cand.YearsExperience == 0 {
		if y, ok := enrich.Int("years_experience", "years_of_experience"); ok {
			cand.YearsExperience = y
		}
	}
	return cand, enrich
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
