package extract

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/config"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

// maxEnrichmentChars bounds the enrichment payload embedded in a prompt so a
// bloated scrape cannot blow the model's context window.
const maxEnrichmentChars = 6000

const extractionSchema = `{
  "bio_summary": "2-3 sentence professional summary (string, required)",
  "sold_to_finance": "has sold into finance/fintech buyers (boolean)",
  "is_founder": "founded or co-founded a company (boolean)",
  "startup_experience": "worked at an early-stage startup (boolean)",
  "enterprise_experience": "sold to or worked in large enterprises (boolean)",
  "max_acv_mentioned": "largest deal size in USD if stated, else null (integer or null)",
  "quota_attainment": "best attainment as a multiple, e.g. 1.2 for 120%, else null (number or null)",
  "industries": "industries sold into (array of strings)",
  "sales_methodologies": "named methodologies, e.g. MEDDIC (array of strings)",
  "red_flags": {
    "job_hopping": "boolean",
    "title_inflation": "boolean",
    "gaps_in_employment": "boolean",
    "overqualified": "boolean",
    "concerns": "short free-text concerns (array of strings)"
  }
}`

func extractionSystemPrompt(profile config.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a recruiting analyst screening candidates for a %s role.\n", profile.Role.Title)
	fmt.Fprintf(&b, "%s\n\n", profile.Role.Description)
	b.WriteString("Read the candidate data and extract the fields below. Only mark a boolean true when the data clearly supports it.\n")
	b.WriteString("Respond with ONLY a JSON object matching this schema, no prose:\n")
	b.WriteString(extractionSchema)
	return b.String()
}

func extractionUserPrompt(cand domain.ProcessedCandidate, enrich Enrichment) string {
	var b strings.Builder
	b.WriteString("Candidate:\n")
	fmt.Fprintf(&b, "Name: %s\n", cand.Name)
	fmt.Fprintf(&b, "Title: %s\n", orNone(cand.Title))
	fmt.Fprintf(&b, "Company: %s\n", orNone(cand.Company))
	fmt.Fprintf(&b, "Location: %s\n", orNone(strings.TrimSpace(strings.Trim(cand.City+", "+cand.State, ", "))))
	fmt.Fprintf(&b, "Years of experience: %d\n", cand.YearsExperience)
	if len(cand.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(cand.Skills, ", "))
	}
	b.WriteString("\nEnrichment profile JSON:\n")
	if enrich.Present() {
		b.WriteString(truncate(enrich.Raw(), maxEnrichmentChars))
	} else {
		b.WriteString("(none)")
	}
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n... (truncated)"
}
