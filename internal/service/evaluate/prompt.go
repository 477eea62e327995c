package evaluate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/config"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

const evaluationSchema = `{
  "score": "overall fit 0-100 (integer, required)",
  "one_line_summary": "one sentence verdict (string, required)",
  "pros": "strengths for this role (array of strings)",
  "cons": "weaknesses or risks (array of strings)",
  "reasoning": "2-4 sentences explaining the score (string)"
}`

func evaluationSystemPrompt(profile config.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an experienced hiring manager evaluating candidates for a %s role.\n", profile.Role.Title)
	fmt.Fprintf(&b, "%s\n\nScoring rubric:\n%s\n\n", profile.Role.Description, profile.Rubric)
	b.WriteString("Respond with ONLY a JSON object matching this schema, no prose:\n")
	b.WriteString(evaluationSchema)
	return b.String()
}

func evaluationUserPrompt(cand domain.ProcessedCandidate, algoScore int) string {
	var b strings.Builder
	b.WriteString("Candidate profile JSON:\n")
	if body, err := json.MarshalIndent(cand, "", "  "); err == nil {
		b.Write(body)
	}
	fmt.Fprintf(&b, "\n\nRule-based pre-score: %d/100\n", algoScore)
	b.WriteString("Judge the candidate on the rubric; the pre-score is context, not a target.")
	return b.String()
}

func questionsSystemPrompt(profile config.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are preparing a screening interview for a %s role.\n", profile.Role.Title)
	if profile.QuestionStyle != "" {
		fmt.Fprintf(&b, "%s\n", profile.QuestionStyle)
	}
	fmt.Fprintf(&b, "Write exactly %d questions that probe this candidate's specific strengths, gaps, and red flags.\n", QuestionCount)
	b.WriteString(`Respond with ONLY a JSON object: {"questions": ["...", "...", "..."]}`)
	return b.String()
}

func questionsUserPrompt(sc domain.ScoredCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate: %s, %s at %s\n", sc.Name, orUnknown(sc.Title), orUnknown(sc.Company))
	fmt.Fprintf(&b, "Summary: %s\n", sc.BioSummary)
	fmt.Fprintf(&b, "Verdict: %s (final score %d, tier %s)\n", sc.OneLineSummary, sc.FinalScore, sc.Tier)
	if len(sc.Pros) > 0 {
		fmt.Fprintf(&b, "Pros: %s\n", strings.Join(sc.Pros, "; "))
	}
	if len(sc.Cons) > 0 {
		fmt.Fprintf(&b, "Cons: %s\n", strings.Join(sc.Cons, "; "))
	}
	fmt.Fprintf(&b, "Red flags raised: %d\n", sc.RedFlagCount)
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}
