package domain

import (
	"errors"
	"testing"
)

func TestRedFlagsCount(t *testing.T) {
	tests := []struct {
		name     string
		flags    RedFlags
		expected int
	}{
		{"none", RedFlags{}, 0},
		{"one", RedFlags{JobHopping: true}, 1},
		{"two", RedFlags{JobHopping: true, Overqualified: true}, 2},
		{"all", RedFlags{JobHopping: true, TitleInflation: true, GapsInEmployment: true, Overqualified: true}, 4},
		{"concerns do not count", RedFlags{Concerns: []string{"vague dates", "no quota data"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.flags.Count(); got != tt.expected {
				t.Errorf("Count() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestFallbackExtraction(t *testing.T) {
	fb := FallbackExtraction()

	if fb.BioSummary != "Unable to extract profile summary." {
		t.Errorf("BioSummary = %q", fb.BioSummary)
	}
	if fb.SoldToFinance || fb.IsFounder || fb.StartupExperience || fb.EnterpriseExperience {
		t.Errorf("expected all booleans false, got %+v", fb)
	}
	if fb.MaxACVMentioned != nil || fb.QuotaAttainment != nil {
		t.Errorf("expected nil numerics, got %+v", fb)
	}
	if fb.Industries == nil || len(fb.Industries) != 0 {
		t.Errorf("Industries = %v, want empty non-nil", fb.Industries)
	}
	if fb.SalesMethodologies == nil || len(fb.SalesMethodologies) != 0 {
		t.Errorf("SalesMethodologies = %v, want empty non-nil", fb.SalesMethodologies)
	}
	if fb.RedFlags.Count() != 0 {
		t.Errorf("RedFlags.Count() = %d, want 0", fb.RedFlags.Count())
	}
}

func TestFallbackEvaluation(t *testing.T) {
	fb := FallbackEvaluation()

	if fb.Score != 50 {
		t.Errorf("Score = %d, want 50", fb.Score)
	}
	if fb.OneLineSummary != "Evaluation error" {
		t.Errorf("OneLineSummary = %q", fb.OneLineSummary)
	}
	if len(fb.Pros) != 1 || fb.Pros[0] != "Profile available" {
		t.Errorf("Pros = %v", fb.Pros)
	}
	if len(fb.Cons) != 1 || fb.Cons[0] != "Error during scoring" {
		t.Errorf("Cons = %v", fb.Cons)
	}
	if fb.Reasoning != "Technical error occurred." {
		t.Errorf("Reasoning = %q", fb.Reasoning)
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in       int
		expected int
	}{
		{-10, 0},
		{0, 0},
		{50, 50},
		{100, 100},
		{250, 100},
	}
	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.expected {
			t.Errorf("ClampScore(%d) = %d, want %d", tt.in, got, tt.expected)
		}
	}
}

func TestEvalOutcomeTags(t *testing.T) {
	ok := OkEvaluation(Evaluation{Score: 91, OneLineSummary: "Strong closer"})
	if ok.Degraded() {
		t.Errorf("Ok outcome reported degraded")
	}
	if ok.Cause() != nil {
		t.Errorf("Ok outcome carries cause %v", ok.Cause())
	}
	if ok.Evaluation().Score != 91 {
		t.Errorf("Evaluation().Score = %d, want 91", ok.Evaluation().Score)
	}

	cause := errors.New("upstream exploded")
	deg := DegradedEvaluation(cause)
	if !deg.Degraded() {
		t.Errorf("degraded outcome reported ok")
	}
	if !errors.Is(deg.Cause(), cause) {
		t.Errorf("Cause() = %v, want %v", deg.Cause(), cause)
	}
	if deg.Evaluation().Score != 50 {
		t.Errorf("degraded Evaluation().Score = %d, want fallback 50", deg.Evaluation().Score)
	}
	if got := deg.Evaluation().Cons; len(got) != 1 || got[0] != "Error during scoring" {
		t.Errorf("degraded Cons = %v", got)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"malformed json", ErrMalformedJSON, true},
		{"schema invalid", ErrSchemaInvalid, true},
		{"rate limited", ErrUpstreamRateLimit, true},
		{"timeout", ErrUpstreamTimeout, true},
		{"invalid argument", ErrInvalidArgument, false},
		{"not found", ErrNotFound, false},
		{"conflict", ErrConflict, false},
		{"wrapped invalid argument", errors.Join(errors.New("op=chat"), ErrInvalidArgument), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.expected {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRunStatusTerminal(t *testing.T) {
	tests := []struct {
		status   RunStatus
		expected bool
	}{
		{RunIdle, false},
		{RunExtracting, false},
		{RunScoring, false},
		{RunComplete, true},
		{RunError, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.expected {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.expected)
		}
	}
}

func TestIdleSnapshot(t *testing.T) {
	s := IdleSnapshot()
	if s.Status != RunIdle {
		t.Errorf("Status = %q, want idle", s.Status)
	}
	if s.ExtractedPreview == nil || s.ScoredCandidates == nil || s.AlgoRanked == nil {
		t.Errorf("idle snapshot must serialize lists as [], got %+v", s)
	}
	if s.Progress != 0 || s.CandidatesTotal != 0 {
		t.Errorf("idle snapshot not zeroed: %+v", s)
	}
}
