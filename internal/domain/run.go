package domain

import "time"

// RunStatus is the pipeline lifecycle: idle -> extracting -> scoring ->
// complete, with error reachable from any non-terminal state. Extracting and
// scoring alternate per batch, so the value reflects the current batch's
// stage rather than overall completion.
type RunStatus string

const (
	RunIdle       RunStatus = "idle"
	RunExtracting RunStatus = "extracting"
	RunScoring    RunStatus = "scoring"
	RunComplete   RunStatus = "complete"
	RunError      RunStatus = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s RunStatus) Terminal() bool { return s == RunComplete || s == RunError }

// ExtractedPreview is the lightweight per-candidate view appended to the run
// as soon as its extraction completes, ahead of any scoring.
type ExtractedPreview struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	City         string `json:"city"`
	State        string `json:"state"`
	BioSummary   string `json:"bio_summary"`
	RedFlagCount int    `json:"red_flag_count"`
}

// AlgoRankEntry is one row of the interim ranking computed from algorithmic
// scores alone, published before AI scoring of later batches has happened.
type AlgoRankEntry struct {
	Rank      int    `json:"rank"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	AlgoScore int    `json:"algo_score"`
}

// RunSnapshot is the immutable point-in-time view of a run served to polling
// clients. Slices are copies; holding a snapshot never observes later
// pipeline writes.
type RunSnapshot struct {
	RunID               string             `json:"run_id,omitempty"`
	Status              RunStatus          `json:"status"`
	Phase               string             `json:"phase"`
	Progress            int                `json:"progress"`
	Message             string             `json:"message"`
	CandidatesTotal     int                `json:"candidates_total"`
	CandidatesExtracted int                `json:"candidates_extracted"`
	CandidatesScored    int                `json:"candidates_scored"`
	Error               string             `json:"error"`
	ExtractedPreview    []ExtractedPreview `json:"extracted_preview"`
	ScoredCandidates    []ScoredCandidate  `json:"scored_candidates"`
	AlgoRanked          []AlgoRankEntry    `json:"algo_ranked"`
	StartedAt           time.Time          `json:"started_at,omitzero"`
	FinishedAt          time.Time          `json:"finished_at,omitzero"`
}

// IdleSnapshot is what pollers see before any run has been started.
func IdleSnapshot() RunSnapshot {
	return RunSnapshot{
		Status:           RunIdle,
		ExtractedPreview: []ExtractedPreview{},
		ScoredCandidates: []ScoredCandidate{},
		AlgoRanked:       []AlgoRankEntry{},
	}
}

// RunRecord is the archival form of a finished run.
type RunRecord struct {
	RunID           string
	Status          RunStatus
	CandidatesTotal int
	Model           string
	Error           string
	Results         []ScoredCandidate
	StartedAt       time.Time
	FinishedAt      time.Time
}
