// Package runstate tracks the mutable state of candidate-ranking runs.
// Each run is keyed by id in a concurrency-safe registry so polling handlers
// can resolve either a specific run or "the current one" without assuming a
// single run per process.
package runstate

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

// Progress checkpoints. Extraction and scoring each interpolate their own
// range by candidates completed, so the value reads per-stage progress, not
// overall completion.
const (
	progressAccepted        = 10
	progressExtractionFloor = 20
	progressExtractionCeil  = 50
	progressScoringFloor    = 50
	progressScoringCeil     = 95
	progressComplete        = 100
)

// Registry owns all live runs. The zero value is not usable; construct with
// NewRegistry.
type Registry struct {
	mu   sync.RWMutex
	runs map[string]*Run
	last string
}

func NewRegistry() *Registry {
	return &Registry{runs: make(map[string]*Run)}
}

// Create registers a new run in its accepted state and marks it current.
func (r *Registry) Create(runID string, total int, startedAt time.Time) *Run {
	run := &Run{
		id:        runID,
		status:    domain.RunExtracting,
		phase:     "starting",
		message:   "Upload received, starting extraction",
		progress:  progressAccepted,
		total:     total,
		startedAt: startedAt,
	}
	r.mu.Lock()
	r.runs[runID] = run
	r.last = runID
	r.mu.Unlock()
	return run
}

// Get resolves a run by id.
func (r *Registry) Get(runID string) (*Run, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[runID]
	return run, ok
}

// Current resolves the most recently created run, if any.
func (r *Registry) Current() (*Run, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == "" {
		return nil, false
	}
	run, ok := r.runs[r.last]
	return run, ok
}

// Run is the state of one pipeline run. The pipeline goroutine is the sole
// writer; any number of polling readers take snapshots.
type Run struct {
	mu         sync.RWMutex
	id         string
	status     domain.RunStatus
	phase      string
	message    string
	progress   int
	total      int
	extracted  int
	scoredN    int
	errMsg     string
	preview    []domain.ExtractedPreview
	algoRanked []domain.AlgoRankEntry
	scored     []domain.ScoredCandidate
	startedAt  time.Time
	finishedAt time.Time
}

// ID returns the run id.
func (run *Run) ID() string { return run.id }

// BeginBatchExtraction flips the run into its extracting stage for one batch.
func (run *Run) BeginBatchExtraction(batch, totalBatches int) {
	run.mu.Lock()
	defer run.mu.Unlock()
	if run.status.Terminal() {
		return
	}
	run.status = domain.RunExtracting
	run.phase = "extraction"
	run.message = batchMessage("Extracting", batch, totalBatches)
	run.progress = interpolate(progressExtractionFloor, progressExtractionCeil, run.extracted, run.total)
}

// RecordExtracted appends preview entries for freshly extracted candidates
// and advances extraction progress.
func (run *Run) RecordExtracted(previews ...domain.ExtractedPreview) {
	run.mu.Lock()
	defer run.mu.Unlock()
	run.preview = append(run.preview, previews...)
	run.extracted += len(previews)
	run.progress = interpolate(progressExtractionFloor, progressExtractionCeil, run.extracted, run.total)
}

// SetAlgoRanking replaces the interim pre-score leaderboard.
func (run *Run) SetAlgoRanking(entries []domain.AlgoRankEntry) {
	run.mu.Lock()
	defer run.mu.Unlock()
	run.algoRanked = entries
}

// BeginBatchScoring flips the run into its scoring stage for one batch.
func (run *Run) BeginBatchScoring(batch, totalBatches int) {
	run.mu.Lock()
	defer run.mu.Unlock()
	if run.status.Terminal() {
		return
	}
	run.status = domain.RunScoring
	run.phase = "scoring"
	run.message = batchMessage("Scoring", batch, totalBatches)
	run.progress = interpolate(progressScoringFloor, progressScoringCeil, run.scoredN, run.total)
}

// RecordScored appends newly scored candidates in batch order and advances
// scoring progress. Positional order is preserved across batches; rank
// fields carry the logical ordering.
func (run *Run) RecordScored(scs ...domain.ScoredCandidate) {
	run.mu.Lock()
	defer run.mu.Unlock()
	run.scored = append(run.scored, scs...)
	run.scoredN += len(scs)
	run.progress = interpolate(progressScoringFloor, progressScoringCeil, run.scoredN, run.total)
}

// ScoredSoFar returns a copy of the accumulated scored candidates for a
// ranking pass.
func (run *Run) ScoredSoFar() []domain.ScoredCandidate {
	run.mu.RLock()
	defer run.mu.RUnlock()
	return append([]domain.ScoredCandidate(nil), run.scored...)
}

// ApplyRanks writes recomputed ranks back by candidate id without disturbing
// the positional batch order.
func (run *Run) ApplyRanks(ranks map[string]int) {
	run.mu.Lock()
	defer run.mu.Unlock()
	for i := range run.scored {
		if rank, ok := ranks[run.scored[i].ID]; ok {
			run.scored[i].Rank = rank
		}
	}
}

// Complete marks the run finished.
func (run *Run) Complete(at time.Time) {
	run.mu.Lock()
	defer run.mu.Unlock()
	if run.status.Terminal() {
		return
	}
	run.status = domain.RunComplete
	run.phase = "complete"
	run.message = "Processing complete"
	run.progress = progressComplete
	run.finishedAt = at
}

// Fail marks the run errored with a message. Terminal states are sticky, so
// a late failure cannot reopen a completed run.
func (run *Run) Fail(err error, at time.Time) {
	run.mu.Lock()
	defer run.mu.Unlock()
	if run.status.Terminal() {
		return
	}
	run.status = domain.RunError
	run.phase = "error"
	run.errMsg = err.Error()
	run.message = "Processing failed: " + err.Error()
	run.finishedAt = at
}

// Status returns the current lifecycle state.
func (run *Run) Status() domain.RunStatus {
	run.mu.RLock()
	defer run.mu.RUnlock()
	return run.status
}

// Snapshot returns a point-in-time copy safe to serialize while the pipeline
// keeps mutating the run.
func (run *Run) Snapshot() domain.RunSnapshot {
	run.mu.RLock()
	defer run.mu.RUnlock()
	return domain.RunSnapshot{
		RunID:               run.id,
		Status:              run.status,
		Phase:               run.phase,
		Progress:            run.progress,
		Message:             run.message,
		CandidatesTotal:     run.total,
		CandidatesExtracted: run.extracted,
		CandidatesScored:    run.scoredN,
		Error:               run.errMsg,
		ExtractedPreview:    append([]domain.ExtractedPreview{}, run.preview...),
		AlgoRanked:          append([]domain.AlgoRankEntry{}, run.algoRanked...),
		ScoredCandidates:    append([]domain.ScoredCandidate{}, run.scored...),
		StartedAt:           run.startedAt,
		FinishedAt:          run.finishedAt,
	}
}

// RankedResults returns the scored candidates ordered by rank, as presented
// by the results endpoint and the persisted output files.
func (run *Run) RankedResults() []domain.ScoredCandidate {
	out := run.ScoredSoFar()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// FindScored looks up one scored candidate by id.
func (run *Run) FindScored(id string) (domain.ScoredCandidate, bool) {
	run.mu.RLock()
	defer run.mu.RUnlock()
	for _, sc := range run.scored {
		if sc.ID == id {
			return sc, true
		}
	}
	return domain.ScoredCandidate{}, false
}

// SetQuestions caches generated interview questions on the candidate record.
// Questions are the only field mutated after a ScoredCandidate is recorded.
func (run *Run) SetQuestions(id string, questions []string) bool {
	run.mu.Lock()
	defer run.mu.Unlock()
	for i := range run.scored {
		if run.scored[i].ID == id {
			run.scored[i].InterviewQuestions = append([]string(nil), questions...)
			return true
		}
	}
	return false
}

func interpolate(floor, ceil, done, total int) int {
	if total <= 0 {
		return floor
	}
	if done > total {
		done = total
	}
	return floor + (ceil-floor)*done/total
}

func batchMessage(verb string, batch, totalBatches int) string {
	return fmt.Sprintf("%s batch %d/%d", verb, batch, totalBatches)
}
