package usecase

import (
	"fmt"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/runstate"
)

// ResultService provides read access to live runs and the optional archive.
type ResultService struct {
	Registry *runstate.Registry
	Archive  domain.RunArchive
}

// NewResultService constructs a ResultService.
func NewResultService(reg *runstate.Registry, archive domain.RunArchive) ResultService {
	return ResultService{Registry: reg, Archive: archive}
}

// Status returns a point-in-time snapshot. An empty runID resolves to the
// current run, or the idle shape when nothing has been uploaded yet.
func (s ResultService) Status(runID string) (domain.RunSnapshot, error) {
	if runID == "" {
		run, ok := s.Registry.Current()
		if !ok {
			return domain.IdleSnapshot(), nil
		}
		return run.Snapshot(), nil
	}
	run, ok := s.Registry.Get(runID)
	if !ok {
		return domain.RunSnapshot{}, fmt.Errorf("%w: run %s", domain.ErrNotFound, runID)
	}
	return run.Snapshot(), nil
}

// Results returns the ranked list for a run: complete when the run finished,
// partial while it is still processing. Asking before any run exists is a
// conflict, matching the polling contract.
func (s ResultService) Results(runID string) ([]domain.ScoredCandidate, domain.RunStatus, error) {
	run, err := resolveRun(s.Registry, runID)
	if err != nil {
		return nil, domain.RunIdle, err
	}
	return run.RankedResults(), run.Status(), nil
}

// RecentRuns lists archived runs, newest first.
func (s ResultService) RecentRuns(ctx domain.Context, limit int) ([]domain.RunRecord, error) {
	if s.Archive == nil {
		return nil, fmt.Errorf("%w: run archive not configured", domain.ErrNotFound)
	}
	return s.Archive.ListRecent(ctx, limit)
}

// resolveRun picks the referenced run, or the current one when runID is
// empty.
func resolveRun(reg *runstate.Registry, runID string) (*runstate.Run, error) {
	if runID != "" {
		run, ok := reg.Get(runID)
		if !ok {
			return nil, fmt.Errorf("%w: run %s", domain.ErrNotFound, runID)
		}
		return run, nil
	}
	run, ok := reg.Current()
	if !ok {
		return nil, fmt.Errorf("%w: no ranking run started", domain.ErrConflict)
	}
	return run, nil
}
