package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/adapter/observability"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/evaluate"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/extract"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/fanout"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/runstate"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/scoring"
	"github.com/fairyhunter13/ai-candidate-ranker/pkg/textx"
)

const defaultBatchSize = 5

// PipelineService owns the batch scheduler: it partitions candidates into
// fixed-size batches, runs extraction and evaluation per batch, and keeps the
// run's ranking current after every batch. Archive and Events are optional;
// nil disables them.
type PipelineService struct {
	Registry  *runstate.Registry
	Extractor *extract.Semantic
	Evaluator *evaluate.Evaluator
	AI        domain.AIClient
	Archive   domain.RunArchive
	Events    domain.EventPublisher
	BatchSize int
	OutputDir string
}

// NewPipelineService constructs a PipelineService with its dependencies.
func NewPipelineService(reg *runstate.Registry, ex *extract.Semantic, ev *evaluate.Evaluator, ai domain.AIClient, archive domain.RunArchive, events domain.EventPublisher, batchSize int, outputDir string) PipelineService {
	return PipelineService{
		Registry:  reg,
		Extractor: ex,
		Evaluator: ev,
		AI:        ai,
		Archive:   archive,
		Events:    events,
		BatchSize: batchSize,
		OutputDir: outputDir,
	}
}

// Start registers a new run and launches its pipeline as a detached
// background task. The run outlives the originating request.
func (s PipelineService) Start(ctx domain.Context, rows []domain.RawCandidateRow) (*runstate.Run, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no candidate rows", domain.ErrInvalidArgument)
	}
	runID := uuid.New().String()
	run := s.Registry.Create(runID, len(rows), time.Now().UTC())
	slog.Info("ranking run accepted",
		slog.String("run_id", runID),
		slog.Int("candidates", len(rows)),
		slog.String("model", s.AI.Model()))
	go s.run(context.WithoutCancel(ctx), run, rows)
	return run, nil
}

// run is the top level of the pipeline goroutine. A panic anywhere below is
// converted into a terminal error state rather than crashing the process.
func (s PipelineService) run(ctx context.Context, run *runstate.Run, rows []domain.RawCandidateRow) {
	tracer := otel.Tracer("usecase.pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.Run")
	span.SetAttributes(
		attribute.String("run.id", run.ID()),
		attribute.Int("run.candidates", len(rows)),
	)
	defer span.End()

	observability.StartRun()
	s.publish(ctx, domain.RunEvent{
		Type:            domain.EventRunStarted,
		RunID:           run.ID(),
		CandidatesTotal: len(rows),
		Model:           s.AI.Model(),
	})

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("pipeline panic: %v", rec)
			if run.Status().Terminal() {
				slog.Error("panic after run finished", slog.String("run_id", run.ID()), slog.Any("error", err))
				return
			}
			s.finishFailed(ctx, run, err)
		}
	}()

	if err := s.process(ctx, run, rows); err != nil {
		s.finishFailed(ctx, run, err)
		return
	}
	s.finishComplete(ctx, run)
}

// process drives the batch stage sequence. Per-candidate failures never reach
// here; anything that does is pipeline-fatal.
func (s PipelineService) process(ctx context.Context, run *runstate.Run, rows []domain.RawCandidateRow) error {
	tracer := otel.Tracer("usecase.pipeline")
	batches := splitBatches(rows, s.BatchSize)

	var processed []domain.ProcessedCandidate
	algoScores := make(map[string]int, len(rows))

	for b, batch := range batches {
		bctx, bspan := tracer.Start(ctx, "pipeline.Batch")
		bspan.SetAttributes(
			attribute.Int("batch.number", b+1),
			attribute.Int("batch.size", len(batch)),
		)

		run.BeginBatchExtraction(b+1, len(batches))
		slog.Info("extracting batch",
			slog.String("run_id", run.ID()),
			slog.Int("batch", b+1),
			slog.Int("of", len(batches)),
			slog.Int("size", len(batch)))

		cands := s.extractBatch(bctx, batch)
		previews := make([]domain.ExtractedPreview, len(cands))
		for i, c := range cands {
			previews[i] = domain.ExtractedPreview{
				ID:           c.ID,
				Name:         c.Name,
				Title:        c.Title,
				Company:      c.Company,
				City:         c.City,
				State:        c.State,
				BioSummary:   c.Extraction.BioSummary,
				RedFlagCount: c.Extraction.RedFlags.Count(),
			}
			observability.ObserveCandidate("extraction", c.Extraction.BioSummary == domain.FallbackBioSummary)
		}
		run.RecordExtracted(previews...)

		processed = append(processed, cands...)
		for _, c := range cands {
			algoScores[c.ID] = scoring.AlgoScore(c)
		}
		run.SetAlgoRanking(scoring.RankAlgo(processed, algoScores))

		run.BeginBatchScoring(b+1, len(batches))
		slog.Info("scoring batch",
			slog.String("run_id", run.ID()),
			slog.Int("batch", b+1),
			slog.Int("of", len(batches)))

		outcomes := s.evaluateBatch(bctx, cands, algoScores)
		scored := make([]domain.ScoredCandidate, len(cands))
		for i, c := range cands {
			sc := scoring.Compose(c, algoScores[c.ID], outcomes[i])
			scored[i] = sc
			observability.ObserveCandidate("scoring", outcomes[i].Degraded())
			observability.ObserveScores(sc.AlgoScore, sc.FinalScore)
		}
		run.RecordScored(scored...)

		ranked := scoring.Rank(run.ScoredSoFar())
		ranks := make(map[string]int, len(ranked))
		for _, sc := range ranked {
			ranks[sc.ID] = sc.Rank
		}
		run.ApplyRanks(ranks)

		observability.BatchesProcessedTotal.Inc()
		bspan.End()
	}

	return s.writeOutputs(run)
}

// extractBatch runs the deterministic pass per row, then fans out the
// semantic pass across the batch. Extract itself never errors, so a non-ok
// slot can only mean a panic in the task; the fallback extraction is
// substituted the same way.
func (s PipelineService) extractBatch(ctx context.Context, batch []domain.RawCandidateRow) []domain.ProcessedCandidate {
	cands := make([]domain.ProcessedCandidate, len(batch))
	enrichments := make([]extract.Enrichment, len(batch))
	for i, row := range batch {
		cands[i], enrichments[i] = extract.Deterministic(row)
	}

	tasks := make([]fanout.Task[domain.ExtractionResult], len(batch))
	for i := range batch {
		cand, enrich := cands[i], enrichments[i]
		tasks[i] = func(ctx context.Context) (domain.ExtractionResult, error) {
			return s.Extractor.Extract(ctx, cand, enrich), nil
		}
	}

	results := fanout.Gather(ctx, len(tasks), tasks)
	for i, res := range results {
		if res.Ok() {
			cands[i].Extraction = res.Value
			continue
		}
		slog.Error("semantic extraction task panicked, substituting fallback",
			slog.String("candidate_id", cands[i].ID),
			slog.Any("error", res.Err))
		cands[i].Extraction = domain.FallbackExtraction()
	}
	return cands
}

// evaluateBatch fans the AI evaluator out across the batch and tags each
// result. Failures of any kind degrade to the fixed fallback evaluation.
func (s PipelineService) evaluateBatch(ctx context.Context, cands []domain.ProcessedCandidate, algoScores map[string]int) []domain.EvalOutcome {
	tasks := make([]fanout.Task[domain.Evaluation], len(cands))
	for i := range cands {
		cand := cands[i]
		tasks[i] = func(ctx context.Context) (domain.Evaluation, error) {
			return s.Evaluator.Evaluate(ctx, cand, algoScores[cand.ID])
		}
	}

	results := fanout.Gather(ctx, len(tasks), tasks)
	outcomes := make([]domain.EvalOutcome, len(results))
	for i, res := range results {
		if res.Ok() {
			outcomes[i] = domain.OkEvaluation(res.Value)
			continue
		}
		slog.Warn("evaluation failed, substituting fallback",
			slog.String("candidate_id", cands[i].ID),
			slog.Any("error", res.Err))
		outcomes[i] = domain.DegradedEvaluation(res.Err)
	}
	return outcomes
}

// writeOutputs persists the final ranked list, once to the fixed path and
// once to the model-derived path. Write failure is pipeline-fatal.
func (s PipelineService) writeOutputs(run *runstate.Run) error {
	ranked := run.RankedResults()
	b, err := json.MarshalIndent(ranked, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ranked results: %w", err)
	}
	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	paths := []string{
		filepath.Join(s.OutputDir, "ranked_candidates.json"),
		filepath.Join(s.OutputDir, "ranked_candidates_"+textx.FileToken(s.AI.Model())+".json"),
	}
	for _, p := range paths {
		if err := os.WriteFile(p, b, 0o644); err != nil {
			return fmt.Errorf("write ranked results: %w", err)
		}
	}
	slog.Info("ranked results written",
		slog.String("run_id", run.ID()),
		slog.Int("candidates", len(ranked)),
		slog.String("path", paths[0]))
	return nil
}

func (s PipelineService) finishComplete(ctx context.Context, run *runstate.Run) {
	run.Complete(time.Now().UTC())
	observability.CompleteRun()
	snap := run.Snapshot()
	slog.Info("ranking run complete",
		slog.String("run_id", run.ID()),
		slog.Int("candidates", snap.CandidatesTotal),
		slog.Duration("took", snap.FinishedAt.Sub(snap.StartedAt)))
	s.archive(ctx, run)
	s.publish(ctx, domain.RunEvent{
		Type:            domain.EventRunCompleted,
		RunID:           run.ID(),
		CandidatesTotal: snap.CandidatesTotal,
		Model:           s.AI.Model(),
	})
}

func (s PipelineService) finishFailed(ctx context.Context, run *runstate.Run, err error) {
	run.Fail(err, time.Now().UTC())
	observability.FailRun()
	snap := run.Snapshot()
	slog.Error("ranking run failed",
		slog.String("run_id", run.ID()),
		slog.Int("candidates_scored", snap.CandidatesScored),
		slog.Any("error", err))
	s.archive(ctx, run)
	s.publish(ctx, domain.RunEvent{
		Type:            domain.EventRunFailed,
		RunID:           run.ID(),
		CandidatesTotal: snap.CandidatesTotal,
		Model:           s.AI.Model(),
		Error:           err.Error(),
	})
}

// archive saves the finished run, best-effort.
func (s PipelineService) archive(ctx context.Context, run *runstate.Run) {
	if s.Archive == nil {
		return
	}
	snap := run.Snapshot()
	rec := domain.RunRecord{
		RunID:           snap.RunID,
		Status:          snap.Status,
		CandidatesTotal: snap.CandidatesTotal,
		Model:           s.AI.Model(),
		Error:           snap.Error,
		Results:         run.RankedResults(),
		StartedAt:       snap.StartedAt,
		FinishedAt:      snap.FinishedAt,
	}
	if err := s.Archive.Save(ctx, rec); err != nil {
		slog.Warn("run archive save failed",
			slog.String("run_id", snap.RunID),
			slog.Any("error", err))
	}
}

// publish emits a lifecycle event, best-effort.
func (s PipelineService) publish(ctx context.Context, ev domain.RunEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		slog.Warn("run event publish failed",
			slog.String("type", ev.Type),
			slog.String("run_id", ev.RunID),
			slog.Any("error", err))
	}
}

// splitBatches partitions rows into ceil(len/size) contiguous batches.
func splitBatches(rows []domain.RawCandidateRow, size int) [][]domain.RawCandidateRow {
	if size <= 0 {
		size = defaultBatchSize
	}
	var out [][]domain.RawCandidateRow
	for start := 0; start < len(rows); start += size {
		out = append(out, rows[start:min(start+size, len(rows))])
	}
	return out
}
