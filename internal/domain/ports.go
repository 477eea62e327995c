package domain

import "context"

// Context is an alias so ports read cleanly; adapters and usecases pass
// context.Context straight through.
type Context = context.Context

// AIClient (port)

// AIClient is the chat collaborator behind both the semantic extractor and
// the AI evaluator. ChatJSON must request a JSON-object response; the caller
// owns cleaning, decoding, and schema validation of the returned text.
type AIClient interface {
	ChatJSON(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
	// Model identifies the evaluator model, used for the model-derived
	// output path and for event/archive metadata.
	Model() string
}

// QuestionCache (port)

// QuestionCache shares generated interview questions across runs. Keying is
// the implementation's concern and must derive from candidate content, not
// run-scoped ids, so a re-upload hits the cache. Get returns (nil, nil) on
// miss. Implementations must be safe for concurrent use.
type QuestionCache interface {
	Get(ctx Context, sc ScoredCandidate) ([]string, error)
	Set(ctx Context, sc ScoredCandidate, questions []string) error
}

// RunArchive (port)

// RunArchive persists finished runs for operational inspection. Archiving is
// best-effort: errors are logged by the caller, never pipeline-fatal.
type RunArchive interface {
	Save(ctx Context, rec RunRecord) error
	ListRecent(ctx Context, limit int) ([]RunRecord, error)
}

// EventPublisher (port)

// RunEvent is a lifecycle notification emitted at run boundaries.
type RunEvent struct {
	Type            string `json:"type"`
	RunID           string `json:"run_id"`
	CandidatesTotal int    `json:"candidates_total"`
	Model           string `json:"model"`
	Error           string `json:"error,omitempty"`
}

// Run event types.
const (
	EventRunStarted   = "run.started"
	EventRunCompleted = "run.completed"
	EventRunFailed    = "run.failed"
)

// EventPublisher emits run lifecycle events to an external bus. Best-effort,
// same as RunArchive.
type EventPublisher interface {
	Publish(ctx Context, ev RunEvent) error
}
