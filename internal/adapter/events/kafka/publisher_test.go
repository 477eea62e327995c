package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "candidate-run-events")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no seed brokers")

	_, err = New([]string{"localhost:19092"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic cannot be empty")
}

func TestBuildRecord(t *testing.T) {
	ev := domain.RunEvent{
		Type:            domain.EventRunCompleted,
		RunID:           "run-1",
		CandidatesTotal: 12,
		Model:           "openai/gpt-4o-mini",
	}

	rec, err := buildRecord("candidate-run-events", ev)
	require.NoError(t, err)

	assert.Equal(t, "candidate-run-events", rec.Topic)
	assert.Equal(t, []byte("run-1"), rec.Key)

	var got domain.RunEvent
	require.NoError(t, json.Unmarshal(rec.Value, &got))
	assert.Equal(t, ev, got)

	require.Len(t, rec.Headers, 2)
	assert.Equal(t, "event_type", rec.Headers[0].Key)
	assert.Equal(t, []byte(domain.EventRunCompleted), rec.Headers[0].Value)
	assert.Equal(t, "run_id", rec.Headers[1].Key)
}

func TestBuildRecord_FailedRunCarriesError(t *testing.T) {
	ev := domain.RunEvent{
		Type:  domain.EventRunFailed,
		RunID: "run-2",
		Error: "csv parse: record on line 3: wrong number of fields",
	}

	rec, err := buildRecord("candidate-run-events", ev)
	require.NoError(t, err)
	assert.Contains(t, string(rec.Value), "wrong number of fields")
}

func TestCreateTopicValidation(t *testing.T) {
	ctx := context.Background()

	err := createTopicIfNotExists(ctx, nil, "", 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic name cannot be empty")

	err = createTopicIfNotExists(ctx, nil, "events", 0, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "partitions")

	err = createTopicIfNotExists(ctx, nil, "events", 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replication factor")
}
