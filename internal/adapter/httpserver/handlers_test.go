package httpserver_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/adapter/ai/stub"
	httpserver "github.com/fairyhunter13/ai-candidate-ranker/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/config"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/evaluate"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/extract"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/retry"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/runstate"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/usecase"
)

const sampleCSV = `name,title,company,location,years_experience,base_salary,ote,open_to_remote,open_to_travel,enrichment
Alice Chen,Account Executive,Acme,"Austin, TX",6,120000,240000,yes,no,
Bob Singh,SDR,Beta Labs,Remote,2,,,true,false,
Cara Diaz,VP Sales,Gamma,"New York, NY",12,,,no,yes,
`

// newTestServer wires real usecases over the offline stub model and no
// optional backends, mirroring the production assembly.
func newTestServer(t *testing.T, archive domain.RunArchive) *httpserver.Server {
	t.Helper()
	cfg := config.Config{AppEnv: "test", MaxUploadMB: 4, BatchSize: 5, OutputDir: t.TempDir()}
	reg := runstate.NewRegistry()
	ai := stub.New()
	profile := config.DefaultProfile()
	evaluator := evaluate.New(ai, profile, 512)
	pipeline := usecase.NewPipelineService(reg,
		extract.NewSemantic(ai, retry.Immediate(1), profile, 512),
		evaluator, ai, archive, nil, cfg.BatchSize, cfg.OutputDir)
	results := usecase.NewResultService(reg, archive)
	questions := usecase.NewQuestionService(reg, evaluator, nil)
	return httpserver.NewServer(cfg, pipeline, results, questions, nil, nil, nil)
}

func multipartCSV(t *testing.T, field, filename, content string) (io.Reader, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func doUpload(t *testing.T, srv *httpserver.Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartCSV(t, "file", filename, content)
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.UploadHandler()(rec, r)
	return rec
}

func pollStatus(t *testing.T, srv *httpserver.Server, runID string) string {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/status?run_id="+runID, nil)
	rec := httptest.NewRecorder()
	srv.StatusHandler()(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

// waitComplete polls the status endpoint until the run reaches a terminal
// state, the same way a browser client would.
func waitComplete(t *testing.T, srv *httpserver.Server, runID string) string {
	t.Helper()
	var last string
	require.Eventually(t, func() bool {
		last = pollStatus(t, srv, runID)
		st := gjson.Get(last, "status").String()
		return st == string(domain.RunComplete) || st == string(domain.RunError)
	}, 10*time.Second, 25*time.Millisecond)
	return last
}

func TestUploadHandler_StartsRun(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doUpload(t, srv, "candidates.csv", sampleCSV)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Status     string `json:"status"`
		RunID      string `json:"run_id"`
		Candidates int    `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "started", resp.Status)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 3, resp.Candidates)

	final := waitComplete(t, srv, resp.RunID)
	assert.Equal(t, string(domain.RunComplete), gjson.Get(final, "status").String())
	assert.Equal(t, int64(100), gjson.Get(final, "progress").Int())
	assert.Equal(t, int64(3), gjson.Get(final, "candidates_scored").Int())
	assert.Len(t, gjson.Get(final, "scored_candidates").Array(), 3)
	assert.Len(t, gjson.Get(final, "algo_ranked").Array(), 3)
}

func TestUploadThenResults_FullFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doUpload(t, srv, "candidates.csv", sampleCSV)
	require.Equal(t, http.StatusAccepted, rec.Code)
	runID := gjson.GetBytes(rec.Body.Bytes(), "run_id").String()
	waitComplete(t, srv, runID)

	r := httptest.NewRequest(http.MethodGet, "/results", nil)
	res := httptest.NewRecorder()
	srv.ResultsHandler()(res, r)
	require.Equal(t, http.StatusOK, res.Code)

	body := res.Body.String()
	assert.Equal(t, string(domain.RunComplete), gjson.Get(body, "status").String())
	list := gjson.Get(body, "candidates").Array()
	require.Len(t, list, 3)
	// Ranked order: contiguous ranks starting at 1, scores non-increasing.
	for i, item := range list {
		assert.Equal(t, int64(i+1), item.Get("rank").Int())
		if i > 0 {
			assert.GreaterOrEqual(t, list[i-1].Get("final_score").Int(), item.Get("final_score").Int())
		}
		assert.NotEmpty(t, item.Get("tier").String())
		assert.NotEmpty(t, item.Get("bio_summary").String())
	}
}
