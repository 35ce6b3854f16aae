package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meetbrief/backend/libs/errors"
	"github.com/meetbrief/backend/libs/pipeline"
	"github.com/meetbrief/backend/libs/test"
)

type fakeOrchestrator struct {
	res *pipeline.Result
	err error

	gotRef  pipeline.MediaRef
	gotOpts *pipeline.Options
	calls   int
}

func (f *fakeOrchestrator) Transcribe(ctx context.Context, ref pipeline.MediaRef, opts *pipeline.Options) (*pipeline.Result, error) {
	f.calls++
	f.gotRef = ref
	f.gotOpts = opts
	return f.res, f.err
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestTranscribeHandler(t *testing.T) {
	orch := &fakeOrchestrator{res: &pipeline.Result{
		Transcript: "Hello world. This is a test.",
		Segments:   []string{"Hello world", "This is a test."},
		CacheHit:   true,
	}}
	h := NewTranscribe(orch)

	w := post(h, `{"media_uri": "s3://media/video/team-sync.mp4"}`)
	test.Equals(t, http.StatusOK, w.Code)
	test.Equals(t, pipeline.MediaRef{Bucket: "media", Key: "video/team-sync.mp4"}, orch.gotRef)

	var res transcribeResponse
	test.OK(t, json.Unmarshal(w.Body.Bytes(), &res))
	test.Equals(t, "Hello world. This is a test.", res.Transcript)
	test.Equals(t, []string{"Hello world", "This is a test."}, res.Segments)
	test.Equals(t, true, res.Cached)
}

func TestTranscribeHandlerOptions(t *testing.T) {
	orch := &fakeOrchestrator{res: &pipeline.Result{}}
	h := NewTranscribe(orch)

	w := post(h, `{"media_uri": "s3://media/video/team-sync.mp4", "language_code": "fr-FR", "sample_rate_hz": 8000}`)
	test.Equals(t, http.StatusOK, w.Code)
	test.Equals(t, &pipeline.Options{LanguageCode: "fr-FR", SampleRateHz: 8000}, orch.gotOpts)
}

func TestTranscribeHandlerInvalidRef(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := NewTranscribe(orch)

	w := post(h, `{"media_uri": "ftp://media/video/team-sync.mp4"}`)
	test.Equals(t, http.StatusBadRequest, w.Code)
	test.Equals(t, 0, orch.calls)
}

func TestTranscribeHandlerMalformedBody(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := NewTranscribe(orch)

	w := post(h, `{"media_uri": `)
	test.Equals(t, http.StatusBadRequest, w.Code)
	test.Equals(t, 0, orch.calls)
}

func TestTranscribeHandlerMethodNotAllowed(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := NewTranscribe(orch)

	r := httptest.NewRequest(http.MethodGet, "/transcribe", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	test.Equals(t, http.StatusMethodNotAllowed, w.Code)
	test.Equals(t, 0, orch.calls)
}

func TestTranscribeHandlerPipelineFailure(t *testing.T) {
	orch := &fakeOrchestrator{err: &pipeline.PipelineError{
		Stage: pipeline.StageTranscribe,
		Err:   errors.New("job failed"),
	}}
	h := NewTranscribe(orch)

	w := post(h, `{"media_uri": "s3://media/video/team-sync.mp4"}`)
	test.Equals(t, http.StatusBadGateway, w.Code)

	var body struct {
		Error string `json:"error"`
		Stage string `json:"stage"`
	}
	test.OK(t, json.Unmarshal(w.Body.Bytes(), &body))
	test.Equals(t, pipeline.StageTranscribe, body.Stage)
}

func TestTranscribeHandlerTimeout(t *testing.T) {
	orch := &fakeOrchestrator{err: &pipeline.PipelineError{
		Stage: pipeline.StageTranscribe,
		Err:   pipeline.ErrPollTimeout,
	}}
	h := NewTranscribe(orch)

	w := post(h, `{"media_uri": "s3://media/video/team-sync.mp4"}`)
	test.Equals(t, http.StatusGatewayTimeout, w.Code)
}
