// Package handlers exposes the transcription pipeline over HTTP.
package handlers

import (
	"context"
	"net/http"

	"github.com/meetbrief/backend/libs/errors"
	"github.com/meetbrief/backend/libs/golog"
	"github.com/meetbrief/backend/libs/httputil"
	"github.com/meetbrief/backend/libs/pipeline"
)

// Orchestrator is the part of the pipeline the handler needs.
type Orchestrator interface {
	Transcribe(ctx context.Context, ref pipeline.MediaRef, opts *pipeline.Options) (*pipeline.Result, error)
}

type transcribeRequest struct {
	MediaURI     string `json:"media_uri"`
	LanguageCode string `json:"language_code,omitempty"`
	SampleRateHz int    `json:"sample_rate_hz,omitempty"`
}

type transcribeResponse struct {
	Transcript string   `json:"transcript"`
	Segments   []string `json:"segments"`
	Cached     bool     `json:"cached"`
}

type transcribeHandler struct {
	orch Orchestrator
}

// NewTranscribe returns the handler for POST /transcribe.
func NewTranscribe(orch Orchestrator) http.Handler {
	return &transcribeHandler{orch: orch}
}

func (h *transcribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.JSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req transcribeRequest
	if err := httputil.DecodeRequestJSON(r, &req); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	ref, err := pipeline.ParseRef(req.MediaURI)
	if err != nil {
		httputil.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.orch.Transcribe(r.Context(), ref, &pipeline.Options{
		LanguageCode: req.LanguageCode,
		SampleRateHz: req.SampleRateHz,
	})
	if err != nil {
		golog.Errorf("handlers: transcribe %s: %s", req.MediaURI, err)
		var perr *pipeline.PipelineError
		if errors.As(err, &perr) {
			status := http.StatusBadGateway
			if errors.Is(err, pipeline.ErrPollTimeout) {
				status = http.StatusGatewayTimeout
			}
			httputil.JSONStageError(w, status, "transcription failed", perr.Stage)
			return
		}
		httputil.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.JSONResponse(w, http.StatusOK, &transcribeResponse{
		Transcript: res.Transcript,
		Segments:   res.Segments,
		Cached:     res.CacheHit,
	})
}
