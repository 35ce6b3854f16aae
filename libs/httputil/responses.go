// Package httputil provides helpers for JSON HTTP services.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/meetbrief/backend/libs/golog"
)

// JSONResponse writes res as a JSON body with the provided status code.
func JSONResponse(w http.ResponseWriter, statusCode int, res interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		golog.Errorf("httputil: failed to encode response: %s", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// JSONError writes a JSON error body with the provided status code.
func JSONError(w http.ResponseWriter, statusCode int, msg string) {
	JSONResponse(w, statusCode, &errorBody{Error: msg})
}

// JSONStageError writes a JSON error body naming the pipeline stage that failed.
func JSONStageError(w http.ResponseWriter, statusCode int, msg, stage string) {
	JSONResponse(w, statusCode, &errorBody{Error: msg, Stage: stage})
}

// DecodeRequestJSON decodes the request body into v, rejecting unknown fields.
func DecodeRequestJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
