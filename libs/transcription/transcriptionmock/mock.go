// Package transcriptionmock provides a mock transcription.Provider for tests.
package transcriptionmock

import (
	"context"
	"testing"

	"github.com/meetbrief/backend/libs/testhelpers/mock"
	"github.com/meetbrief/backend/libs/transcription"
)

// Provider is a mock transcription.Provider driven by expectations.
type Provider struct {
	*mock.Expector
}

var _ transcription.Provider = &Provider{}

// New returns a mock provider bound to the test.
func New(t *testing.T) *Provider {
	return &Provider{&mock.Expector{T: t}}
}

func (p *Provider) SubmitJob(ctx context.Context, req *transcription.JobRequest) (*transcription.Job, error) {
	rets := p.Record(req)
	if len(rets) == 0 {
		return nil, nil
	}
	job, _ := rets[0].(*transcription.Job)
	return job, mock.SafeError(rets[1])
}

func (p *Provider) JobStatus(ctx context.Context, name string) (*transcription.Job, error) {
	rets := p.Record(name)
	if len(rets) == 0 {
		return nil, nil
	}
	job, _ := rets[0].(*transcription.Job)
	return job, mock.SafeError(rets[1])
}
