// Package transcription provides a client interface for asynchronous speech
// to text providers. Jobs are submitted with a reference to an audio object
// and polled until they reach a terminal status; the provider writes its
// output document to the object store.
package transcription

import (
	"context"
	"fmt"
)

// Status is the lifecycle state of a transcription job.
type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Terminal reports whether the job will make no further progress.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobRequest describes a transcription job to submit.
type JobRequest struct {
	Name         string
	MediaURI     string
	MediaFormat  string
	LanguageCode string
	SampleRateHz int
	// OutputBucket and OutputKey name where the provider writes its output document.
	OutputBucket string
	OutputKey    string
}

// Job is the observed state of a submitted job. It is a snapshot; only
// polling the provider updates it.
type Job struct {
	Name          string
	Status        Status
	OutputKey     string
	FailureReason string
}

// Provider submits jobs to an external transcription service and observes
// their status. JobStatus must not mutate remote state.
type Provider interface {
	SubmitJob(ctx context.Context, req *JobRequest) (*Job, error)
	JobStatus(ctx context.Context, name string) (*Job, error)
}

// JobError is returned when the provider reports a job as failed.
type JobError struct {
	Name   string
	Reason string
}

func (e *JobError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("transcription: job %s failed", e.Name)
	}
	return fmt.Sprintf("transcription: job %s failed: %s", e.Name, e.Reason)
}
