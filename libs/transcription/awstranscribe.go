package transcription

import (
	"context"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/transcribeservice"
	"github.com/aws/aws-sdk-go/service/transcribeservice/transcribeserviceiface"

	"github.com/meetbrief/backend/libs/errors"
	"github.com/meetbrief/backend/libs/ptr"
)

// AWSTranscribe is a Provider backed by the Amazon Transcribe service.
type AWSTranscribe struct {
	api transcribeserviceiface.TranscribeServiceAPI
}

// NewAWSTranscribe returns a Provider using Amazon Transcribe.
func NewAWSTranscribe(awsSession *session.Session) *AWSTranscribe {
	return &AWSTranscribe{api: transcribeservice.New(awsSession)}
}

// NewAWSTranscribeWithAPI returns a Provider on an existing API client.
func NewAWSTranscribeWithAPI(api transcribeserviceiface.TranscribeServiceAPI) *AWSTranscribe {
	return &AWSTranscribe{api: api}
}

func (t *AWSTranscribe) SubmitJob(ctx context.Context, req *JobRequest) (*Job, error) {
	in := &transcribeservice.StartTranscriptionJobInput{
		TranscriptionJobName: ptr.String(req.Name),
		Media: &transcribeservice.Media{
			MediaFileUri: ptr.String(req.MediaURI),
		},
		MediaFormat:      ptr.String(req.MediaFormat),
		LanguageCode:     ptr.String(req.LanguageCode),
		OutputBucketName: ptr.String(req.OutputBucket),
		OutputKey:        ptr.String(req.OutputKey),
	}
	if req.SampleRateHz != 0 {
		in.MediaSampleRateHertz = ptr.Int64(int64(req.SampleRateHz))
	}
	out, err := t.api.StartTranscriptionJobWithContext(ctx, in)
	if err != nil {
		return nil, errors.Wrapf(err, "transcription: submit job %s", req.Name)
	}
	job := jobFromAWS(out.TranscriptionJob)
	job.OutputKey = req.OutputKey
	return job, nil
}

func (t *AWSTranscribe) JobStatus(ctx context.Context, name string) (*Job, error) {
	out, err := t.api.GetTranscriptionJobWithContext(ctx, &transcribeservice.GetTranscriptionJobInput{
		TranscriptionJobName: ptr.String(name),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "transcription: status of job %s", name)
	}
	return jobFromAWS(out.TranscriptionJob), nil
}

func jobFromAWS(j *transcribeservice.TranscriptionJob) *Job {
	if j == nil {
		return &Job{Status: StatusSubmitted}
	}
	job := &Job{
		Name:          ptr.StringValue(j.TranscriptionJobName),
		FailureReason: ptr.StringValue(j.FailureReason),
	}
	switch ptr.StringValue(j.TranscriptionJobStatus) {
	case transcribeservice.TranscriptionJobStatusQueued:
		job.Status = StatusSubmitted
	case transcribeservice.TranscriptionJobStatusInProgress:
		job.Status = StatusRunning
	case transcribeservice.TranscriptionJobStatusCompleted:
		job.Status = StatusCompleted
	case transcribeservice.TranscriptionJobStatusFailed:
		job.Status = StatusFailed
	default:
		job.Status = StatusSubmitted
	}
	return job
}
