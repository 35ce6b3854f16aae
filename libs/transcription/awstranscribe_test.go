package transcription

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/transcribeservice"
	"github.com/aws/aws-sdk-go/service/transcribeservice/transcribeserviceiface"

	"github.com/meetbrief/backend/libs/ptr"
	"github.com/meetbrief/backend/libs/test"
)

type fakeTranscribeAPI struct {
	transcribeserviceiface.TranscribeServiceAPI
	startFn func(*transcribeservice.StartTranscriptionJobInput) (*transcribeservice.StartTranscriptionJobOutput, error)
	getFn   func(*transcribeservice.GetTranscriptionJobInput) (*transcribeservice.GetTranscriptionJobOutput, error)
}

func (f *fakeTranscribeAPI) StartTranscriptionJobWithContext(ctx aws.Context, in *transcribeservice.StartTranscriptionJobInput, opts ...request.Option) (*transcribeservice.StartTranscriptionJobOutput, error) {
	return f.startFn(in)
}

func (f *fakeTranscribeAPI) GetTranscriptionJobWithContext(ctx aws.Context, in *transcribeservice.GetTranscriptionJobInput, opts ...request.Option) (*transcribeservice.GetTranscriptionJobOutput, error) {
	return f.getFn(in)
}

func TestSubmitJob(t *testing.T) {
	var got *transcribeservice.StartTranscriptionJobInput
	api := &fakeTranscribeAPI{
		startFn: func(in *transcribeservice.StartTranscriptionJobInput) (*transcribeservice.StartTranscriptionJobOutput, error) {
			got = in
			return &transcribeservice.StartTranscriptionJobOutput{
				TranscriptionJob: &transcribeservice.TranscriptionJob{
					TranscriptionJobName:   in.TranscriptionJobName,
					TranscriptionJobStatus: ptr.String(transcribeservice.TranscriptionJobStatusQueued),
				},
			}, nil
		},
	}
	provider := NewAWSTranscribeWithAPI(api)
	job, err := provider.SubmitJob(context.Background(), &JobRequest{
		Name:         "transcribe-team-sync-1683000000",
		MediaURI:     "s3://media/audio/team-sync.wav",
		MediaFormat:  "wav",
		LanguageCode: "en-US",
		SampleRateHz: 16000,
		OutputBucket: "media",
		OutputKey:    "transcription/transcribe-team-sync-1683000000.json",
	})
	test.OK(t, err)
	test.Equals(t, "transcribe-team-sync-1683000000", job.Name)
	test.Equals(t, StatusSubmitted, job.Status)
	test.Equals(t, "transcription/transcribe-team-sync-1683000000.json", job.OutputKey)

	test.Equals(t, "s3://media/audio/team-sync.wav", *got.Media.MediaFileUri)
	test.Equals(t, "wav", *got.MediaFormat)
	test.Equals(t, "en-US", *got.LanguageCode)
	test.Equals(t, int64(16000), *got.MediaSampleRateHertz)
	test.Equals(t, "media", *got.OutputBucketName)
	test.Equals(t, "transcription/transcribe-team-sync-1683000000.json", *got.OutputKey)
}

func TestJobStatusMapping(t *testing.T) {
	cases := map[string]Status{
		transcribeservice.TranscriptionJobStatusQueued:     StatusSubmitted,
		transcribeservice.TranscriptionJobStatusInProgress: StatusRunning,
		transcribeservice.TranscriptionJobStatusCompleted:  StatusCompleted,
		transcribeservice.TranscriptionJobStatusFailed:     StatusFailed,
	}
	for awsStatus, want := range cases {
		awsStatus, want := awsStatus, want
		api := &fakeTranscribeAPI{
			getFn: func(in *transcribeservice.GetTranscriptionJobInput) (*transcribeservice.GetTranscriptionJobOutput, error) {
				return &transcribeservice.GetTranscriptionJobOutput{
					TranscriptionJob: &transcribeservice.TranscriptionJob{
						TranscriptionJobName:   in.TranscriptionJobName,
						TranscriptionJobStatus: ptr.String(awsStatus),
						FailureReason:          ptr.String("reason"),
					},
				}, nil
			},
		}
		provider := NewAWSTranscribeWithAPI(api)
		job, err := provider.JobStatus(context.Background(), "transcribe-demo-1")
		test.OK(t, err)
		test.Equals(t, want, job.Status)
		test.Equals(t, "reason", job.FailureReason)
	}
}

func TestStatusTerminal(t *testing.T) {
	test.Equals(t, false, StatusSubmitted.Terminal())
	test.Equals(t, false, StatusRunning.Terminal())
	test.Equals(t, true, StatusCompleted.Terminal())
	test.Equals(t, true, StatusFailed.Terminal())
}
