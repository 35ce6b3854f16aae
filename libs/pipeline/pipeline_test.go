package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/meetbrief/backend/libs/clock"
	"github.com/meetbrief/backend/libs/errors"
	"github.com/meetbrief/backend/libs/storage"
	"github.com/meetbrief/backend/libs/test"
	"github.com/meetbrief/backend/libs/testhelpers/mock"
	"github.com/meetbrief/backend/libs/transcription"
	"github.com/meetbrief/backend/libs/transcription/transcriptionmock"
)

type fakeExtractor struct {
	calls int
	err   error
}

func (f *fakeExtractor) Extract(ctx context.Context, videoPath string, sampleRateHz int) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	wavPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".wav"
	if err := os.WriteFile(wavPath, []byte("RIFF fake wav"), 0600); err != nil {
		return "", err
	}
	return wavPath, nil
}

const outputDoc = `{"results":{"transcripts":[{"transcript":"Hello world. This is a test."}]}}`

var testRef = MediaRef{Bucket: "media", Key: "video/team-sync.mp4"}

func testPipeline(t *testing.T, store storage.Store, provider transcription.Provider, ext *fakeExtractor, clk clock.Clock, cfg Config) *Pipeline {
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = t.TempDir()
	}
	return New(store, provider, ext, clk, cfg, nil)
}

// On a cache hit nothing downstream may run: no extraction, no job, no writes.
func TestTranscribeCacheHit(t *testing.T) {
	store := storage.NewTestStore()
	store.Seed("media", "transcription/team-sync.txt", []byte("Hello world. This is a test."))
	provider := transcriptionmock.New(t) // no expectations, any call fails the test
	defer provider.Finish()
	ext := &fakeExtractor{}

	p := testPipeline(t, store, provider, ext, clock.New(), Config{})
	res, err := p.Transcribe(context.Background(), testRef, nil)
	test.OK(t, err)
	test.Equals(t, true, res.CacheHit)
	test.Equals(t, "Hello world. This is a test.", res.Transcript)
	test.Equals(t, []string{"Hello world", "This is a test."}, res.Segments)
	test.Equals(t, 0, ext.calls)
	test.Equals(t, 0, store.PutCount())
}

func TestTranscribeMissThenHit(t *testing.T) {
	store := storage.NewTestStore()
	store.Seed("media", "video/team-sync.mp4", []byte("fake video bytes"))
	clk := clock.NewManaged(time.Unix(1700000000, 0))
	provider := transcriptionmock.New(t)
	defer provider.Finish()
	ext := &fakeExtractor{}

	const jobName = "transcribe-team-sync-1700000000"
	provider.Expect(mock.NewExpectation(provider.SubmitJob, &transcription.JobRequest{
		Name:         jobName,
		MediaURI:     "s3://media/audio/team-sync.wav",
		MediaFormat:  "wav",
		LanguageCode: "en-US",
		SampleRateHz: 16000,
		OutputBucket: "media",
		OutputKey:    "transcription/" + jobName + ".json",
	}).WithReturns(&transcription.Job{Name: jobName, Status: transcription.StatusSubmitted}, nil))
	provider.Expect(mock.NewExpectation(provider.JobStatus, jobName).WithReturns(
		&transcription.Job{Name: jobName, Status: transcription.StatusRunning}, nil))
	provider.Expect(mock.NewExpectation(provider.JobStatus, jobName).WithReturns(
		&transcription.Job{Name: jobName, Status: transcription.StatusCompleted, OutputKey: "transcription/" + jobName + ".json"}, nil))

	// The provider writes its output document once the job completes.
	store.Seed("media", "transcription/"+jobName+".json", []byte(outputDoc))

	scratchRoot := t.TempDir()
	p := testPipeline(t, store, provider, ext, clk, Config{ScratchDir: scratchRoot})

	res, err := p.Transcribe(context.Background(), testRef, nil)
	test.OK(t, err)
	test.Equals(t, false, res.CacheHit)
	test.Equals(t, "Hello world. This is a test.", res.Transcript)
	test.Equals(t, []string{"Hello world", "This is a test."}, res.Segments)
	test.Equals(t, 1, ext.calls)

	audio, ok := store.Object("media", "audio/team-sync.wav")
	test.Assert(t, ok, "expected extracted audio to be uploaded")
	test.Equals(t, "RIFF fake wav", string(audio))
	transcript, ok := store.Object("media", "transcription/team-sync.txt")
	test.Assert(t, ok, "expected transcript to be cached")
	test.Equals(t, "Hello world. This is a test.", string(transcript))

	// Scratch dir for the call is gone.
	entries, err := os.ReadDir(scratchRoot)
	test.OK(t, err)
	test.Equals(t, 0, len(entries))

	// Second call resolves from the cache with no further provider calls.
	res, err = p.Transcribe(context.Background(), testRef, nil)
	test.OK(t, err)
	test.Equals(t, true, res.CacheHit)
	test.Equals(t, "Hello world. This is a test.", res.Transcript)
}

// A failed job is fatal for the call and the transcript key is never written.
func TestTranscribeJobFailed(t *testing.T) {
	store := storage.NewTestStore()
	store.Seed("media", "video/team-sync.mp4", []byte("fake video bytes"))
	clk := clock.NewManaged(time.Unix(1700000000, 0))
	provider := transcriptionmock.New(t)
	defer provider.Finish()
	ext := &fakeExtractor{}

	const jobName = "transcribe-team-sync-1700000000"
	provider.Expect(mock.NewExpectation(provider.SubmitJob, &transcription.JobRequest{
		Name:         jobName,
		MediaURI:     "s3://media/audio/team-sync.wav",
		MediaFormat:  "wav",
		LanguageCode: "en-US",
		SampleRateHz: 16000,
		OutputBucket: "media",
		OutputKey:    "transcription/" + jobName + ".json",
	}).WithReturns(&transcription.Job{Name: jobName, Status: transcription.StatusSubmitted}, nil))
	provider.Expect(mock.NewExpectation(provider.JobStatus, jobName).WithReturns(
		&transcription.Job{Name: jobName, Status: transcription.StatusFailed, FailureReason: "unsupported codec"}, nil))

	scratchRoot := t.TempDir()
	p := testPipeline(t, store, provider, ext, clk, Config{ScratchDir: scratchRoot})

	_, err := p.Transcribe(context.Background(), testRef, nil)
	var perr *PipelineError
	test.Assert(t, errors.As(err, &perr), "expected PipelineError got %+v", err)
	test.Equals(t, StageTranscribe, perr.Stage)
	var jerr *transcription.JobError
	test.Assert(t, errors.As(err, &jerr), "expected JobError cause got %+v", err)
	test.Equals(t, "unsupported codec", jerr.Reason)

	_, ok := store.Object("media", "transcription/team-sync.txt")
	test.Assert(t, !ok, "transcript key must not be written on failure")

	// Scratch resources are released on failure too.
	entries, err := os.ReadDir(scratchRoot)
	test.OK(t, err)
	test.Equals(t, 0, len(entries))
}

func TestTranscribePollTimeout(t *testing.T) {
	store := storage.NewTestStore()
	store.Seed("media", "video/team-sync.mp4", []byte("fake video bytes"))
	clk := clock.NewManaged(time.Unix(1700000000, 0))
	provider := transcriptionmock.New(t)
	defer provider.Finish()
	ext := &fakeExtractor{}

	const jobName = "transcribe-team-sync-1700000000"
	provider.Expect(mock.NewExpectation(provider.SubmitJob, &transcription.JobRequest{
		Name:         jobName,
		MediaURI:     "s3://media/audio/team-sync.wav",
		MediaFormat:  "wav",
		LanguageCode: "en-US",
		SampleRateHz: 16000,
		OutputBucket: "media",
		OutputKey:    "transcription/" + jobName + ".json",
	}).WithReturns(&transcription.Job{Name: jobName, Status: transcription.StatusSubmitted}, nil))
	// Polls at t+0s, t+10s, t+20s, and t+30s; the deadline passes after the
	// fourth check.
	for i := 0; i < 4; i++ {
		provider.Expect(mock.NewExpectation(provider.JobStatus, jobName).WithReturns(
			&transcription.Job{Name: jobName, Status: transcription.StatusRunning}, nil))
	}

	p := testPipeline(t, store, provider, ext, clk, Config{
		PollInterval: 10 * time.Second,
		PollTimeout:  25 * time.Second,
	})

	_, err := p.Transcribe(context.Background(), testRef, nil)
	var perr *PipelineError
	test.Assert(t, errors.As(err, &perr), "expected PipelineError got %+v", err)
	test.Equals(t, StageTranscribe, perr.Stage)
	test.Assert(t, errors.Is(err, ErrPollTimeout), "expected ErrPollTimeout cause got %+v", err)
}

func TestTranscribeCanceledBetweenPolls(t *testing.T) {
	store := storage.NewTestStore()
	store.Seed("media", "video/team-sync.mp4", []byte("fake video bytes"))
	clk := clock.NewManaged(time.Unix(1700000000, 0))
	provider := transcriptionmock.New(t)
	defer provider.Finish()
	ext := &fakeExtractor{}

	const jobName = "transcribe-team-sync-1700000000"
	provider.Expect(mock.NewExpectation(provider.SubmitJob, &transcription.JobRequest{
		Name:         jobName,
		MediaURI:     "s3://media/audio/team-sync.wav",
		MediaFormat:  "wav",
		LanguageCode: "en-US",
		SampleRateHz: 16000,
		OutputBucket: "media",
		OutputKey:    "transcription/" + jobName + ".json",
	}).WithReturns(&transcription.Job{Name: jobName, Status: transcription.StatusSubmitted}, nil))
	provider.Expect(mock.NewExpectation(provider.JobStatus, jobName).WithReturns(
		&transcription.Job{Name: jobName, Status: transcription.StatusRunning}, nil))

	p := testPipeline(t, store, provider, ext, clk, Config{PollInterval: 10 * time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Transcribe(ctx, testRef, nil)
	var perr *PipelineError
	test.Assert(t, errors.As(err, &perr), "expected PipelineError got %+v", err)
	test.Equals(t, StageTranscribe, perr.Stage)
	test.Assert(t, errors.Is(err, context.Canceled), "expected context.Canceled cause got %+v", err)
}

func TestTranscribeCacheLookupError(t *testing.T) {
	store := storage.NewTestStore()
	store.Fail("exists", "media", "transcription/team-sync.txt", errors.New("AccessDenied"))
	provider := transcriptionmock.New(t)
	defer provider.Finish()

	p := testPipeline(t, store, provider, &fakeExtractor{}, clock.New(), Config{})
	_, err := p.Transcribe(context.Background(), testRef, nil)
	var perr *PipelineError
	test.Assert(t, errors.As(err, &perr), "expected PipelineError got %+v", err)
	test.Equals(t, StageCache, perr.Stage)
}

func TestTranscribeExtractionFailure(t *testing.T) {
	store := storage.NewTestStore()
	store.Seed("media", "video/team-sync.mp4", []byte("fake video bytes"))
	provider := transcriptionmock.New(t)
	defer provider.Finish()
	ext := &fakeExtractor{err: errors.New("exit status 1")}

	p := testPipeline(t, store, provider, ext, clock.New(), Config{})
	_, err := p.Transcribe(context.Background(), testRef, nil)
	var perr *PipelineError
	test.Assert(t, errors.As(err, &perr), "expected PipelineError got %+v", err)
	test.Equals(t, StageExtract, perr.Stage)
}

func TestTranscribeOptionOverrides(t *testing.T) {
	store := storage.NewTestStore()
	store.Seed("media", "video/team-sync.mp4", []byte("fake video bytes"))
	clk := clock.NewManaged(time.Unix(1700000000, 0))
	provider := transcriptionmock.New(t)
	defer provider.Finish()
	ext := &fakeExtractor{}

	const jobName = "transcribe-team-sync-1700000000"
	provider.Expect(mock.NewExpectation(provider.SubmitJob, &transcription.JobRequest{
		Name:         jobName,
		MediaURI:     "s3://media/audio/team-sync.wav",
		MediaFormat:  "wav",
		LanguageCode: "fr-FR",
		SampleRateHz: 8000,
		OutputBucket: "media",
		OutputKey:    "transcription/" + jobName + ".json",
	}).WithReturns(&transcription.Job{Name: jobName, Status: transcription.StatusSubmitted}, nil))
	provider.Expect(mock.NewExpectation(provider.JobStatus, jobName).WithReturns(
		&transcription.Job{Name: jobName, Status: transcription.StatusCompleted}, nil))
	store.Seed("media", "transcription/"+jobName+".json", []byte(outputDoc))

	p := testPipeline(t, store, provider, ext, clk, Config{})
	res, err := p.Transcribe(context.Background(), testRef, &Options{LanguageCode: "fr-FR", SampleRateHz: 8000})
	test.OK(t, err)
	test.Equals(t, false, res.CacheHit)
}
