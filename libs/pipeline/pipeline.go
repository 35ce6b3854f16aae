package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/samuel/go-metrics/metrics"

	"github.com/meetbrief/backend/libs/audioutil"
	"github.com/meetbrief/backend/libs/clock"
	"github.com/meetbrief/backend/libs/errors"
	"github.com/meetbrief/backend/libs/golog"
	"github.com/meetbrief/backend/libs/storage"
	"github.com/meetbrief/backend/libs/transcription"
)

// Stage names, in pipeline order.
const (
	StageCache      = "cache"
	StageDownload   = "download"
	StageExtract    = "extract"
	StageUpload     = "upload"
	StageSubmit     = "submit"
	StageTranscribe = "transcribe"
	StageFetch      = "fetch"
	StageStore      = "store"
)

// ErrPollTimeout is the cause of a transcribe stage failure when the job does
// not reach a terminal status within the configured deadline.
var ErrPollTimeout = errors.New("pipeline: timed out waiting for transcription job")

// PipelineError tags a failure with the stage that produced it. Stages after
// the cache check are never retried here; retry policy belongs to the caller.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline: stage %s: %s", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Options override the configured defaults for a single call. A nil Options
// or a zero field selects the default.
type Options struct {
	SampleRateHz int
	LanguageCode string
}

// Result is the outcome of a successful Transcribe call.
type Result struct {
	Transcript string
	Segments   []string
	CacheHit   bool
}

// Config holds the orchestration knobs. Zero values select the defaults.
type Config struct {
	// PollInterval is the sleep between job status checks. Default 10s.
	PollInterval time.Duration
	// PollTimeout bounds the total wait for a job to become terminal.
	// Default 30m. Negative disables the deadline.
	PollTimeout time.Duration
	// ScratchDir is where per-call scratch directories are created.
	// Default os.TempDir().
	ScratchDir string
	// SampleRateHz for extracted audio. Default 16000.
	SampleRateHz int
	// LanguageCode for submitted jobs. Default "en-US".
	LanguageCode string
}

const (
	defaultPollInterval = 10 * time.Second
	defaultPollTimeout  = 30 * time.Minute
	defaultSampleRateHz = 16000
	defaultLanguage     = "en-US"
)

// Pipeline drives a video reference to a cached transcript. It holds no
// per-call state and is safe for concurrent use; two concurrent calls for the
// same reference that both miss will both run the full pipeline and both
// write the transcript key. That race wastes a transcription, it does not
// corrupt anything.
type Pipeline struct {
	store     storage.Store
	cache     *Cache
	provider  transcription.Provider
	extractor audioutil.Extractor
	clk       clock.Clock
	cfg       Config

	statCacheHit  *metrics.Counter
	statCacheMiss *metrics.Counter
	statFailed    *metrics.Counter
}

// New returns a Pipeline over the provided collaborators.
func New(store storage.Store, provider transcription.Provider, extractor audioutil.Extractor, clk clock.Clock, cfg Config, metricsRegistry metrics.Registry) *Pipeline {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}
	if cfg.SampleRateHz <= 0 {
		cfg.SampleRateHz = defaultSampleRateHz
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = defaultLanguage
	}
	p := &Pipeline{
		store:         store,
		cache:         NewCache(store),
		provider:      provider,
		extractor:     extractor,
		clk:           clk,
		cfg:           cfg,
		statCacheHit:  metrics.NewCounter(),
		statCacheMiss: metrics.NewCounter(),
		statFailed:    metrics.NewCounter(),
	}
	if metricsRegistry != nil {
		metricsRegistry.Add("cache.hit", p.statCacheHit)
		metricsRegistry.Add("cache.miss", p.statCacheMiss)
		metricsRegistry.Add("failed", p.statFailed)
	}
	return p
}

// Transcribe returns the transcript for ref, reusing a previously computed
// result when one exists. On a miss it runs download → extract → upload →
// submit → poll → fetch → store, in that order, each stage's side effects
// durable before the next begins.
func (p *Pipeline) Transcribe(ctx context.Context, ref MediaRef, opts *Options) (*Result, error) {
	sampleRateHz := p.cfg.SampleRateHz
	languageCode := p.cfg.LanguageCode
	if opts != nil {
		if opts.SampleRateHz > 0 {
			sampleRateHz = opts.SampleRateHz
		}
		if opts.LanguageCode != "" {
			languageCode = opts.LanguageCode
		}
	}

	text, hit, err := p.cache.Lookup(ctx, ref)
	if err != nil {
		return nil, p.failf(StageCache, err)
	}
	if hit {
		p.statCacheHit.Inc(1)
		golog.Debugf("pipeline: cache hit for %s", ref.URI())
		return &Result{Transcript: text, Segments: transcription.Segments(text), CacheHit: true}, nil
	}
	p.statCacheMiss.Inc(1)

	scratch := filepath.Join(p.cfg.ScratchDir, "transcribe-"+uuid.New().String())
	if err := os.MkdirAll(scratch, 0700); err != nil {
		return nil, p.failf(StageDownload, err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			golog.Warningf("pipeline: failed to remove scratch dir %s: %s", scratch, err)
		}
	}()

	videoPath := filepath.Join(scratch, path.Base(ref.Key))
	if err := p.store.Download(ctx, ref.Bucket, ref.Key, videoPath); err != nil {
		return nil, p.failf(StageDownload, err)
	}

	wavPath, err := p.extractor.Extract(ctx, videoPath, sampleRateHz)
	if err != nil {
		return nil, p.failf(StageExtract, err)
	}

	baseName := ref.BaseName()
	audioKey := AudioKey(baseName)
	wavData, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, p.failf(StageUpload, err)
	}
	if err := p.store.Put(ctx, ref.Bucket, audioKey, wavData, "audio/wav"); err != nil {
		return nil, p.failf(StageUpload, err)
	}

	jobName := JobName(baseName, p.clk.Now())
	outputKey := JobOutputKey(jobName)
	job, err := p.provider.SubmitJob(ctx, &transcription.JobRequest{
		Name:         jobName,
		MediaURI:     storage.URI(ref.Bucket, audioKey),
		MediaFormat:  "wav",
		LanguageCode: languageCode,
		SampleRateHz: sampleRateHz,
		OutputBucket: ref.Bucket,
		OutputKey:    outputKey,
	})
	if err != nil {
		return nil, p.failf(StageSubmit, err)
	}
	golog.Infof("pipeline: submitted transcription job %s for %s", job.Name, ref.URI())

	job, err = p.waitForJob(ctx, jobName)
	if err != nil {
		return nil, p.failf(StageTranscribe, err)
	}
	if job.OutputKey != "" {
		outputKey = job.OutputKey
	}

	output, err := p.store.Get(ctx, ref.Bucket, outputKey)
	if err != nil {
		return nil, p.failf(StageFetch, err)
	}
	text, err = transcription.TranscriptFromOutput(output)
	if err != nil {
		return nil, p.failf(StageFetch, err)
	}

	if err := p.cache.Store(ctx, ref, text); err != nil {
		return nil, p.failf(StageStore, err)
	}
	golog.Infof("pipeline: transcribed %s (%d bytes)", ref.URI(), len(text))
	return &Result{Transcript: text, Segments: transcription.Segments(text), CacheHit: false}, nil
}

// waitForJob polls the provider until the job is terminal, the deadline
// passes, or ctx is canceled. Polling only observes; the sleep between checks
// is the pipeline's sole suspension point.
func (p *Pipeline) waitForJob(ctx context.Context, name string) (*transcription.Job, error) {
	var deadline time.Time
	if p.cfg.PollTimeout > 0 {
		deadline = p.clk.Now().Add(p.cfg.PollTimeout)
	}
	for {
		job, err := p.provider.JobStatus(ctx, name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if job.Status.Terminal() {
			if job.Status == transcription.StatusFailed {
				return nil, errors.Trace(&transcription.JobError{Name: name, Reason: job.FailureReason})
			}
			return job, nil
		}
		if !deadline.IsZero() && !p.clk.Now().Before(deadline) {
			return nil, errors.Wrapf(ErrPollTimeout, "job %s not terminal after %s", name, p.cfg.PollTimeout)
		}
		select {
		case <-ctx.Done():
			return nil, errors.Trace(ctx.Err())
		case <-p.clk.After(p.cfg.PollInterval):
			// A managed clock fires immediately; don't let a canceled
			// context lose that race.
			if err := ctx.Err(); err != nil {
				return nil, errors.Trace(err)
			}
		}
	}
}

func (p *Pipeline) failf(stage string, err error) error {
	p.statFailed.Inc(1)
	return &PipelineError{Stage: stage, Err: err}
}
