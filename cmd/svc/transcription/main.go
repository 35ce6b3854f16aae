package main

import (
	"flag"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/cors"

	"github.com/meetbrief/backend/boot"
	"github.com/meetbrief/backend/cmd/svc/transcription/internal/handlers"
	"github.com/meetbrief/backend/cmd/svc/transcription/internal/janitor"
	"github.com/meetbrief/backend/libs/audioutil"
	"github.com/meetbrief/backend/libs/clock"
	"github.com/meetbrief/backend/libs/golog"
	"github.com/meetbrief/backend/libs/httputil"
	"github.com/meetbrief/backend/libs/pipeline"
	"github.com/meetbrief/backend/libs/transcription"
	"github.com/meetbrief/backend/libs/worker"
)

var (
	flagHTTPListenAddr = flag.String("http_listen_addr", ":8080", "`host:port` to listen for http requests")
	flagStorageURL     = flag.String("storage_url", "", "URL of the media store (s3:// or file://`path`)")
	flagCORSOrigins    = flag.String("cors_origins", "", "Comma separated list of allowed CORS origins")

	// Pipeline
	flagFFmpegPath   = flag.String("ffmpeg_path", "ffmpeg", "`path` to the ffmpeg binary")
	flagSampleRate   = flag.Int("sample_rate", 16000, "Sample rate in `hz` for extracted audio")
	flagLanguageCode = flag.String("language_code", "en-US", "Language `code` for transcription jobs")
	flagPollInterval = flag.Duration("poll_interval", 10*time.Second, "Interval between transcription job status checks")
	flagPollTimeout  = flag.Duration("poll_timeout", 30*time.Minute, "Maximum time to wait for a transcription job")
	flagScratchDir   = flag.String("scratch_dir", "", "Directory for per-call scratch files (default system temp dir)")

	// Janitor
	flagScratchMaxAge        = flag.Duration("scratch_max_age", time.Hour, "Age after which abandoned scratch directories are removed")
	flagScratchSweepInterval = flag.Duration("scratch_sweep_interval", 15*time.Minute, "Interval between scratch directory sweeps")

	svcName = "transcription"
)

func main() {
	bootSvc := boot.NewService(svcName, nil)

	if *flagStorageURL == "" {
		golog.Fatalf("-storage_url flag required")
	}
	store, err := bootSvc.StoreFromURL(*flagStorageURL)
	if err != nil {
		golog.Fatalf("Failed to create store: %s", err)
	}

	awsSession, err := bootSvc.AWSSession()
	if err != nil {
		golog.Fatalf("Failed to create AWS session: %s", err)
	}
	provider := transcription.NewAWSTranscribe(awsSession)

	clk := clock.New()
	pipe := pipeline.New(store, provider, audioutil.NewFFmpeg(*flagFFmpegPath), clk, pipeline.Config{
		PollInterval: *flagPollInterval,
		PollTimeout:  *flagPollTimeout,
		ScratchDir:   *flagScratchDir,
		SampleRateHz: *flagSampleRate,
		LanguageCode: *flagLanguageCode,
	}, bootSvc.MetricsRegistry.Scope("pipeline"))

	workers := &worker.Collection{}
	workers.AddWorker(janitor.New(scratchRoot(), *flagScratchMaxAge, *flagScratchSweepInterval, clk))
	workers.Start()

	mux := http.NewServeMux()
	mux.Handle("/transcribe", handlers.NewTranscribe(pipe))

	var h http.Handler = mux
	if *flagCORSOrigins != "" {
		h = cors.New(cors.Options{
			AllowedOrigins: strings.Split(*flagCORSOrigins, ","),
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}).Handler(h)
	}
	h = httputil.LoggingHandler(h, svcName)
	go serve(h)

	boot.WaitForTermination()
	workers.Stop(time.Second * 5)
}

func scratchRoot() string {
	if *flagScratchDir != "" {
		return *flagScratchDir
	}
	return os.TempDir()
}

func serve(handler http.Handler) {
	listener, err := net.Listen("tcp", *flagHTTPListenAddr)
	if err != nil {
		golog.Fatalf(err.Error())
	}
	s := &http.Server{
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	golog.Infof("Starting listener on %s...", *flagHTTPListenAddr)
	golog.Fatalf(s.Serve(listener).Error())
}
