// transcribectl runs the transcription pipeline once for a single video
// reference and prints the transcript. Useful for backfilling the cache and
// for debugging provider issues without the service in the way.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aws/aws-sdk-go/aws/session"

	"github.com/meetbrief/backend/libs/audioutil"
	"github.com/meetbrief/backend/libs/awsutil"
	"github.com/meetbrief/backend/libs/clock"
	"github.com/meetbrief/backend/libs/golog"
	"github.com/meetbrief/backend/libs/pipeline"
	"github.com/meetbrief/backend/libs/storage"
	"github.com/meetbrief/backend/libs/transcription"
)

type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	*d = duration(v)
	return err
}

type config struct {
	AWSRegion    string   `toml:"aws_region"`
	AWSAccessKey string   `toml:"aws_access_key"`
	AWSSecretKey string   `toml:"aws_secret_key"`
	AWSToken     string   `toml:"aws_token"`
	StorageURL   string   `toml:"storage_url"`
	FFmpegPath   string   `toml:"ffmpeg_path"`
	SampleRateHz int      `toml:"sample_rate"`
	LanguageCode string   `toml:"language_code"`
	PollInterval duration `toml:"poll_interval"`
	PollTimeout  duration `toml:"poll_timeout"`
}

var (
	flagConfig   = flag.String("config", "", "`path` to TOML config file")
	flagMediaURI = flag.String("media", "", "s3 `uri` of the video to transcribe")
	flagSegments = flag.Bool("segments", false, "Print the transcript as numbered segments")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	if *flagDebug {
		golog.Default().SetLevel(golog.DEBUG)
	}
	if *flagMediaURI == "" {
		golog.Fatalf("-media flag required")
	}

	cfg := config{
		AWSRegion:    "us-east-1",
		FFmpegPath:   "ffmpeg",
		SampleRateHz: 16000,
		LanguageCode: "en-US",
	}
	if *flagConfig != "" {
		if _, err := toml.DecodeFile(*flagConfig, &cfg); err != nil {
			golog.Fatalf("Failed to parse config %s: %s", *flagConfig, err)
		}
	}

	ref, err := pipeline.ParseRef(*flagMediaURI)
	if err != nil {
		golog.Fatalf("%s", err)
	}

	awsConfig, err := awsutil.Config(cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.AWSToken)
	if err != nil {
		golog.Fatalf("Failed to configure AWS: %s", err)
	}
	awsSession := session.New(awsConfig)

	store, err := storeFromURL(cfg.StorageURL, awsSession)
	if err != nil {
		golog.Fatalf("Failed to create store: %s", err)
	}

	pipe := pipeline.New(store, transcription.NewAWSTranscribe(awsSession), audioutil.NewFFmpeg(cfg.FFmpegPath), clock.New(), pipeline.Config{
		PollInterval: time.Duration(cfg.PollInterval),
		PollTimeout:  time.Duration(cfg.PollTimeout),
		SampleRateHz: cfg.SampleRateHz,
		LanguageCode: cfg.LanguageCode,
	}, nil)

	res, err := pipe.Transcribe(context.Background(), ref, nil)
	if err != nil {
		golog.Fatalf("Transcription failed: %s", err)
	}
	if res.CacheHit {
		golog.Infof("Transcript served from cache")
	}
	if *flagSegments {
		for i, s := range res.Segments {
			fmt.Fprintf(os.Stdout, "%3d  %s\n", i+1, s)
		}
	} else {
		fmt.Fprintln(os.Stdout, res.Transcript)
	}
}

func storeFromURL(u string, awsSession *session.Session) (storage.Store, error) {
	if u == "" {
		return storage.NewS3(awsSession), nil
	}
	ur, err := url.Parse(u)
	if err != nil {
		return nil, err
	}
	switch ur.Scheme {
	case "", "s3":
		return storage.NewS3(awsSession), nil
	case "file":
		return storage.NewLocalStore(ur.Path)
	}
	return nil, fmt.Errorf("no storage available for scheme %s", ur.Scheme)
}
