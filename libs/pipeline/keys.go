package pipeline

import (
	"fmt"
	"time"
)

// The key scheme below is load bearing: existing cached data was written
// under these exact names, so any change orphans every prior transcript.

// TranscriptKey returns the cache key for the transcript of a video basename.
func TranscriptKey(baseName string) string {
	return "transcription/" + baseName + ".txt"
}

// AudioKey returns the object key for the extracted audio of a video basename.
func AudioKey(baseName string) string {
	return "audio/" + baseName + ".wav"
}

// JobName returns a transcription job name unique across retried runs for the
// same video.
func JobName(baseName string, t time.Time) string {
	return fmt.Sprintf("transcribe-%s-%d", baseName, t.Unix())
}

// JobOutputKey returns the object key under which the provider writes the
// output document for a job.
func JobOutputKey(jobName string) string {
	return "transcription/" + jobName + ".json"
}
