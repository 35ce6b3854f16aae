package transcription

import (
	"encoding/json"
	"strings"

	"github.com/meetbrief/backend/libs/errors"
)

// outputDocument is the subset of the provider's output document that we
// consume. The first transcript alternative is the canonical full text.
type outputDocument struct {
	Results struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
	} `json:"results"`
}

// TranscriptFromOutput parses a job output document and returns the full
// transcript text.
func TranscriptFromOutput(data []byte) (string, error) {
	var doc outputDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", errors.Wrapf(err, "transcription: malformed output document")
	}
	if len(doc.Results.Transcripts) == 0 {
		return "", errors.Errorf("transcription: output document has no transcripts")
	}
	return doc.Results.Transcripts[0].Transcript, nil
}

// Segments splits a transcript into sentence segments on the literal
// terminator-plus-space delimiter. The trailing terminator of the final
// segment is preserved, matching how cached transcripts have always been
// split.
func Segments(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, ". ")
}
