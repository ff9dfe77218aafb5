package transcription

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"clinical-scribe/internal/models"
)

// Document is the transcript document produced by a medical transcription
// job: full transcript text, diarization labels and word-level items.
type Document struct {
	JobName   string `json:"jobName"`
	AccountID string `json:"accountId"`
	Status    string `json:"status"`
	Results   struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
		SpeakerLabels *struct {
			Segments []LabelSegment `json:"segments"`
		} `json:"speaker_labels"`
		Items []Item `json:"items"`
	} `json:"results"`
}

// LabelSegment is one diarization span attributed to a speaker.
type LabelSegment struct {
	SpeakerLabel string `json:"speaker_label"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// Item is one word-level transcript item.
type Item struct {
	Type         string `json:"type"` // pronunciation or punctuation
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Alternatives []struct {
		Content string `json:"content"`
	} `json:"alternatives"`
}

// ParseDocument decodes a transcript document.
func ParseDocument(b []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("invalid transcript document: %w", err)
	}
	if len(doc.Results.Transcripts) == 0 {
		return nil, fmt.Errorf("transcript document has no transcripts")
	}
	return &doc, nil
}

// FullTranscript returns the complete transcript text.
func (d *Document) FullTranscript() string {
	if len(d.Results.Transcripts) == 0 {
		return ""
	}
	return d.Results.Transcripts[0].Transcript
}

// SpeakerSegments assembles speaker-attributed segments by matching
// pronunciation items to diarization spans on their start times. Returns nil
// when the job ran without speaker labels.
func (d *Document) SpeakerSegments() []models.SpeakerSegment {
	if d.Results.SpeakerLabels == nil {
		return nil
	}

	var segments []models.SpeakerSegment
	for _, seg := range d.Results.SpeakerLabels.Segments {
		start := parseSeconds(seg.StartTime)
		end := parseSeconds(seg.EndTime)

		var words []string
		for _, item := range d.Results.Items {
			if item.Type != "pronunciation" || item.StartTime == "" {
				continue
			}
			ts := parseSeconds(item.StartTime)
			if ts < start || ts > end {
				continue
			}
			if len(item.Alternatives) > 0 {
				words = append(words, item.Alternatives[0].Content)
			}
		}

		segments = append(segments, models.SpeakerSegment{
			Speaker:   seg.SpeakerLabel,
			StartTime: seg.StartTime,
			EndTime:   seg.EndTime,
			Text:      strings.Join(words, " "),
		})
	}
	return segments
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseTranscriptURI extracts bucket and key from a transcript location,
// which may be an https S3 URL (path-style or virtual-hosted) or an s3:// URI.
func ParseTranscriptURI(uri string) (bucket, key string, err error) {
	switch {
	case strings.HasPrefix(uri, "https://"):
		parts := strings.Split(strings.TrimPrefix(uri, "https://"), "/")
		if len(parts) < 2 {
			return "", "", fmt.Errorf("unsupported transcript URI: %s", uri)
		}
		if strings.HasPrefix(parts[0], "s3.") {
			// s3.<region>.amazonaws.com/<bucket>/<key>
			return parts[1], strings.Join(parts[2:], "/"), nil
		}
		// <bucket>.s3.<region>.amazonaws.com/<key>
		return strings.SplitN(parts[0], ".", 2)[0], strings.Join(parts[1:], "/"), nil

	case strings.HasPrefix(uri, "s3://"):
		rest := strings.TrimPrefix(uri, "s3://")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("unsupported transcript URI: %s", uri)
		}
		return parts[0], parts[1], nil

	default:
		return "", "", fmt.Errorf("unsupported transcript URI: %s", uri)
	}
}
