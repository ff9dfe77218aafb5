package transcription

import (
	"testing"
)

const sampleDocument = `{
  "jobName": "medical-transcription-1700000000",
  "accountId": "123456789012",
  "status": "COMPLETED",
  "results": {
    "transcripts": [{"transcript": "I have had a headache for three days. How severe is the pain?"}],
    "speaker_labels": {
      "segments": [
        {"speaker_label": "spk_0", "start_time": "0.0", "end_time": "4.5"},
        {"speaker_label": "spk_1", "start_time": "4.6", "end_time": "7.2"}
      ]
    },
    "items": [
      {"type": "pronunciation", "start_time": "0.1", "end_time": "0.4", "alternatives": [{"content": "I"}]},
      {"type": "pronunciation", "start_time": "0.5", "end_time": "0.9", "alternatives": [{"content": "have"}]},
      {"type": "pronunciation", "start_time": "1.0", "end_time": "1.6", "alternatives": [{"content": "a"}]},
      {"type": "pronunciation", "start_time": "1.7", "end_time": "2.4", "alternatives": [{"content": "headache"}]},
      {"type": "punctuation", "alternatives": [{"content": "."}]},
      {"type": "pronunciation", "start_time": "4.8", "end_time": "5.2", "alternatives": [{"content": "How"}]},
      {"type": "pronunciation", "start_time": "5.3", "end_time": "5.9", "alternatives": [{"content": "severe"}]}
    ]
  }
}`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if doc.JobName != "medical-transcription-1700000000" {
		t.Errorf("JobName = %q", doc.JobName)
	}
	if got := doc.FullTranscript(); got == "" {
		t.Error("FullTranscript() should not be empty")
	}
}

func TestParseDocumentInvalid(t *testing.T) {
	if _, err := ParseDocument([]byte("not json")); err == nil {
		t.Error("ParseDocument should fail on invalid JSON")
	}
	if _, err := ParseDocument([]byte(`{"results":{}}`)); err == nil {
		t.Error("ParseDocument should fail when no transcripts are present")
	}
}

func TestSpeakerSegments(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDocument))
	if err != nil {
		t.Fatal(err)
	}

	segments := doc.SpeakerSegments()
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}

	if segments[0].Speaker != "spk_0" {
		t.Errorf("segment 0 speaker = %q, want spk_0", segments[0].Speaker)
	}
	if segments[0].Text != "I have a headache" {
		t.Errorf("segment 0 text = %q, want %q", segments[0].Text, "I have a headache")
	}
	if segments[1].Text != "How severe" {
		t.Errorf("segment 1 text = %q, want %q", segments[1].Text, "How severe")
	}
}

func TestSpeakerSegmentsWithoutLabels(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
	  "jobName": "j", "accountId": "a", "status": "COMPLETED",
	  "results": {"transcripts": [{"transcript": "hello"}]}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.SpeakerSegments(); got != nil {
		t.Errorf("SpeakerSegments() = %v, want nil", got)
	}
}

func TestParseTranscriptURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{
			uri:        "https://s3.ap-southeast-2.amazonaws.com/my-bucket/transcription-output/medical/job.json",
			wantBucket: "my-bucket",
			wantKey:    "transcription-output/medical/job.json",
		},
		{
			uri:        "https://my-bucket.s3.ap-southeast-2.amazonaws.com/transcription-output/job.json",
			wantBucket: "my-bucket",
			wantKey:    "transcription-output/job.json",
		},
		{
			uri:        "s3://my-bucket/transcription-output/job.json",
			wantBucket: "my-bucket",
			wantKey:    "transcription-output/job.json",
		},
		{uri: "ftp://my-bucket/job.json", wantErr: true},
		{uri: "s3://bucket-only", wantErr: true},
	}

	for _, tt := range tests {
		bucket, key, err := ParseTranscriptURI(tt.uri)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTranscriptURI(%q) expected error", tt.uri)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTranscriptURI(%q) error = %v", tt.uri, err)
			continue
		}
		if bucket != tt.wantBucket || key != tt.wantKey {
			t.Errorf("ParseTranscriptURI(%q) = (%q, %q), want (%q, %q)",
				tt.uri, bucket, key, tt.wantBucket, tt.wantKey)
		}
	}
}
