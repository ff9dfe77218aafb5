// Package aws provides a streaming transcription adapter backed by Amazon
// Transcribe Streaming.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/transcribestreamingservice"
	"github.com/rs/zerolog/log"

	"clinical-scribe/internal/awsclient"
	"clinical-scribe/internal/service/livestt"
)

// Config holds the streaming session parameters.
type Config struct {
	LanguageCode string
	SampleRate   int64
}

// Adapter implements livestt.Adapter using Amazon Transcribe Streaming.
type Adapter struct {
	clients *awsclient.Clients
	cfg     Config
	stream  *transcribestreamingservice.StartStreamTranscriptionEventStream
	cb      livestt.Callback
}

// New creates a new streaming transcription adapter.
func New(clients *awsclient.Clients, cfg Config) *Adapter {
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-AU"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	return &Adapter{clients: clients, cfg: cfg}
}

// Start opens the bidirectional stream and begins dispatching transcript
// events to the callback.
func (a *Adapter) Start(ctx context.Context, cb livestt.Callback) error {
	out, err := a.clients.Streaming.StartStreamTranscriptionWithContext(ctx, &transcribestreamingservice.StartStreamTranscriptionInput{
		LanguageCode:         aws.String(a.cfg.LanguageCode),
		MediaEncoding:        aws.String(transcribestreamingservice.MediaEncodingPcm),
		MediaSampleRateHertz: aws.Int64(a.cfg.SampleRate),
	})
	if err != nil {
		return fmt.Errorf("start stream transcription: %w", err)
	}
	a.stream = out.GetStream()
	a.cb = cb

	log.Info().
		Str("languageCode", a.cfg.LanguageCode).
		Int64("sampleRate", a.cfg.SampleRate).
		Msg("streaming transcription started")

	go a.listen()
	return nil
}

// SendAudio forwards one chunk of PCM16 audio to the stream.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	if a.stream == nil {
		return fmt.Errorf("stream not started")
	}
	return a.stream.Send(ctx, &transcribestreamingservice.AudioEvent{
		AudioChunk: audio,
	})
}

// Close ends the input stream. Pending final transcripts are still delivered
// by the listen goroutine before the event channel closes.
func (a *Adapter) Close() error {
	if a.stream == nil {
		return nil
	}
	return a.stream.Close()
}

// listen consumes transcript events until the stream closes.
func (a *Adapter) listen() {
	for event := range a.stream.Events() {
		te, ok := event.(*transcribestreamingservice.TranscriptEvent)
		if !ok || te.Transcript == nil {
			continue
		}
		for _, result := range te.Transcript.Results {
			if len(result.Alternatives) == 0 {
				continue
			}
			alt := result.Alternatives[0]
			text := aws.StringValue(alt.Transcript)
			if aws.BoolValue(result.IsPartial) {
				a.cb.OnPartial(text)
			} else {
				a.cb.OnFinal(text, meanConfidence(alt))
			}
		}
	}
	if err := a.stream.Err(); err != nil {
		a.cb.OnError(err)
	}
}

// meanConfidence averages the word-level confidences of an alternative.
// Streaming results carry no utterance-level score.
func meanConfidence(alt *transcribestreamingservice.Alternative) float64 {
	var sum float64
	var n int
	for _, item := range alt.Items {
		if item.Confidence != nil {
			sum += aws.Float64Value(item.Confidence)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
