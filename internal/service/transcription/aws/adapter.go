// Package aws provides a transcription adapter backed by AWS Transcribe
// Medical with transcript documents fetched from S3.
package aws

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/transcribeservice"
	"github.com/rs/zerolog/log"

	"clinical-scribe/internal/awsclient"
	"clinical-scribe/internal/config"
	"clinical-scribe/internal/observability/metrics"
	"clinical-scribe/internal/service/transcription"
)

// Adapter implements transcription.Adapter using AWS Transcribe Medical.
type Adapter struct {
	clients *awsclient.Clients
	cfg     config.TranscriptionConfig
	metrics *metrics.Metrics

	// now is injectable for job-name determinism in tests.
	now func() time.Time
}

// New creates a new AWS transcription adapter.
func New(clients *awsclient.Clients, cfg config.TranscriptionConfig) *Adapter {
	return &Adapter{
		clients: clients,
		cfg:     cfg,
		metrics: metrics.DefaultMetrics,
		now:     time.Now,
	}
}

// Upload stores a local recording in the configured bucket and returns its
// s3:// URI.
func (a *Adapter) Upload(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	_, err = a.clients.Uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(a.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("audio/mp4"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload recording to S3: %w", err)
	}

	uri := fmt.Sprintf("s3://%s/%s", a.cfg.Bucket, key)
	log.Info().Str("uri", uri).Msg("Recording uploaded")
	return uri, nil
}

// Transcribe starts a medical transcription job with speaker diarization,
// polls until the job reaches a terminal state, and downloads the transcript
// document from S3.
func (a *Adapter) Transcribe(ctx context.Context, audioURI string) (*transcription.Job, error) {
	jobName := fmt.Sprintf("%s-%d", a.cfg.JobNamePrefix, a.now().Unix())

	_, err := a.clients.Transcribe.StartMedicalTranscriptionJobWithContext(ctx, &transcribeservice.StartMedicalTranscriptionJobInput{
		MedicalTranscriptionJobName: aws.String(jobName),
		LanguageCode:                aws.String(a.cfg.LanguageCode),
		Media: &transcribeservice.Media{
			MediaFileUri: aws.String(audioURI),
		},
		OutputBucketName: aws.String(a.cfg.Bucket),
		OutputKey:        aws.String(a.cfg.OutputKey),
		Specialty:        aws.String(a.cfg.Specialty),
		Type:             aws.String(a.cfg.Type),
		Settings: &transcribeservice.MedicalTranscriptionSetting{
			ShowSpeakerLabels: aws.Bool(true),
			MaxSpeakerLabels:  aws.Int64(a.cfg.MaxSpeakers),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start transcription job %s: %w", jobName, err)
	}
	a.metrics.TranscribeJobsStarted.Inc()
	log.Info().Str("jobName", jobName).Str("audioUri", audioURI).Msg("Transcription job started")

	transcriptURI, status, err := a.waitForJob(ctx, jobName)
	if err != nil {
		return nil, err
	}

	doc, err := a.fetchDocument(ctx, transcriptURI)
	if err != nil {
		return nil, err
	}

	return &transcription.Job{Name: jobName, Status: status, Document: doc}, nil
}

// waitForJob polls the job status on the configured fixed interval until the
// job succeeds or fails.
func (a *Adapter) waitForJob(ctx context.Context, jobName string) (transcriptURI, status string, err error) {
	for {
		out, err := a.clients.Transcribe.GetMedicalTranscriptionJobWithContext(ctx, &transcribeservice.GetMedicalTranscriptionJobInput{
			MedicalTranscriptionJobName: aws.String(jobName),
		})
		if err != nil {
			return "", "", fmt.Errorf("failed to poll transcription job %s: %w", jobName, err)
		}
		a.metrics.TranscribePolls.Inc()

		job := out.MedicalTranscriptionJob
		status = aws.StringValue(job.TranscriptionJobStatus)
		log.Debug().Str("jobName", jobName).Str("status", status).Msg("Transcription job status")

		switch status {
		case transcribeservice.TranscriptionJobStatusCompleted:
			return aws.StringValue(job.Transcript.TranscriptFileUri), status, nil
		case transcribeservice.TranscriptionJobStatusFailed:
			a.metrics.TranscribeFailures.Inc()
			reason := aws.StringValue(job.FailureReason)
			if reason == "" {
				reason = "unknown error"
			}
			return "", "", fmt.Errorf("transcription job %s failed: %s", jobName, reason)
		}

		select {
		case <-ctx.Done():
			return "", "", ctx.Err()
		case <-time.After(a.cfg.PollInterval):
		}
	}
}

// fetchDocument downloads and parses the transcript document.
func (a *Adapter) fetchDocument(ctx context.Context, transcriptURI string) (*transcription.Document, error) {
	bucket, key, err := transcription.ParseTranscriptURI(transcriptURI)
	if err != nil {
		return nil, err
	}

	out, err := a.clients.S3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download transcript s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript body: %w", err)
	}

	return transcription.ParseDocument(body)
}
