// Package awsclient constructs the AWS service clients used by the pipeline.
//
// Clients are built once and passed to the components that need them; nothing
// here is memoized globally, so lifetime is owned by the caller.
package awsclient

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/bedrockruntime"
	"github.com/aws/aws-sdk-go/service/comprehendmedical"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/transcribeservice"
	"github.com/aws/aws-sdk-go/service/transcribestreamingservice"
)

// Clients bundles the AWS service clients for one region.
type Clients struct {
	Region     string
	Transcribe *transcribeservice.TranscribeService
	Streaming  *transcribestreamingservice.TranscribeStreamingService
	Comprehend *comprehendmedical.ComprehendMedical
	Bedrock    *bedrockruntime.BedrockRuntime
	S3         *s3.S3
	Uploader   *s3manager.Uploader
}

// New creates a client bundle for the given region using the default
// credential chain.
func New(region string) (*Clients, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &Clients{
		Region:     region,
		Transcribe: transcribeservice.New(sess),
		Streaming:  transcribestreamingservice.New(sess),
		Comprehend: comprehendmedical.New(sess),
		Bedrock:    bedrockruntime.New(sess),
		S3:         s3.New(sess),
		Uploader:   s3manager.NewUploader(sess),
	}, nil
}
