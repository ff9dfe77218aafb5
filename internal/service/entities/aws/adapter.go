// Package aws provides an entity extraction adapter backed by AWS
// Comprehend Medical.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/comprehendmedical"

	"clinical-scribe/internal/awsclient"
	"clinical-scribe/internal/models"
	"clinical-scribe/internal/observability/metrics"
)

// Adapter implements entities.Adapter using Comprehend Medical.
type Adapter struct {
	clients *awsclient.Clients
	metrics *metrics.Metrics
}

// New creates a new Comprehend Medical adapter.
func New(clients *awsclient.Clients) *Adapter {
	return &Adapter{clients: clients, metrics: metrics.DefaultMetrics}
}

// DetectEntities extracts medical entities from text.
func (a *Adapter) DetectEntities(ctx context.Context, text string) (models.EntitySet, error) {
	out, err := a.clients.Comprehend.DetectEntitiesV2WithContext(ctx, &comprehendmedical.DetectEntitiesV2Input{
		Text: aws.String(text),
	})
	a.metrics.RecordComprehendCall("detect_entities", err)
	if err != nil {
		return models.EntitySet{}, fmt.Errorf("detect entities failed: %w", err)
	}

	return models.EntitySet{
		Entities:        convertEntities(out.Entities),
		PaginationToken: aws.StringValue(out.PaginationToken),
		ModelVersion:    aws.StringValue(out.ModelVersion),
	}, nil
}

// DetectPHI extracts PHI entities from text.
func (a *Adapter) DetectPHI(ctx context.Context, text string) (models.EntitySet, error) {
	out, err := a.clients.Comprehend.DetectPHIWithContext(ctx, &comprehendmedical.DetectPHIInput{
		Text: aws.String(text),
	})
	a.metrics.RecordComprehendCall("detect_phi", err)
	if err != nil {
		return models.EntitySet{}, fmt.Errorf("detect PHI failed: %w", err)
	}

	return models.EntitySet{
		Entities:        convertEntities(out.Entities),
		PaginationToken: aws.StringValue(out.PaginationToken),
		ModelVersion:    aws.StringValue(out.ModelVersion),
	}, nil
}

func convertEntities(in []*comprehendmedical.Entity) []models.Entity {
	out := make([]models.Entity, 0, len(in))
	for _, e := range in {
		if e == nil {
			continue
		}
		out = append(out, models.Entity{
			Category:    aws.StringValue(e.Category),
			Type:        aws.StringValue(e.Type),
			Text:        aws.StringValue(e.Text),
			Score:       float64(aws.Float64Value(e.Score)),
			BeginOffset: aws.Int64Value(e.BeginOffset),
			EndOffset:   aws.Int64Value(e.EndOffset),
		})
	}
	return out
}
