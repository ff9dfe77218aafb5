// Package bedrock provides a model invoker backed by the Bedrock Runtime
// InvokeModel API.
package bedrock

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/bedrockruntime"
	"github.com/rs/zerolog/log"

	"clinical-scribe/internal/awsclient"
	"clinical-scribe/internal/observability/metrics"
)

// Invoker implements llm.Invoker using Bedrock Runtime.
type Invoker struct {
	clients *awsclient.Clients
	metrics *metrics.Metrics
}

// New creates a new Bedrock invoker.
func New(clients *awsclient.Clients) *Invoker {
	return &Invoker{clients: clients, metrics: metrics.DefaultMetrics}
}

// Invoke performs a single InvokeModel call and returns the raw response
// body. No retries; failures propagate to the caller.
func (i *Invoker) Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	start := time.Now()
	out, err := i.clients.Bedrock.InvokeModelWithContext(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	latency := time.Since(start)
	i.metrics.BedrockLatency.WithLabelValues(modelID).Observe(latency.Seconds())
	if err != nil {
		return nil, fmt.Errorf("bedrock invoke %s failed: %w", modelID, err)
	}

	log.Debug().
		Str("modelId", modelID).
		Dur("latency", latency).
		Int("responseBytes", len(out.Body)).
		Msg("Bedrock invocation completed")
	return out.Body, nil
}
