// Package entities defines the interface for medical entity and PHI
// extraction providers.
package entities

import (
	"context"

	"clinical-scribe/internal/models"
)

// Adapter defines the interface for entity extraction providers.
// Calls are plain request/response; no batching or streaming. Call size is
// bounded by the caller's segment text length.
type Adapter interface {
	// DetectEntities extracts tagged medical entities from text.
	DetectEntities(ctx context.Context, text string) (models.EntitySet, error)

	// DetectPHI extracts protected health information entities from text.
	DetectPHI(ctx context.Context, text string) (models.EntitySet, error)
}
