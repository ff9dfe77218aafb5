// Package mock provides an entity extraction adapter for testing without
// cloud credentials. It tags a few common symptom and PHI words.
package mock

import (
	"context"
	"strings"
	"sync"

	"clinical-scribe/internal/models"
)

// symptomWords are tagged as medical entities when present in the text.
var symptomWords = map[string]string{
	"headache": "DX_NAME",
	"nausea":   "DX_NAME",
	"vomiting": "DX_NAME",
	"fever":    "DX_NAME",
	"pain":     "DX_NAME",
}

// phiWords are tagged as PHI entities when present in the text.
var phiWords = map[string]string{
	"john":      "NAME",
	"melbourne": "ADDRESS",
}

// Adapter implements entities.Adapter with keyword matching.
type Adapter struct {
	mu    sync.Mutex
	calls int
}

// New creates a new mock entity extraction adapter.
func New() *Adapter {
	return &Adapter{}
}

// DetectEntities tags known symptom words.
func (a *Adapter) DetectEntities(ctx context.Context, text string) (models.EntitySet, error) {
	a.count()
	return models.EntitySet{
		Entities:     match(text, symptomWords, "MEDICAL_CONDITION"),
		ModelVersion: "mock-1.0",
	}, nil
}

// DetectPHI tags known PHI words.
func (a *Adapter) DetectPHI(ctx context.Context, text string) (models.EntitySet, error) {
	a.count()
	return models.EntitySet{
		Entities:     match(text, phiWords, "PROTECTED_HEALTH_INFORMATION"),
		ModelVersion: "mock-1.0",
	}, nil
}

// Calls returns how many extraction calls were made.
func (a *Adapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *Adapter) count() {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
}

func match(text string, words map[string]string, category string) []models.Entity {
	lower := strings.ToLower(text)
	var found []models.Entity
	for word, entityType := range words {
		idx := strings.Index(lower, word)
		if idx < 0 {
			continue
		}
		found = append(found, models.Entity{
			Category:    category,
			Type:        entityType,
			Text:        text[idx : idx+len(word)],
			Score:       0.95,
			BeginOffset: int64(idx),
			EndOffset:   int64(idx + len(word)),
		})
	}
	return found
}
