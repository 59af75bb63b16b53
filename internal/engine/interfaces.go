package engine

import (
	"context"

	"maumcare/internal/models"
)

// Generator produces free-form reply text, typically with an LLM. It may fail;
// callers decide whether its text is used at all.
type Generator interface {
	Generate(ctx context.Context, history []models.Turn, message string) (string, error)
}

// Store archives conversations. Records saved with IsTest set live in a
// separate partition and never appear in production listings.
type Store interface {
	// Save assigns the record a timestamped key and persists it.
	Save(ctx context.Context, record *models.ConversationRecord) (string, error)
	List(ctx context.Context, includeTest bool) ([]models.ConversationSummary, error)
	Get(ctx context.Context, key string, isTest bool) (*models.ConversationRecord, error)
}

// Retriever returns reference passages relevant to the message and recent
// user turns. Reply composition does not consume them.
type Retriever interface {
	Search(ctx context.Context, message string, history []models.Turn) ([]models.Passage, error)
}
