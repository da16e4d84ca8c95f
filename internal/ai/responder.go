// Package ai produces the companion response for a user message.
package ai

import (
	"context"

	"github.com/animaweaver/chatstore/internal/domain"
)

// Responder derives the ai side of a message pair. Implementations fill
// ResponseMeta so the sources/tools panels have something to show.
type Responder interface {
	Respond(ctx context.Context, chatID int64, prompt string) (string, *domain.ResponseMeta, error)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
