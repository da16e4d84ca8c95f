package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/animaweaver/chatstore/internal/domain"
)

// Echo is the offline responder: it answers every prompt with a canned
// summary of the input. This is the default when no provider is
// configured, so the store works with no network at all.
type Echo struct{}

func (Echo) Respond(_ context.Context, _ int64, prompt string) (string, *domain.ResponseMeta, error) {
	now := time.Now()
	content := fmt.Sprintf("This is a local demo response.\n\nYou said:\n\n%s", prompt)
	meta := &domain.ResponseMeta{
		Success:     boolPtr(true),
		Query:       strPtr(prompt),
		Source:      strPtr("Local demo"),
		WhereToFind: strPtr("Offline knowledge base"),
		Tools:       []string{},
		AITimestamp: &now,
	}
	return content, meta, nil
}
