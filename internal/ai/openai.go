package ai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/animaweaver/chatstore/internal/domain"
)

const defaultModel = openai.GPT4oMini

const systemPrompt = "You are Anima, a concise assistant for marketing and " +
	"teaching conversations. Answer directly and keep formatting simple."

// OpenAI answers prompts with a chat completion. Used by the server when
// an API key is configured; the local repository never requires it.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed responder.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = defaultModel
	}
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (p *OpenAI) Respond(ctx context.Context, _ int64, prompt string) (string, *domain.ResponseMeta, error) {
	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("no completion choices returned")
	}

	now := time.Now()
	elapsed := now.Sub(start).Round(time.Millisecond).String()
	meta := &domain.ResponseMeta{
		Success:      boolPtr(true),
		Query:        strPtr(prompt),
		Source:       strPtr(p.model),
		Tools:        []string{},
		AITimestamp:  &now,
		ResponseTime: &elapsed,
	}
	return resp.Choices[0].Message.Content, meta, nil
}
