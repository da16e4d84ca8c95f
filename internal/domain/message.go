package domain

import (
	"time"
)

// Sender identifies the author of a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one turn in a chat. Messages are immutable once created and
// only ever appended; ordering within a chat is insertion order.
type Message struct {
	ID        int64         `json:"id"`
	ChatID    int64         `json:"chatId"`
	Sender    Sender        `json:"sender"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
}

// ResponseMeta is auxiliary, non-authoritative data attached to an ai
// message describing its provenance. It feeds the sources/tools panels and
// has no effect on conversation logic.
type ResponseMeta struct {
	Source       *string    `json:"source,omitempty"`
	WhereToFind  *string    `json:"where_to_find,omitempty"`
	Timestamps   *string    `json:"timestamps,omitempty"`
	Tools        []string   `json:"tools"`
	Query        *string    `json:"query,omitempty"`
	Success      *bool      `json:"success,omitempty"`
	Error        *string    `json:"error,omitempty"`
	AITimestamp  *time.Time `json:"ai_timestamp,omitempty"`
	ResponseTime *string    `json:"response_time,omitempty"`
}

// MessagePair is the result of appending a user message: the message as
// persisted plus the companion ai response.
type MessagePair struct {
	User Message `json:"user"`
	AI   Message `json:"ai"`
}
