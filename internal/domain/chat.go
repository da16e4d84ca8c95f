package domain

import (
	"time"
)

// Chat represents a single conversation thread. A chat belongs to at most
// one group (GroupID may be nil) and its UpdatedAt is bumped on every new
// message, which is the sort key for "most recent first" listings.
type Chat struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	GroupID   *int64    `json:"groupId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultChatTitle is the placeholder title a chat carries until the first
// message is sent in it.
const DefaultChatTitle = "New Chat"
