package domain

import (
	"time"
)

// Group is a named container for related chats, typically one per project
// or topic. Deleting a group cascades to its chats and their messages.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DefaultGroupName is used when a group is created with a blank name.
const DefaultGroupName = "New Group"
