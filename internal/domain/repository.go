package domain

import (
	"context"
)

// Repository defines typed CRUD over groups, chats and messages. Two
// implementations exist behind this contract: a local key-value backed
// store and a remote HTTP client; callers are constructed with one and
// never need to know which.
//
// All operations may fail with a *StorageError when the underlying
// adapter fails, and with ErrNotFound when a referenced id does not
// exist.
type Repository interface {
	// CreateChat assigns the next id, defaults a blank title to
	// DefaultChatTitle and stamps CreatedAt = UpdatedAt = now. A non-nil
	// groupID must reference an existing group.
	CreateChat(ctx context.Context, title string, groupID *int64) (*Chat, error)

	// CreateGroup defaults a blank name (after trim) to DefaultGroupName.
	CreateGroup(ctx context.Context, name string) (*Group, error)

	// AddMessage appends a message and its derived ai companion, bumping
	// the parent chat's UpdatedAt. The dual append is atomic from the
	// caller's point of view: either both messages are persisted or the
	// operation fails with no partial pair observable.
	AddMessage(ctx context.Context, chatID int64, sender Sender, content string) (*MessagePair, error)

	// GetUserChats lists all chats, most recently updated first.
	GetUserChats(ctx context.Context) ([]Chat, error)

	// GetChatMessages returns a chat's messages in append order.
	GetChatMessages(ctx context.Context, chatID int64) ([]Message, error)

	GetGroups(ctx context.Context) ([]Group, error)
	GetGroup(ctx context.Context, groupID int64) (*Group, error)

	// GetGroupChats lists the chats of one group, most recently updated
	// first.
	GetGroupChats(ctx context.Context, groupID int64) ([]Chat, error)

	// DeleteChat removes the chat and all its messages.
	DeleteChat(ctx context.Context, chatID int64) error

	// DeleteGroup removes the group, its chats, and transitively all
	// messages belonging to those chats.
	DeleteGroup(ctx context.Context, groupID int64) error

	RenameChat(ctx context.Context, chatID int64, title string) (*Chat, error)
	RenameGroup(ctx context.Context, groupID int64, name string) (*Group, error)
}
