package store

import (
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animaweaver/chatstore/internal/domain"
)

func openTestStore(t *testing.T) *Badger {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBadgerRoundTrip(t *testing.T) {
	s := openTestStore(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	chats := []domain.Chat{
		{ID: 1, UserID: 1, Title: "New Chat", CreatedAt: now, UpdatedAt: now},
		{ID: 2, UserID: 1, Title: "Launch ideas", CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, s.Save(ChatsKey, chats))

	var got []domain.Chat
	require.NoError(t, s.Load(ChatsKey, &got))
	assert.Equal(t, chats, got)
}

func TestBadgerLoadMissingKey(t *testing.T) {
	s := openTestStore(t)

	var got []domain.Group
	require.NoError(t, s.Load(GroupsKey, &got))
	assert.Empty(t, got)
}

func TestBadgerLoadCorruptValue(t *testing.T) {
	s := openTestStore(t)

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ChatsKey), []byte(`{"definitely": "not an array`))
	})
	require.NoError(t, err)

	var got []domain.Chat
	require.NoError(t, s.Load(ChatsKey, &got))
	assert.Empty(t, got)
}

func TestBadgerLoadWrongShape(t *testing.T) {
	s := openTestStore(t)

	// A valid JSON value of the wrong type reads as empty too.
	require.NoError(t, s.Save(MessagesKey, "just a string"))

	var got []domain.Message
	require.NoError(t, s.Load(MessagesKey, &got))
	assert.Empty(t, got)
}

func TestBadgerSaveOverwrites(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save(GroupsKey, []domain.Group{{ID: 1, Name: "A"}}))
	require.NoError(t, s.Save(GroupsKey, []domain.Group{{ID: 2, Name: "B"}}))

	var got []domain.Group
	require.NoError(t, s.Load(GroupsKey, &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestBadgerLoadRequiresPointer(t *testing.T) {
	s := openTestStore(t)

	var got []domain.Chat
	assert.Error(t, s.Load(ChatsKey, got))
}
