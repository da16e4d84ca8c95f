package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animaweaver/chatstore/internal/domain"
	"github.com/animaweaver/chatstore/internal/store"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	kv, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return New(kv, nil)
}

type failingResponder struct{}

func (failingResponder) Respond(context.Context, int64, string) (string, *domain.ResponseMeta, error) {
	return "", nil, errors.New("responder unavailable")
}

func TestCreateChatDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chat, err := repo.CreateChat(ctx, "", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), chat.ID)
	assert.Equal(t, "New Chat", chat.Title)
	assert.Nil(t, chat.GroupID)
	assert.Equal(t, chat.CreatedAt, chat.UpdatedAt)
}

func TestCreateChatUnknownGroup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	missing := int64(99)
	_, err := repo.CreateChat(ctx, "Orphan", &missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateGroupBlankName(t *testing.T) {
	repo := newTestRepo(t)

	group, err := repo.CreateGroup(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "New Group", group.Name)
	assert.Equal(t, int64(1), group.ID)
}

func TestNextIDIsMaxPlusOne(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c1, err := repo.CreateChat(ctx, "first", nil)
	require.NoError(t, err)
	c2, err := repo.CreateChat(ctx, "second", nil)
	require.NoError(t, err)
	assert.Equal(t, c1.ID+1, c2.ID)

	// Deleting the highest id makes it reusable: ids are max+1, not a
	// persistent counter.
	require.NoError(t, repo.DeleteChat(ctx, c2.ID))
	c3, err := repo.CreateChat(ctx, "third", nil)
	require.NoError(t, err)
	assert.Equal(t, c2.ID, c3.ID)
}

func TestAddMessagePair(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chat, err := repo.CreateChat(ctx, "", nil)
	require.NoError(t, err)

	pair, err := repo.AddMessage(ctx, chat.ID, domain.SenderUser, "hello there")
	require.NoError(t, err)
	assert.Equal(t, domain.SenderUser, pair.User.Sender)
	assert.Equal(t, "hello there", pair.User.Content)
	assert.Equal(t, domain.SenderAI, pair.AI.Sender)
	assert.Contains(t, pair.AI.Content, "hello there")
	require.NotNil(t, pair.AI.Meta)
	assert.Equal(t, "Local demo", *pair.AI.Meta.Source)

	chats, err := repo.GetUserChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.False(t, chats[0].UpdatedAt.Before(chat.UpdatedAt))
}

func TestAddMessageUnknownChat(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.AddMessage(context.Background(), 42, domain.SenderUser, "hi")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddMessageResponderFailureLeavesNoPartialState(t *testing.T) {
	kv, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	repo := New(kv, failingResponder{})
	ctx := context.Background()

	chat, err := repo.CreateChat(ctx, "", nil)
	require.NoError(t, err)
	before := chat.UpdatedAt

	_, err = repo.AddMessage(ctx, chat.ID, domain.SenderUser, "hello")
	require.Error(t, err)

	msgs, err := repo.GetChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	chats, err := repo.GetUserChats(ctx)
	require.NoError(t, err)
	assert.True(t, chats[0].UpdatedAt.Equal(before))
}

func TestMessagesKeepAppendOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chat, err := repo.CreateChat(ctx, "", nil)
	require.NoError(t, err)

	inputs := []string{"one", "two", "three"}
	for _, in := range inputs {
		_, err := repo.AddMessage(ctx, chat.ID, domain.SenderUser, in)
		require.NoError(t, err)
	}

	msgs, err := repo.GetChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 6)
	for i, in := range inputs {
		assert.Equal(t, domain.SenderUser, msgs[2*i].Sender)
		assert.Equal(t, in, msgs[2*i].Content)
		assert.Equal(t, domain.SenderAI, msgs[2*i+1].Sender)
	}
}

func TestDeleteChatCascade(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chat, err := repo.CreateChat(ctx, "", nil)
	require.NoError(t, err)
	other, err := repo.CreateChat(ctx, "keep me", nil)
	require.NoError(t, err)

	_, err = repo.AddMessage(ctx, chat.ID, domain.SenderUser, "a")
	require.NoError(t, err)
	_, err = repo.AddMessage(ctx, chat.ID, domain.SenderUser, "b")
	require.NoError(t, err)
	_, err = repo.AddMessage(ctx, other.ID, domain.SenderUser, "c")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteChat(ctx, chat.ID))

	msgs, err := repo.GetChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	chats, err := repo.GetUserChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, other.ID, chats[0].ID)

	otherMsgs, err := repo.GetChatMessages(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, otherMsgs, 2)
}

func TestDeleteChatUnknown(t *testing.T) {
	repo := newTestRepo(t)
	assert.ErrorIs(t, repo.DeleteChat(context.Background(), 7), domain.ErrNotFound)
}

func TestDeleteGroupCascade(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	group, err := repo.CreateGroup(ctx, "Launch Plans")
	require.NoError(t, err)
	other, err := repo.CreateGroup(ctx, "Keep")
	require.NoError(t, err)

	inGroup, err := repo.CreateChat(ctx, "", &group.ID)
	require.NoError(t, err)
	inOther, err := repo.CreateChat(ctx, "", &other.ID)
	require.NoError(t, err)
	ungrouped, err := repo.CreateChat(ctx, "", nil)
	require.NoError(t, err)

	_, err = repo.AddMessage(ctx, inGroup.ID, domain.SenderUser, "doomed")
	require.NoError(t, err)
	_, err = repo.AddMessage(ctx, inOther.ID, domain.SenderUser, "survives")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteGroup(ctx, group.ID))

	chats, err := repo.GetGroupChats(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, chats)

	msgs, err := repo.GetChatMessages(ctx, inGroup.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	all, err := repo.GetUserChats(ctx)
	require.NoError(t, err)
	ids := make(map[int64]bool)
	for _, c := range all {
		ids[c.ID] = true
	}
	assert.False(t, ids[inGroup.ID])
	assert.True(t, ids[inOther.ID])
	assert.True(t, ids[ungrouped.ID])

	_, err = repo.GetGroup(ctx, group.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRenameChatRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chat, err := repo.CreateChat(ctx, "", nil)
	require.NoError(t, err)
	before := chat.UpdatedAt

	renamed, err := repo.RenameChat(ctx, chat.ID, "Foo")
	require.NoError(t, err)
	assert.Equal(t, "Foo", renamed.Title)

	chats, err := repo.GetUserChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "Foo", chats[0].Title)
	assert.False(t, chats[0].UpdatedAt.Before(before))
}

func TestRenameUnknownIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.RenameChat(ctx, 5, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.RenameGroup(ctx, 5, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecencyOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.CreateChat(ctx, "first", nil)
	require.NoError(t, err)
	second, err := repo.CreateChat(ctx, "second", nil)
	require.NoError(t, err)

	// Touching the older chat moves it to the front.
	time.Sleep(2 * time.Millisecond)
	_, err = repo.AddMessage(ctx, first.ID, domain.SenderUser, "bump")
	require.NoError(t, err)

	chats, err := repo.GetUserChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, first.ID, chats[0].ID)
	assert.Equal(t, second.ID, chats[1].ID)
}

func TestLaunchPlansScenario(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	group, err := repo.CreateGroup(ctx, "Launch Plans")
	require.NoError(t, err)
	groupUpdated := group.UpdatedAt

	chat, err := repo.CreateChat(ctx, "", &group.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Chat", chat.Title)

	const text = "Draft a launch email for our Q1 offer"
	pair, err := repo.AddMessage(ctx, chat.ID, domain.SenderUser, text)
	require.NoError(t, err)
	assert.Equal(t, text, pair.User.Content)
	require.NotNil(t, pair.AI.Meta)

	msgs, err := repo.GetChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	// Only the chat's timestamp moves; the group's does not.
	got, err := repo.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(groupUpdated))

	chats, err := repo.GetUserChats(ctx)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, chats[0].ID)
}
