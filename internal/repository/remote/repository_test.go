package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animaweaver/chatstore/internal/domain"
)

func envelopeOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func TestCreateChatRequestShape(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		envelopeOK(w, domain.Chat{ID: 3, Title: "New Chat"})
	}))
	defer srv.Close()

	repo := New(srv.URL, StaticToken("test-token"), 5*time.Second)
	chat, err := repo.CreateChat(context.Background(), "New Chat", nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/chats", gotPath)
	assert.Equal(t, "New Chat", gotBody["title"])
	assert.Equal(t, int64(3), chat.ID)
}

func TestRenameChatUsesFlatPath(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		envelopeOK(w, domain.Chat{ID: 7, Title: "Foo"})
	}))
	defer srv.Close()

	repo := New(srv.URL, nil, 0)
	chat, err := repo.RenameChat(context.Background(), 7, "Foo")
	require.NoError(t, err)

	assert.Equal(t, "/chatsrename", gotPath)
	assert.Equal(t, float64(7), gotBody["chatId"])
	assert.Equal(t, "Foo", gotBody["title"])
	assert.Equal(t, "Foo", chat.Title)
}

func TestRenameGroupPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		envelopeOK(w, domain.Group{ID: 2, Name: "Renamed"})
	}))
	defer srv.Close()

	repo := New(srv.URL, nil, 0)
	group, err := repo.RenameGroup(context.Background(), 2, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "/groups/rename", gotPath)
	assert.Equal(t, "Renamed", group.Name)
}

func TestAddMessageDecodesPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chats/5/messages", r.URL.Path)
		envelopeOK(w, domain.MessagePair{
			User: domain.Message{ID: 10, ChatID: 5, Sender: domain.SenderUser, Content: "hi"},
			AI:   domain.Message{ID: 11, ChatID: 5, Sender: domain.SenderAI, Content: "hello", Meta: &domain.ResponseMeta{Tools: []string{}}},
		})
	}))
	defer srv.Close()

	repo := New(srv.URL, nil, 0)
	pair, err := repo.AddMessage(context.Background(), 5, domain.SenderUser, "hi")
	require.NoError(t, err)
	assert.Equal(t, int64(10), pair.User.ID)
	require.NotNil(t, pair.AI.Meta)
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	repo := New(srv.URL, nil, 0)
	err := repo.DeleteChat(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServerErrorIsStorageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "boom"})
	}))
	defer srv.Close()

	repo := New(srv.URL, nil, 0)
	_, err := repo.GetUserChats(context.Background())
	var storageErr *domain.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Contains(t, storageErr.Error(), "boom")
}

func TestNetworkFailureIsStorageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	repo := New(srv.URL, nil, time.Second)
	_, err := repo.GetGroups(context.Background())
	var storageErr *domain.StorageError
	assert.True(t, errors.As(err, &storageErr))
}
