// Package remote implements domain.Repository over the REST surface the
// server exposes. JSON bodies, bearer-token auth, `{success, data,
// error}` response envelopes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/animaweaver/chatstore/internal/domain"
)

// TokenSource supplies the bearer token attached to every request. The
// credential store is managed outside this package.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource for a fixed token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Repository is the HTTP-backed implementation of domain.Repository.
type Repository struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

// New creates a remote repository talking to baseURL. A zero timeout
// leaves requests uncancelled (context deadlines still apply).
func New(baseURL string, tokens TokenSource, timeout time.Duration) *Repository {
	return &Repository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// do performs one request and decodes the envelope's data into out (when
// out is non-nil). 404s map to domain.ErrNotFound; everything else that
// goes wrong is a *domain.StorageError.
func (r *Repository) do(ctx context.Context, method, path string, body any, out any) error {
	op := method + " " + path

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &domain.StorageError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+"/"+path, reader)
	if err != nil {
		return &domain.StorageError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if r.tokens != nil {
		if token := r.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return &domain.StorageError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	// Deletes answer 204 with no envelope to decode.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &domain.StorageError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = resp.Status
		}
		return &domain.StorageError{Op: op, Err: fmt.Errorf("server: %s", msg)}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &domain.StorageError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	return nil
}

// CreateChat implements domain.Repository.
func (r *Repository) CreateChat(ctx context.Context, title string, groupID *int64) (*domain.Chat, error) {
	body := map[string]any{"title": title}
	if groupID != nil {
		body["groupId"] = *groupID
	}
	var chat domain.Chat
	if err := r.do(ctx, http.MethodPost, "chats", body, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// CreateGroup implements domain.Repository.
func (r *Repository) CreateGroup(ctx context.Context, name string) (*domain.Group, error) {
	var group domain.Group
	if err := r.do(ctx, http.MethodPost, "groups", map[string]string{"name": name}, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// AddMessage implements domain.Repository. The companion ai message is
// produced server-side.
func (r *Repository) AddMessage(ctx context.Context, chatID int64, sender domain.Sender, content string) (*domain.MessagePair, error) {
	body := map[string]any{"sender": sender, "content": content}
	var pair domain.MessagePair
	if err := r.do(ctx, http.MethodPost, fmt.Sprintf("chats/%d/messages", chatID), body, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// GetUserChats implements domain.Repository.
func (r *Repository) GetUserChats(ctx context.Context) ([]domain.Chat, error) {
	var chats []domain.Chat
	if err := r.do(ctx, http.MethodGet, "chats", nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// GetChatMessages implements domain.Repository.
func (r *Repository) GetChatMessages(ctx context.Context, chatID int64) ([]domain.Message, error) {
	var messages []domain.Message
	if err := r.do(ctx, http.MethodGet, fmt.Sprintf("chats/%d/messages", chatID), nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetGroups implements domain.Repository.
func (r *Repository) GetGroups(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	if err := r.do(ctx, http.MethodGet, "groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetGroup implements domain.Repository.
func (r *Repository) GetGroup(ctx context.Context, groupID int64) (*domain.Group, error) {
	var group domain.Group
	if err := r.do(ctx, http.MethodGet, fmt.Sprintf("groups/%d", groupID), nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// GetGroupChats implements domain.Repository.
func (r *Repository) GetGroupChats(ctx context.Context, groupID int64) ([]domain.Chat, error) {
	var chats []domain.Chat
	if err := r.do(ctx, http.MethodGet, fmt.Sprintf("groups/%d/chats", groupID), nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// DeleteChat implements domain.Repository.
func (r *Repository) DeleteChat(ctx context.Context, chatID int64) error {
	return r.do(ctx, http.MethodDelete, fmt.Sprintf("chats/%d", chatID), nil, nil)
}

// DeleteGroup implements domain.Repository.
func (r *Repository) DeleteGroup(ctx context.Context, groupID int64) error {
	return r.do(ctx, http.MethodDelete, fmt.Sprintf("groups/%d", groupID), nil, nil)
}

// RenameChat implements domain.Repository. The path is flat, not nested;
// that is the shape of the legacy surface and is kept for compatibility.
func (r *Repository) RenameChat(ctx context.Context, chatID int64, title string) (*domain.Chat, error) {
	body := map[string]any{"chatId": chatID, "title": title}
	var chat domain.Chat
	if err := r.do(ctx, http.MethodPost, "chatsrename", body, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// RenameGroup implements domain.Repository.
func (r *Repository) RenameGroup(ctx context.Context, groupID int64, name string) (*domain.Group, error) {
	body := map[string]any{"groupId": groupID, "name": name}
	var group domain.Group
	if err := r.do(ctx, http.MethodPost, "groups/rename", body, &group); err != nil {
		return nil, err
	}
	return &group, nil
}
