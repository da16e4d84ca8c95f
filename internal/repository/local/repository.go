// Package local implements domain.Repository over the key-value store.
// Every operation is a read-modify-write of whole collections, which is
// safe under the store's single-writer, run-to-completion usage.
package local

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/animaweaver/chatstore/internal/ai"
	"github.com/animaweaver/chatstore/internal/domain"
	"github.com/animaweaver/chatstore/internal/store"
)

// The local store models a single signed-in user.
const localUserID int64 = 1

// Repository is the local, offline implementation of domain.Repository.
type Repository struct {
	kv        store.KV
	responder ai.Responder
	now       func() time.Time
}

// New creates a local repository. A nil responder falls back to the
// offline echo responder.
func New(kv store.KV, responder ai.Responder) *Repository {
	if responder == nil {
		responder = ai.Echo{}
	}
	return &Repository{
		kv:        kv,
		responder: responder,
		now:       time.Now,
	}
}

// nextID assigns max(existing)+1, defaulting to 1 for an empty collection.
func nextID[T any](items []T, id func(T) int64) int64 {
	var max int64
	for _, it := range items {
		if v := id(it); v > max {
			max = v
		}
	}
	return max + 1
}

func byRecency(chats []domain.Chat) []domain.Chat {
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats
}

func (r *Repository) loadChats() ([]domain.Chat, error) {
	var chats []domain.Chat
	if err := r.kv.Load(store.ChatsKey, &chats); err != nil {
		return nil, &domain.StorageError{Op: "load chats", Err: err}
	}
	return chats, nil
}

func (r *Repository) loadMessages() ([]domain.Message, error) {
	var messages []domain.Message
	if err := r.kv.Load(store.MessagesKey, &messages); err != nil {
		return nil, &domain.StorageError{Op: "load messages", Err: err}
	}
	return messages, nil
}

func (r *Repository) loadGroups() ([]domain.Group, error) {
	var groups []domain.Group
	if err := r.kv.Load(store.GroupsKey, &groups); err != nil {
		return nil, &domain.StorageError{Op: "load groups", Err: err}
	}
	return groups, nil
}

func (r *Repository) save(key string, v any) error {
	if err := r.kv.Save(key, v); err != nil {
		return &domain.StorageError{Op: "save " + key, Err: err}
	}
	return nil
}

// CreateChat implements domain.Repository.
func (r *Repository) CreateChat(ctx context.Context, title string, groupID *int64) (*domain.Chat, error) {
	if groupID != nil {
		if _, err := r.GetGroup(ctx, *groupID); err != nil {
			return nil, err
		}
	}

	chats, err := r.loadChats()
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = domain.DefaultChatTitle
	}

	now := r.now()
	chat := domain.Chat{
		ID:        nextID(chats, func(c domain.Chat) int64 { return c.ID }),
		UserID:    localUserID,
		Title:     title,
		GroupID:   groupID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.save(store.ChatsKey, append(chats, chat)); err != nil {
		return nil, err
	}
	return &chat, nil
}

// CreateGroup implements domain.Repository.
func (r *Repository) CreateGroup(_ context.Context, name string) (*domain.Group, error) {
	groups, err := r.loadGroups()
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultGroupName
	}

	now := r.now()
	group := domain.Group{
		ID:        nextID(groups, func(g domain.Group) int64 { return g.ID }),
		Name:      name,
		CreatedBy: localUserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.save(store.GroupsKey, append(groups, group)); err != nil {
		return nil, err
	}
	return &group, nil
}

// AddMessage implements domain.Repository. The responder runs before
// anything is written, so a failed response leaves no partial pair behind.
func (r *Repository) AddMessage(ctx context.Context, chatID int64, sender domain.Sender, content string) (*domain.MessagePair, error) {
	chats, err := r.loadChats()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range chats {
		if chats[i].ID == chatID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("chat %d: %w", chatID, domain.ErrNotFound)
	}

	reply, meta, err := r.responder.Respond(ctx, chatID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to derive response: %w", err)
	}

	messages, err := r.loadMessages()
	if err != nil {
		return nil, err
	}

	if sender == "" {
		sender = domain.SenderUser
	}
	id := nextID(messages, func(m domain.Message) int64 { return m.ID })
	userMsg := domain.Message{
		ID:        id,
		ChatID:    chatID,
		Sender:    sender,
		Content:   content,
		CreatedAt: r.now(),
	}
	aiMsg := domain.Message{
		ID:        id + 1,
		ChatID:    chatID,
		Sender:    domain.SenderAI,
		Content:   reply,
		CreatedAt: r.now(),
		Meta:      meta,
	}

	// Both messages land in a single write; the pair is never split.
	if err := r.save(store.MessagesKey, append(messages, userMsg, aiMsg)); err != nil {
		return nil, err
	}

	chats[idx].UpdatedAt = r.now()
	if err := r.save(store.ChatsKey, chats); err != nil {
		return nil, err
	}

	return &domain.MessagePair{User: userMsg, AI: aiMsg}, nil
}

// GetUserChats implements domain.Repository.
func (r *Repository) GetUserChats(_ context.Context) ([]domain.Chat, error) {
	chats, err := r.loadChats()
	if err != nil {
		return nil, err
	}
	return byRecency(chats), nil
}

// GetChatMessages implements domain.Repository.
func (r *Repository) GetChatMessages(_ context.Context, chatID int64) ([]domain.Message, error) {
	messages, err := r.loadMessages()
	if err != nil {
		return nil, err
	}
	var out []domain.Message
	for _, m := range messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

// GetGroups implements domain.Repository.
func (r *Repository) GetGroups(_ context.Context) ([]domain.Group, error) {
	return r.loadGroups()
}

// GetGroup implements domain.Repository.
func (r *Repository) GetGroup(_ context.Context, groupID int64) (*domain.Group, error) {
	groups, err := r.loadGroups()
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].ID == groupID {
			return &groups[i], nil
		}
	}
	return nil, fmt.Errorf("group %d: %w", groupID, domain.ErrNotFound)
}

// GetGroupChats implements domain.Repository.
func (r *Repository) GetGroupChats(_ context.Context, groupID int64) ([]domain.Chat, error) {
	chats, err := r.loadChats()
	if err != nil {
		return nil, err
	}
	var out []domain.Chat
	for _, c := range chats {
		if c.GroupID != nil && *c.GroupID == groupID {
			out = append(out, c)
		}
	}
	return byRecency(out), nil
}

// DeleteChat implements domain.Repository.
func (r *Repository) DeleteChat(_ context.Context, chatID int64) error {
	chats, err := r.loadChats()
	if err != nil {
		return err
	}
	kept := chats[:0]
	found := false
	for _, c := range chats {
		if c.ID == chatID {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return fmt.Errorf("chat %d: %w", chatID, domain.ErrNotFound)
	}

	messages, err := r.loadMessages()
	if err != nil {
		return err
	}
	keptMsgs := messages[:0]
	for _, m := range messages {
		if m.ChatID != chatID {
			keptMsgs = append(keptMsgs, m)
		}
	}

	if err := r.save(store.ChatsKey, kept); err != nil {
		return err
	}
	return r.save(store.MessagesKey, keptMsgs)
}

// DeleteGroup implements domain.Repository. Member chats and their
// messages are removed in the same pass, leaving no orphans.
func (r *Repository) DeleteGroup(_ context.Context, groupID int64) error {
	groups, err := r.loadGroups()
	if err != nil {
		return err
	}
	keptGroups := groups[:0]
	found := false
	for _, g := range groups {
		if g.ID == groupID {
			found = true
			continue
		}
		keptGroups = append(keptGroups, g)
	}
	if !found {
		return fmt.Errorf("group %d: %w", groupID, domain.ErrNotFound)
	}

	chats, err := r.loadChats()
	if err != nil {
		return err
	}
	removed := make(map[int64]bool)
	keptChats := chats[:0]
	for _, c := range chats {
		if c.GroupID != nil && *c.GroupID == groupID {
			removed[c.ID] = true
			continue
		}
		keptChats = append(keptChats, c)
	}

	messages, err := r.loadMessages()
	if err != nil {
		return err
	}
	keptMsgs := messages[:0]
	for _, m := range messages {
		if removed[m.ChatID] {
			continue
		}
		keptMsgs = append(keptMsgs, m)
	}

	if err := r.save(store.GroupsKey, keptGroups); err != nil {
		return err
	}
	if err := r.save(store.ChatsKey, keptChats); err != nil {
		return err
	}
	return r.save(store.MessagesKey, keptMsgs)
}

// RenameChat implements domain.Repository.
func (r *Repository) RenameChat(_ context.Context, chatID int64, title string) (*domain.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty chat title", domain.ErrValidation)
	}

	chats, err := r.loadChats()
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].ID == chatID {
			chats[i].Title = title
			chats[i].UpdatedAt = r.now()
			if err := r.save(store.ChatsKey, chats); err != nil {
				return nil, err
			}
			return &chats[i], nil
		}
	}
	return nil, fmt.Errorf("chat %d: %w", chatID, domain.ErrNotFound)
}

// RenameGroup implements domain.Repository.
func (r *Repository) RenameGroup(_ context.Context, groupID int64, name string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty group name", domain.ErrValidation)
	}

	groups, err := r.loadGroups()
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].ID == groupID {
			groups[i].Name = name
			groups[i].UpdatedAt = r.now()
			if err := r.save(store.GroupsKey, groups); err != nil {
				return nil, err
			}
			return &groups[i], nil
		}
	}
	return nil, fmt.Errorf("group %d: %w", groupID, domain.ErrNotFound)
}
