// Package session drives the act of sending a message within a chat. It
// owns the in-memory transcript, the per-chat send lock, and the
// first-message title takeover, delegating all persistence to the
// repository it was built with.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/animaweaver/chatstore/internal/domain"
	"github.com/animaweaver/chatstore/internal/store"
)

// titleLimit is how many characters of the first message become the
// chat title before truncation kicks in.
const titleLimit = 50

// Entry is one transcript bubble. The ID is client-side only so the
// optimistic user bubble can be addressed before persistence assigns a
// message id.
type Entry struct {
	ID      string               `json:"id"`
	Sender  domain.Sender        `json:"sender"`
	Content string               `json:"content"`
	SentAt  time.Time            `json:"sentAt"`
	Meta    *domain.ResponseMeta `json:"meta,omitempty"`
}

// Source is one deduplicated provenance row for the sources panel.
type Source struct {
	Source      string  `json:"source"`
	WhereToFind string  `json:"where_to_find"`
	Timestamps  *string `json:"timestamps,omitempty"`
}

// SendRequest carries one send call. ChatID and GroupID are optional;
// when absent the controller falls back to the active ids and creates
// what is still missing.
type SendRequest struct {
	Text    string
	ChatID  *int64
	GroupID *int64
}

// SendResult reports what a successful send produced.
type SendResult struct {
	ChatID  int64
	GroupID *int64
	Pair    domain.MessagePair
	Renamed bool
}

type sessionState struct {
	ChatID  *int64 `json:"chatId"`
	GroupID *int64 `json:"groupId"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithSendTimeout bounds each send round-trip. Zero disables the bound.
func WithSendTimeout(d time.Duration) Option {
	return func(c *Controller) { c.sendTimeout = d }
}

// WithSessionStore persists the active chat/group pointers so a restart
// reopens where the user left off.
func WithSessionStore(kv store.KV) Option {
	return func(c *Controller) { c.kv = kv }
}

// Controller is safe for concurrent use; the per-chat lock serializes
// sends within a chat while sends to different chats proceed
// independently.
type Controller struct {
	repo        domain.Repository
	log         zerolog.Logger
	kv          store.KV
	sendTimeout time.Duration
	now         func() time.Time

	mu            sync.Mutex
	inflight      map[int64]bool
	activeChatID  *int64
	activeGroupID *int64
	transcript    []Entry
}

func NewController(repo domain.Repository, log zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		repo:     repo,
		log:      log,
		inflight: make(map[int64]bool),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.kv != nil {
		var st sessionState
		c.kv.Load(store.SessionKey, &st)
		c.activeChatID = st.ChatID
		c.activeGroupID = st.GroupID
	}
	return c
}

// ActiveChatID returns the currently open chat id, if any.
func (c *Controller) ActiveChatID() *int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeChatID
}

// Transcript returns a copy of the current in-memory transcript.
func (c *Controller) Transcript() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Send runs the full send flow: validate, resolve group and chat
// (creating either when absent), lock the chat, append the user bubble,
// take over the title on the first message, persist the pair, and
// append the AI reply. The lock is released on every path.
func (c *Controller) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", domain.ErrValidation)
	}

	groupID, err := c.resolveGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	chat, err := c.resolveChat(ctx, req.ChatID, groupID)
	if err != nil {
		return nil, err
	}

	if !c.tryAcquire(chat.ID) {
		return nil, domain.ErrSendInFlight
	}
	defer c.release(chat.ID)

	// The transcript always belongs to the chat being sent into. A send
	// addressed at another chat switches to it first.
	c.mu.Lock()
	active := c.activeChatID
	c.mu.Unlock()
	if active == nil || *active != chat.ID {
		if _, err := c.OpenChat(ctx, chat.ID); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	wasEmpty := len(c.transcript) == 0
	c.transcript = append(c.transcript, Entry{
		ID:      uuid.NewString(),
		Sender:  domain.SenderUser,
		Content: req.Text,
		SentAt:  c.clock(),
	})
	c.mu.Unlock()

	renamed := false
	if wasEmpty && chat.Title == domain.DefaultChatTitle {
		title := truncateTitle(req.Text)
		if _, err := c.repo.RenameChat(ctx, chat.ID, title); err != nil {
			// A failed title takeover should not abort the send.
			c.log.Warn().Err(err).Int64("chat_id", chat.ID).Msg("title takeover failed")
		} else {
			renamed = true
		}
	}

	sendCtx := ctx
	if c.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, c.sendTimeout)
		defer cancel()
	}

	pair, err := c.repo.AddMessage(sendCtx, chat.ID, domain.SenderUser, text)
	if err != nil {
		// The optimistic user bubble stays; only the AI side is absent.
		return nil, err
	}

	c.mu.Lock()
	c.transcript = append(c.transcript, Entry{
		ID:      uuid.NewString(),
		Sender:  pair.AI.Sender,
		Content: pair.AI.Content,
		SentAt:  pair.AI.CreatedAt,
		Meta:    pair.AI.Meta,
	})
	c.mu.Unlock()

	return &SendResult{ChatID: chat.ID, GroupID: groupID, Pair: *pair, Renamed: renamed}, nil
}

// OpenChat reloads the chat's messages from the repository, replacing
// (never merging with) the in-memory transcript.
func (c *Controller) OpenChat(ctx context.Context, chatID int64) ([]Entry, error) {
	msgs, err := c.repo.GetChatMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, Entry{
			ID:      uuid.NewString(),
			Sender:  m.Sender,
			Content: m.Content,
			SentAt:  m.CreatedAt,
			Meta:    m.Meta,
		})
	}

	c.mu.Lock()
	c.transcript = entries
	c.activeChatID = &chatID
	c.persistSessionLocked()
	c.mu.Unlock()

	return c.Transcript(), nil
}

// CloseChat clears the transcript and the active chat pointer.
func (c *Controller) CloseChat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = nil
	c.activeChatID = nil
	c.persistSessionLocked()
}

// Sources collects provenance rows from AI entries, deduplicated on the
// (source, where_to_find, timestamps) triple with first occurrence kept.
func (c *Controller) Sources() []Source {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool)
	var out []Source
	for _, e := range c.transcript {
		if e.Sender != domain.SenderAI || e.Meta == nil {
			continue
		}
		m := e.Meta
		src := strVal(m.Source)
		where := strVal(m.WhereToFind)
		if src == "" && where == "" {
			continue
		}
		key := src + "|" + where + "|" + strVal(m.Timestamps)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Source{Source: src, WhereToFind: where, Timestamps: m.Timestamps})
	}
	return out
}

// LatestTools returns the tools list of the most recent AI entry that
// carries one.
func (c *Controller) LatestTools() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.transcript) - 1; i >= 0; i-- {
		e := c.transcript[i]
		if e.Sender == domain.SenderAI && e.Meta != nil && len(e.Meta.Tools) > 0 {
			return e.Meta.Tools
		}
	}
	return nil
}

// resolveGroup returns the group to send under, creating a date-named
// one when neither the request nor the session supplies an id.
func (c *Controller) resolveGroup(ctx context.Context, groupID *int64) (*int64, error) {
	if groupID != nil {
		return groupID, nil
	}
	c.mu.Lock()
	active := c.activeGroupID
	c.mu.Unlock()
	if active != nil {
		return active, nil
	}

	name := fmt.Sprintf("My Conversation %s", c.clock().Format("02-01-2006"))
	group, err := c.repo.CreateGroup(ctx, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.activeGroupID = &group.ID
	c.persistSessionLocked()
	c.mu.Unlock()
	return &group.ID, nil
}

// resolveChat returns the chat to send into, creating one under groupID
// when neither the request nor the session supplies an id.
func (c *Controller) resolveChat(ctx context.Context, chatID *int64, groupID *int64) (*domain.Chat, error) {
	if chatID == nil {
		c.mu.Lock()
		chatID = c.activeChatID
		c.mu.Unlock()
	}
	if chatID != nil {
		chats, err := c.repo.GetUserChats(ctx)
		if err != nil {
			return nil, err
		}
		for i := range chats {
			if chats[i].ID == *chatID {
				return &chats[i], nil
			}
		}
		return nil, fmt.Errorf("chat %d: %w", *chatID, domain.ErrNotFound)
	}

	chat, err := c.repo.CreateChat(ctx, domain.DefaultChatTitle, groupID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.activeChatID = &chat.ID
	c.transcript = nil
	c.persistSessionLocked()
	c.mu.Unlock()
	return chat, nil
}

func (c *Controller) tryAcquire(chatID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[chatID] {
		return false
	}
	c.inflight[chatID] = true
	return true
}

func (c *Controller) release(chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, chatID)
}

func (c *Controller) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Controller) persistSessionLocked() {
	if c.kv == nil {
		return
	}
	st := sessionState{ChatID: c.activeChatID, GroupID: c.activeGroupID}
	if err := c.kv.Save(store.SessionKey, st); err != nil {
		c.log.Warn().Err(err).Msg("persist session pointers failed")
	}
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func truncateTitle(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= titleLimit {
		return string(runes)
	}
	return string(runes[:titleLimit]) + "..."
}
