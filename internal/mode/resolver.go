// Package mode keeps the chat→mode side table and the prebuilt prompt
// catalog. The mapping is pure client-side categorization: it never
// affects repository behavior.
package mode

import (
	"fmt"
	"sort"
	"sync"

	"github.com/animaweaver/chatstore/internal/domain"
	"github.com/animaweaver/chatstore/internal/store"
)

// Prompt is one entry of the static quick-start catalog.
type Prompt struct {
	ID    string      `json:"id"`
	Mode  domain.Mode `json:"mode"`
	Label string      `json:"label"`
	Text  string      `json:"text"`
}

var catalog = []Prompt{
	{
		ID:    "m1",
		Mode:  domain.ModeMarketing,
		Label: "Launch email",
		Text: "Draft a launch announcement email for our next cohort.\n" +
			"Make it clear, punchy, and aligned with our brand voice.",
	},
	{
		ID:    "m2",
		Mode:  domain.ModeMarketing,
		Label: "Sales page outline",
		Text: "Give me a sales page outline for this offer.\n" +
			"Highlight promise, proof, and next steps.",
	},
	{
		ID:    "t1",
		Mode:  domain.ModeTeaching,
		Label: "Lesson plan",
		Text: "Help me design a 60-minute live session.\n" +
			"Include check-ins, exercises, and debrief.",
	},
	{
		ID:    "t2",
		Mode:  domain.ModeTeaching,
		Label: "Reflective prompt",
		Text: "Suggest 3 reflective questions for learners.\n" +
			"Keep them concrete and actionable.",
	},
}

// Resolver persists mode associations under their own storage key and
// answers mode lookups with a teaching default.
type Resolver struct {
	kv store.KV

	mu    sync.RWMutex
	modes map[int64]domain.Mode
}

// NewResolver loads the persisted side table from kv.
func NewResolver(kv store.KV) *Resolver {
	modes := make(map[int64]domain.Mode)
	kv.Load(store.ModesKey, &modes)
	return &Resolver{kv: kv, modes: modes}
}

// Resolve returns the chat's mode, defaulting to teaching when no
// association was ever recorded.
func (r *Resolver) Resolve(chatID int64) domain.Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.modes[chatID]; ok && m.Valid() {
		return m
	}
	return domain.DefaultMode
}

// Assign records the chat's mode and persists the table.
func (r *Resolver) Assign(chatID int64, m domain.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: unknown mode %q", domain.ErrValidation, m)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes[chatID] = m
	return r.persistLocked()
}

// Forget drops the association for a deleted chat.
func (r *Resolver) Forget(chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modes[chatID]; !ok {
		return nil
	}
	delete(r.modes, chatID)
	return r.persistLocked()
}

func (r *Resolver) persistLocked() error {
	if err := r.kv.Save(store.ModesKey, r.modes); err != nil {
		return &domain.StorageError{Op: "save chat modes", Err: err}
	}
	return nil
}

// Prompts returns the subset of the prebuilt catalog matching m.
func (r *Resolver) Prompts(m domain.Mode) []Prompt {
	var out []Prompt
	for _, p := range catalog {
		if p.Mode == m {
			out = append(out, p)
		}
	}
	return out
}

// StartTitle is the placeholder title for a fresh chat of the given mode.
func StartTitle(m domain.Mode) string {
	if m == domain.ModeMarketing {
		return "New Marketing Chat"
	}
	return "New Teaching Chat"
}

// Partition splits chats into marketing and teaching lists for the
// sidebar tabs, each most recently updated first.
func (r *Resolver) Partition(chats []domain.Chat) (marketing, teaching []domain.Chat) {
	for _, c := range chats {
		if r.Resolve(c.ID) == domain.ModeMarketing {
			marketing = append(marketing, c)
		} else {
			teaching = append(teaching, c)
		}
	}
	recent := func(list []domain.Chat) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		})
	}
	recent(marketing)
	recent(teaching)
	return marketing, teaching
}
