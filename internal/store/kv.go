// Package store provides the local persistence adapter: flat collections
// serialized as JSON under namespaced string keys.
package store

// Collection keys. The offline_* names are the wire-compatible keys the
// browser client used; keeping them lets an exported localStorage dump be
// imported as-is.
const (
	ChatsKey    = "offline_chats"
	MessagesKey = "offline_chat_messages"
	GroupsKey   = "offline_chat_groups"
	ModesKey    = "anima_chat_modes"
	SessionKey  = "anima_chat_session"
)

// KV is the load/save contract collections are stored behind.
//
// Load is fail-soft: a missing or undecodable value leaves the
// destination untouched and returns nil, so callers always read an empty
// collection rather than an error. This is deliberate; only genuine
// adapter failures (e.g. a Save that cannot be written) surface as
// errors.
type KV interface {
	Load(key string, v any) error
	Save(key string, v any) error
	Close() error
}
