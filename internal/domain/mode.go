package domain

// Mode is a behavioral category attached to a chat, independent of storage
// identity. It only affects client-side filtering and prompt suggestions.
type Mode string

const (
	ModeMarketing Mode = "marketing"
	ModeTeaching  Mode = "teaching"
)

// DefaultMode applies to chats with no recorded mode association.
const DefaultMode = ModeTeaching

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeMarketing || m == ModeTeaching
}
