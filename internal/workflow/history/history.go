// Package history holds the append-only message log of a single agent run.
package history

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Cyclone1070/reactagent/internal/provider"
)

// ErrOutOfRange is returned for a sequence id that was never assigned.
var ErrOutOfRange = errors.New("message id out of range")

// OutOfRangeError carries the offending id.
type OutOfRangeError struct {
	ID  int
	Len int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("message id %d out of range [0, %d)", e.ID, e.Len)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// Message is one stored turn. SequenceID equals its position.
type Message struct {
	Role       provider.Role
	Content    string
	Timestamp  time.Time
	SequenceID int
}

// Store is an append-only, in-memory message list. It is not safe for
// concurrent use; a run owns its store exclusively.
type Store struct {
	messages []Message
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Append adds a message and returns its sequence id.
func (s *Store) Append(role provider.Role, content string) int {
	id := len(s.messages)
	s.messages = append(s.messages, Message{
		Role:       role,
		Content:    content,
		Timestamp:  s.now(),
		SequenceID: id,
	})
	return id
}

// Update replaces the content of an existing message in place.
func (s *Store) Update(id int, content string) error {
	if id < 0 || id >= len(s.messages) {
		return &OutOfRangeError{ID: id, Len: len(s.messages)}
	}
	s.messages[id].Content = content
	s.messages[id].Timestamp = s.now()
	return nil
}

// Get returns the message with the given id.
func (s *Store) Get(id int) (Message, error) {
	if id < 0 || id >= len(s.messages) {
		return Message{}, &OutOfRangeError{ID: id, Len: len(s.messages)}
	}
	return s.messages[id], nil
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	return len(s.messages)
}

// Messages returns a copy of all messages in order.
func (s *Store) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Render produces the provider view of the log. System messages take their
// content from renderSystem, which is called on every render so the system
// prompt always reflects the current tool set. A nil renderSystem keeps the
// stored content.
func (s *Store) Render(renderSystem func(stored string) string) []provider.Message {
	out := make([]provider.Message, 0, len(s.messages))
	for _, m := range s.messages {
		content := m.Content
		if m.Role == provider.RoleSystem && renderSystem != nil {
			content = renderSystem(m.Content)
		}
		out = append(out, provider.Message{Role: m.Role, Content: content})
	}
	return out
}

// Transcript renders every message with a header line for debugging.
func (s *Store) Transcript() string {
	var sb strings.Builder
	for _, m := range s.messages {
		fmt.Fprintf(&sb, "|MESSAGE(role=%q, id=%d)|\n%s\n", m.Role, m.SequenceID, m.Content)
	}
	return sb.String()
}
