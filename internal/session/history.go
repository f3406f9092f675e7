package session

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History is the append-only conversation log. The system message is set
// exactly once at construction and stays at index 0; turns are only ever
// appended after it.
type History struct {
	mu       sync.RWMutex
	messages []Message
	started  time.Time
}

// NewHistory creates a history seeded with the given system instruction.
func NewHistory(systemPrompt string) *History {
	return &History{
		messages: []Message{{Role: RoleSystem, Content: systemPrompt}},
		started:  time.Now(),
	}
}

// AppendUser appends a user turn.
func (h *History) AppendUser(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, Message{Role: RoleUser, Content: text})
}

// AppendAssistant appends an assistant turn.
func (h *History) AppendAssistant(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, Message{Role: RoleAssistant, Content: text})
}

// Snapshot returns a copy of the history, optionally extended with
// ephemeral messages that are never written back. This is how a routine
// request carries full prior context without the synthesized instruction
// ever appearing in the stored conversation.
func (h *History) Snapshot(extra ...Message) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Message, 0, len(h.messages)+len(extra))
	out = append(out, h.messages...)
	out = append(out, extra...)
	return out
}

// Messages returns a copy of the stored history.
func (h *History) Messages() []Message {
	return h.Snapshot()
}

// Len returns the number of stored messages, including the system message.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Last returns the most recent message.
func (h *History) Last() Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.messages[len(h.messages)-1]
}

// ExportMarkdown renders the conversation as a Markdown transcript.
// The system instruction is omitted; only user and assistant turns appear.
func (h *History) ExportMarkdown() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Conversation %s\n\n", h.started.Format("2006-01-02 15:04:05")))

	for _, m := range h.messages {
		switch m.Role {
		case RoleUser:
			sb.WriteString("## User\n\n")
		case RoleAssistant:
			sb.WriteString("## Assistant\n\n")
		default:
			continue
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
