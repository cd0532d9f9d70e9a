package domain

import (
	"strings"
	"time"
)

// ThreadRef is a lightweight handle to a mailbox conversation, as returned by
// the provider's list call.
type ThreadRef struct {
	ID string `json:"id"`
}

// Header is a single message header, name matched case-insensitively.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MessagePart is one node of a message's MIME tree. Leaves carry a decoded
// textual body; branches carry child parts. Payload decoding happens at the
// provider boundary, so Body is always plain bytes-as-string here.
type MessagePart struct {
	MimeType string         `json:"mime_type"`
	Body     string         `json:"body,omitempty"`
	Parts    []*MessagePart `json:"parts,omitempty"`
}

// Message is one email inside a conversation.
type Message struct {
	ID           string       `json:"id"`
	ThreadID     string       `json:"thread_id"`
	InternalDate time.Time    `json:"internal_date"`
	Headers      []Header     `json:"headers"`
	Payload      *MessagePart `json:"payload,omitempty"`
	Snippet      string       `json:"snippet,omitempty"`
}

// Conversation is an email thread: an ordered set of messages sharing a
// thread identifier. Owned by the mailbox provider, read-only here.
type Conversation struct {
	ID       string     `json:"id"`
	Messages []*Message `json:"messages"`
}

// Header returns the value of the named header, or "" when absent.
func (m *Message) Header(name string) string {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Latest returns the message with the greatest timestamp, the representative
// message for processing decisions. Nil for an empty conversation.
func (c *Conversation) Latest() *Message {
	var latest *Message
	for _, m := range c.Messages {
		if latest == nil || m.InternalDate.After(latest.InternalDate) {
			latest = m
		}
	}
	return latest
}
