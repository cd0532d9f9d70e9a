package usecase

import (
	"log"
	"strings"

	eventdomain "mailpilot-backend/internal/event/domain"

	"github.com/jaytaylor/html2text"
)

// ContentExtractor turns a message's MIME tree into plain text for the
// reasoner. Plain-text parts win over HTML parts regardless of nesting depth.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// ExtractText returns the best available textual body of the message:
// the first text/plain leaf anywhere in the tree, else the first text/html
// leaf converted to text, else the provider snippet, else "".
func (e *ContentExtractor) ExtractText(msg *eventdomain.Message) string {
	if msg == nil {
		return ""
	}

	if plain := findPart(msg.Payload, "text/plain"); plain != "" {
		return plain
	}

	if html := findPart(msg.Payload, "text/html"); html != "" {
		text, err := html2text.FromString(html, html2text.Options{TextOnly: true})
		if err != nil {
			log.Printf("[Extractor] HTML conversion failed for message %s: %v", msg.ID, err)
			return msg.Snippet
		}
		return text
	}

	return msg.Snippet
}

// findPart walks the part tree depth-first, children in order, and returns
// the body of the first non-empty leaf with the wanted MIME type.
func findPart(part *eventdomain.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if strings.HasPrefix(part.MimeType, mimeType) && part.Body != "" {
		return part.Body
	}
	for _, child := range part.Parts {
		if found := findPart(child, mimeType); found != "" {
			return found
		}
	}
	return ""
}
