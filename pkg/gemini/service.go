package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	eventdomain "mailpilot-backend/internal/event/domain"
)

type GeminiService struct {
	ApiKey string
}

func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{ApiKey: apiKey}
}

func (g *GeminiService) Name() string {
	return "gemini"
}

// proposalPayload is the JSON contract the model is instructed to follow.
type proposalPayload struct {
	IsEvent     bool     `json:"is_event"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Timezone    string   `json:"timezone"`
	Attendees   []string `json:"attendees"`
}

// ProposeEvent asks Gemini whether the conversation describes a concrete
// upcoming event. Returns (nil, nil) when the model declines.
func (g *GeminiService) ProposeEvent(ctx context.Context, req *eventdomain.ProposeRequest) (*eventdomain.EventProposal, error) {
	url := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent?key=" + g.ApiKey

	prompt := BuildPrompt(req)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]interface{}{
			"temperature":      0.2,
			"responseMimeType": "application/json",
		},
	}

	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini API error: %s", string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, err
	}

	text, ok := firstCandidateText(result)
	if !ok {
		return nil, fmt.Errorf("no proposal returned")
	}

	return ParseProposal(text, req)
}

// Conversation text sent to the model is capped at this many characters.
const promptBodyLimit = 8000

// BuildPrompt renders the event-detection instructions for one conversation.
func BuildPrompt(req *eventdomain.ProposeRequest) string {
	body := req.Body
	if runes := []rune(body); len(runes) > promptBodyLimit {
		body = string(runes[:promptBodyLimit])
	}
	var candidates strings.Builder
	for _, c := range req.Candidates {
		if c.Name != "" {
			fmt.Fprintf(&candidates, "- %s <%s>\n", c.Name, c.Email)
		} else {
			fmt.Fprintf(&candidates, "- %s\n", c.Email)
		}
	}
	if candidates.Len() == 0 {
		candidates.WriteString("(none)\n")
	}

	return fmt.Sprintf(`You are an assistant that reads email conversations and decides whether they describe a single concrete upcoming event (a meeting, call, appointment, meal, or similar) that should go on the user's calendar.

Current date and time: %s
User timezone: %s

Rules:
1. Respond with ONLY a JSON object, no other text.
2. If the conversation does not clearly describe one upcoming event with an identifiable date and time, respond with {"is_event": false}.
3. Newsletters, promotions, receipts, automated notifications and past events are never events.
4. "start" and "end" must be local wall-clock times formatted as YYYY-MM-DDTHH:MM:SS with no zone suffix. Omit "end" if the conversation does not state one.
5. "timezone" is the IANA zone the times are expressed in. Use the user timezone unless the conversation names another.
6. "attendees" may only contain email addresses from the participant list below.

JSON shape:
{"is_event": true, "title": "...", "description": "...", "start": "YYYY-MM-DDTHH:MM:SS", "end": "YYYY-MM-DDTHH:MM:SS", "timezone": "...", "attendees": ["..."]}

Participants:
%s
Subject: %s

Conversation:
%s`, req.Now.Format("2006-01-02 15:04:05 (Monday)"), req.Timezone, candidates.String(), req.Subject, body)
}

// ParseProposal turns the model's JSON reply into a proposal, tolerating
// markdown fences around the object. A missing start time is an abstention.
func ParseProposal(text string, req *eventdomain.ProposeRequest) (*eventdomain.EventProposal, error) {
	text = strings.TrimSpace(text)
	if start := strings.Index(text, "{"); start != -1 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	var payload proposalPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse proposal JSON: %w", err)
	}

	if !payload.IsEvent || payload.Title == "" || payload.Start == "" {
		return nil, nil
	}

	proposal := &eventdomain.EventProposal{
		Title:       payload.Title,
		Description: payload.Description,
		StartISO:    payload.Start,
		EndISO:      payload.End,
		Timezone:    payload.Timezone,
		Source: eventdomain.ProposalSource{
			ThreadID: req.ThreadID,
			Subject:  req.Subject,
		},
	}
	for _, email := range payload.Attendees {
		email = strings.TrimSpace(email)
		if email != "" {
			proposal.Attendees = append(proposal.Attendees, eventdomain.RecipientCandidate{Email: email})
		}
	}
	return proposal, nil
}

func firstCandidateText(result map[string]interface{}) (string, bool) {
	if c, ok := result["candidates"].([]interface{}); ok && len(c) > 0 {
		if cand, ok := c[0].(map[string]interface{}); ok {
			if content, ok := cand["content"].(map[string]interface{}); ok {
				if parts, ok := content["parts"].([]interface{}); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]interface{}); ok {
						if text, ok := part["text"].(string); ok {
							return text, true
						}
					}
				}
			}
		}
	}
	return "", false
}
