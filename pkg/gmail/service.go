package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	eventdomain "mailpilot-backend/internal/event/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc = eventdomain.TokenUpdateFunc

// Service reads conversations from Gmail on behalf of a user.
type Service struct {
	clientID     string
	clientSecret string
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			log.Printf("[Gmail] Failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// getGmailService creates a Gmail client with the user's tokens, wrapping the
// token source so refreshed credentials reach the callback.
func (s *Service) getGmailService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if refreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	wrappedSource := &notifyTokenSource{
		src:      config.TokenSource(ctx, token),
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}

	return srv, nil
}

// ListRecentThreads returns refs for threads matching the mailbox query.
func (s *Service) ListRecentThreads(ctx context.Context, accessToken, refreshToken, query string, max int64, onTokenRefresh TokenUpdateFunc) ([]eventdomain.ThreadRef, error) {
	srv, err := s.getGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Users.Threads.List("me").Q(query).MaxResults(max).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list threads: %v", err)
	}

	refs := make([]eventdomain.ThreadRef, 0, len(resp.Threads))
	for _, t := range resp.Threads {
		refs = append(refs, eventdomain.ThreadRef{ID: t.Id})
	}
	return refs, nil
}

// GetThread fetches a full conversation with decoded message bodies.
func (s *Service) GetThread(ctx context.Context, accessToken, refreshToken, threadID string, onTokenRefresh TokenUpdateFunc) (*eventdomain.Conversation, error) {
	srv, err := s.getGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	thread, err := srv.Users.Threads.Get("me", threadID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to get thread %s: %v", threadID, err)
	}

	conv := &eventdomain.Conversation{ID: thread.Id}
	for _, msg := range thread.Messages {
		conv.Messages = append(conv.Messages, convertMessage(msg))
	}
	return conv, nil
}

func convertMessage(msg *gmail.Message) *eventdomain.Message {
	out := &eventdomain.Message{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		InternalDate: time.UnixMilli(msg.InternalDate),
		Snippet:      msg.Snippet,
	}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			out.Headers = append(out.Headers, eventdomain.Header{Name: h.Name, Value: h.Value})
		}
		out.Payload = convertPart(msg.Payload)
	}
	return out
}

// convertPart maps the Gmail MIME tree into the domain tree, decoding each
// body from base64url on the way.
func convertPart(part *gmail.MessagePart) *eventdomain.MessagePart {
	out := &eventdomain.MessagePart{MimeType: part.MimeType}
	if part.Body != nil && part.Body.Data != "" {
		if decoded, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
			out.Body = string(decoded)
		} else if decoded, err := base64.RawURLEncoding.DecodeString(part.Body.Data); err == nil {
			out.Body = string(decoded)
		}
	}
	for _, child := range part.Parts {
		out.Parts = append(out.Parts, convertPart(child))
	}
	return out
}
