package calendar

import (
	"context"
	"fmt"
	"log"
	"time"

	eventdomain "mailpilot-backend/internal/event/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc = eventdomain.TokenUpdateFunc

// Service queries and mutates the user's primary Google Calendar.
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
			log.Printf("[Calendar] Failed to persist refreshed token: %v", err)
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

func (s *Service) getCalendarService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*calendar.Service, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
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

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %v", err)
	}

	return srv, nil
}

// Timezone returns the user's calendar timezone setting, "UTC" on failure.
func (s *Service) Timezone(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (string, error) {
	srv, err := s.getCalendarService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return "UTC", err
	}

	setting, err := srv.Settings.Get("timezone").Context(ctx).Do()
	if err != nil || setting.Value == "" {
		return "UTC", nil
	}
	return setting.Value, nil
}

// ListEvents searches the primary calendar between timeMin and timeMax,
// optionally filtered by a free-text query.
func (s *Service) ListEvents(ctx context.Context, accessToken, refreshToken string, timeMin, timeMax time.Time, query string, max int64, onTokenRefresh TokenUpdateFunc) ([]*eventdomain.CalendarEntry, error) {
	srv, err := s.getCalendarService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	call := srv.Events.List("primary").
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		MaxResults(max).
		Context(ctx)
	if query != "" {
		call = call.Q(query)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list events: %v", err)
	}

	entries := make([]*eventdomain.CalendarEntry, 0, len(resp.Items))
	for _, item := range resp.Items {
		entries = append(entries, convertEvent(item))
	}
	return entries, nil
}

// InsertEvent creates an entry on the primary calendar and notifies
// attendees.
func (s *Service) InsertEvent(ctx context.Context, accessToken, refreshToken string, req *eventdomain.InsertEventRequest, onTokenRefresh TokenUpdateFunc) (*eventdomain.CreatedEntryRef, error) {
	srv, err := s.getCalendarService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary:     req.Title,
		Description: req.Description,
		Start: &calendar.EventDateTime{
			DateTime: req.Start.Format(time.RFC3339),
			TimeZone: req.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: req.End.Format(time.RFC3339),
			TimeZone: req.Timezone,
		},
		Source: &calendar.EventSource{
			Title: req.SourceTitle,
			Url:   req.SourceURL,
		},
	}
	for _, a := range req.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{
			Email:       a.Email,
			DisplayName: a.Name,
		})
	}

	created, err := srv.Events.Insert("primary", event).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to insert event: %v", err)
	}

	return &eventdomain.CreatedEntryRef{
		EventID:  created.Id,
		HTMLLink: created.HtmlLink,
	}, nil
}

func convertEvent(item *calendar.Event) *eventdomain.CalendarEntry {
	entry := &eventdomain.CalendarEntry{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		HTMLLink:    item.HtmlLink,
	}
	if item.Source != nil {
		entry.SourceURL = item.Source.Url
	}
	if item.Created != "" {
		if t, err := time.Parse(time.RFC3339, item.Created); err == nil {
			entry.Created = t
		}
	}
	entry.Start = parseEventTime(item.Start)
	entry.End = parseEventTime(item.End)
	return entry
}

// parseEventTime handles both timed and all-day events.
func parseEventTime(edt *calendar.EventDateTime) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}
