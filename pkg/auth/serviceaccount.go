package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarScopes lets the service account read and write events on calendars shared with it.
var CalendarScopes = []string{calendar.CalendarScope}

// TokenSourceFromFile builds a reusable token source from a service-account key file.
func TokenSourceFromFile(ctx context.Context, keyFile string, scopes ...string) (oauth2.TokenSource, error) {
	b, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key %s: %w", keyFile, err)
	}
	return TokenSourceFromJSON(ctx, b, scopes...)
}

// TokenSourceFromJSON is TokenSourceFromFile for key material already in memory.
func TokenSourceFromJSON(ctx context.Context, key []byte, scopes ...string) (oauth2.TokenSource, error) {
	conf, err := google.JWTConfigFromJSON(key, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}
	return oauth2.ReuseTokenSource(nil, conf.TokenSource(ctx)), nil
}

// GetClient returns an *http.Client that attaches and refreshes service-account tokens.
func GetClient(ctx context.Context, keyFile string, scopes ...string) (*http.Client, error) {
	ts, err := TokenSourceFromFile(ctx, keyFile, scopes...)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

// GetCalendarService creates an authenticated Google Calendar service.
func GetCalendarService(ctx context.Context, keyFile string) (*calendar.Service, error) {
	client, err := GetClient(ctx, keyFile, CalendarScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client for Calendar API: %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google Calendar service: %w", err)
	}
	return srv, nil
}
