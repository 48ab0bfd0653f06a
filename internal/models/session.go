package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/playrec/internal/shared"
	"golang.org/x/oauth2"
)

// Session links a visitor cookie to the Spotify account that signed in from it.
type Session struct {
	id            string
	visitorID     string
	spotifyUserID string
	displayName   string
	accessToken   string
	refreshToken  string
	expiresAt     *time.Time
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

var _ Model = (*Session)(nil)

// NewSession creates an unsaved [Session] for visitorID carrying token.
func NewSession(visitorID, spotifyUserID, displayName string, token *oauth2.Token) *Session {
	now := time.Now().UTC()
	s := &Session{
		visitorID:     visitorID,
		spotifyUserID: spotifyUserID,
		displayName:   displayName,
		createdAt:     now,
		updatedAt:     now,
	}
	s.SetToken(token)
	return s
}

func (s *Session) ID() string            { return s.id }
func (s *Session) VisitorID() string     { return s.visitorID }
func (s *Session) SpotifyUserID() string { return s.spotifyUserID }
func (s *Session) DisplayName() string   { return s.displayName }
func (s *Session) AccessToken() string   { return s.accessToken }
func (s *Session) RefreshToken() string  { return s.refreshToken }
func (s *Session) ExpiresAt() *time.Time { return s.expiresAt }
func (s *Session) CreatedAt() time.Time  { return s.createdAt }
func (s *Session) UpdatedAt() time.Time  { return s.updatedAt }
func (s *Session) DeletedAt() *time.Time { return s.deletedAt }

func (s *Session) SetID(id string)            { s.id = id }
func (s *Session) SetCreatedAt(t time.Time)   { s.createdAt = t }
func (s *Session) SetUpdatedAt(t time.Time)   { s.updatedAt = t }
func (s *Session) SetDeletedAt(t *time.Time)  { s.deletedAt = t }
func (s *Session) SetDisplayName(name string) { s.displayName = name }
func (s *Session) SetExpiresAt(t *time.Time)  { s.expiresAt = t }
func (s *Session) SetTokens(access, refresh string) {
	s.accessToken = access
	s.refreshToken = refresh
}

// SetToken copies the access token, refresh token and expiry from token.
func (s *Session) SetToken(token *oauth2.Token) {
	if token == nil {
		return
	}
	s.accessToken = token.AccessToken
	s.refreshToken = token.RefreshToken
	if !token.Expiry.IsZero() {
		exp := token.Expiry.UTC()
		s.expiresAt = &exp
	}
}

// Token rebuilds the [oauth2.Token] stored on the session.
func (s *Session) Token() *oauth2.Token {
	t := &oauth2.Token{AccessToken: s.accessToken, RefreshToken: s.refreshToken, TokenType: "Bearer"}
	if s.expiresAt != nil {
		t.Expiry = *s.expiresAt
	}
	return t
}

// Active reports whether the session has not been signed out.
func (s *Session) Active() bool {
	return s.deletedAt == nil
}

// Validate checks the fields required to persist a session.
func (s *Session) Validate() error {
	if s.visitorID == "" {
		return fmt.Errorf("%w: visitor id is required", shared.ErrInvalidInput)
	}
	if s.accessToken == "" {
		return fmt.Errorf("%w: access token is required", shared.ErrInvalidInput)
	}
	return nil
}
