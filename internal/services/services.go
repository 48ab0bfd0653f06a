// package services defines the collaborators the recommender calls into over HTTP
//
// Recommendation proxy (FastAPI), Spotify (OAuth2)
package services

import (
	"context"

	"github.com/desertthunder/playrec/internal/viewstate"
	"golang.org/x/oauth2"
)

// OAuthService is an OAuth2 authorization code provider that can also identify the signed-in user.
type OAuthService interface {
	// GetAuthURL returns the consent page URL carrying state.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying [oauth2.Config].
	GetOAuthConfig() *oauth2.Config

	// Exchange trades an authorization code for a token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// ProfileWithToken fetches the profile of the user that token belongs to.
	ProfileWithToken(ctx context.Context, token *oauth2.Token) (*SpotifyUser, error)

	// Name returns the provider name (e.g., "Spotify")
	Name() string
}

// Authenticator is the sign-in handle used by front ends that can drive the flow themselves (TUI, CLI).
type Authenticator interface {
	viewstate.Session

	// SignIn starts and completes the provider flow.
	SignIn(ctx context.Context) error

	// SignOut discards the current credentials.
	SignOut(ctx context.Context) error
}
