package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/desertthunder/playrec/internal/server"
	"github.com/desertthunder/playrec/internal/services"
	"github.com/desertthunder/playrec/internal/shared"
	"github.com/desertthunder/playrec/internal/viewstate"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// oauthTimeout bounds how long the local callback server waits for the browser.
var oauthTimeout = 2 * time.Minute

// AuthLogin performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	token, err := r.doOAuth(ctx, r.spotify, "authorization")
	if err != nil {
		return err
	}

	if err := r.saveToken(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n", r.configPath)

	if user, err := r.spotify.ProfileWithToken(ctx, token); err == nil {
		r.writePlain("Signed in as %s\n", user.Label())
	} else {
		r.logger.Warn("failed to fetch profile", "error", err)
	}
	return nil
}

// AuthLogout removes the saved token from the config file.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.config.Credentials.Spotify.Token() == nil {
		return r.writePlain("Already signed out\n")
	}

	r.config.Credentials.Spotify.Clear()
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.logger.Info("spotify token removed", "config", r.configPath)
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports whether a token is saved and, with --verify, whether Spotify still accepts it.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	status := newConfigAuthenticator(r).Status()
	token := r.config.Credentials.Spotify.Token()

	r.writePlain("Status: %s\n", status)
	if token != nil && !token.Expiry.IsZero() {
		r.writePlain("Expires: %s\n", token.Expiry.Local().Format(time.RFC1123))
	}

	if status != viewstate.SignedIn || !cmd.Bool("verify") {
		return nil
	}
	if r.spotify == nil {
		return fmt.Errorf("%w: cannot verify without Spotify credentials", shared.ErrMissingCredentials)
	}

	user, err := r.spotify.ProfileWithToken(ctx, token)
	if errors.Is(err, shared.ErrTokenExpired) {
		return r.writePlain("Token rejected by Spotify, run `playrec auth login`\n")
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writePlain("Signed in as %s\n", user.Label())
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, oauthSrv services.OAuthService, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := callbackAddr(oauthSrv.GetOAuthConfig().RedirectURL, r.config.Server)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", prefix, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.logger.Info("authorization url", "url", authURL)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", oauthTimeout)

	timeout := time.NewTimer(oauthTimeout)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, oauthTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

// callbackAddr is the listen address for the CLI callback server: the redirect URI's host, or the configured server.
func callbackAddr(redirectURI string, fallback shared.ServerConfig) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Host == "" {
		return fallback.Addr()
	}
	if u.Port() == "" {
		return u.Hostname() + ":80"
	}
	return u.Host
}

// configAuthenticator is the [services.Authenticator] for terminal front ends: the token lives in the config file.
type configAuthenticator struct {
	mu sync.Mutex
	r  *Runner
}

var _ services.Authenticator = (*configAuthenticator)(nil)

func newConfigAuthenticator(r *Runner) *configAuthenticator {
	return &configAuthenticator{r: r}
}

// Status is SignedIn while a token is saved that has not expired or can be refreshed.
func (a *configAuthenticator) Status() viewstate.SessionStatus {
	a.mu.Lock()
	defer a.mu.Unlock()

	token := a.r.config.Credentials.Spotify.Token()
	switch {
	case token == nil:
		return viewstate.SignedOut
	case token.Valid(), token.RefreshToken != "":
		return viewstate.SignedIn
	default:
		return viewstate.SignedOut
	}
}

func (a *configAuthenticator) SignIn(ctx context.Context) error {
	if a.r.spotify == nil {
		return fmt.Errorf("%w: Spotify credentials are not configured", shared.ErrMissingCredentials)
	}

	token, err := a.r.doOAuth(ctx, a.r.spotify, "authorization")
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.r.saveToken(token)
}

func (a *configAuthenticator) SignOut(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.r.config.Credentials.Spotify.Clear()
	if err := shared.SaveConfig(a.r.configPath, a.r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// authenticator picks the config-backed authenticator when Spotify is configured and a local toggle otherwise.
func (r *Runner) authenticator() services.Authenticator {
	if r.spotify == nil {
		return services.NewLocalAuthenticator()
	}
	return newConfigAuthenticator(r)
}
