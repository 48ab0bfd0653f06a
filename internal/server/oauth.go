package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// StateCookie holds the OAuth state issued by a web sign-in until the provider redirects back.
const StateCookie = "playrec_oauth_state"

// Exchanger trades an authorization code for a token. services.OAuthService satisfies it.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles a single OAuth2 callback for the CLI's authorization code flow.
// Implements the Handler interface for registration with a Router.
type OAuthHandler struct {
	exchanger   Exchanger
	state       string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a new OAuth handler with the given exchanger and state token.
// The state token should be cryptographically random for CSRF protection.
func NewOAuthHandler(exchanger Exchanger, state string) *OAuthHandler {
	return &OAuthHandler{
		exchanger:  exchanger,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the OAuth callback request.
//
// Validates state parameter, exchanges authorization code for tokens, and sends the result through the result channel.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	code, err := callbackCode(r, h.state)
	if err != nil {
		h.Send(OAuthResult{err: err})
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.exchanger.Exchange(r.Context(), code)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = successPage.Execute(w, "You can close this window and return to the terminal.")
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

// TokenFunc receives the token obtained by a web callback. It may write cookies but not the body.
type TokenFunc func(w http.ResponseWriter, r *http.Request, token *oauth2.Token) error

// CallbackHandler serves the web app's OAuth callback for any number of visitors.
//
// The expected state is read from [StateCookie], which [BeginSignIn] sets before redirecting to the provider.
// On success the token is handed to onToken and the visitor is redirected to redirectTo.
type CallbackHandler struct {
	exchanger  Exchanger
	onToken    TokenFunc
	redirectTo string
	logger     *log.Logger
}

// NewCallbackHandler creates a [CallbackHandler].
func NewCallbackHandler(exchanger Exchanger, onToken TokenFunc, redirectTo string, logger *log.Logger) *CallbackHandler {
	if redirectTo == "" {
		redirectTo = "/"
	}
	return &CallbackHandler{exchanger: exchanger, onToken: onToken, redirectTo: redirectTo, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(StateCookie)
	if err != nil || cookie.Value == "" {
		h.logger.Warn("oauth callback without state cookie")
		http.Error(w, "Missing sign-in state", http.StatusBadRequest)
		return
	}
	clearStateCookie(w)

	code, err := callbackCode(r, cookie.Value)
	if err != nil {
		h.logger.Warn("oauth callback rejected", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.exchanger.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("token exchange failed", "error", err)
		http.Error(w, "Token exchange failed", http.StatusBadGateway)
		return
	}

	if err := h.onToken(w, r, token); err != nil {
		h.logger.Error("failed to store session", "error", err)
		http.Error(w, "Failed to complete sign-in", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.redirectTo, http.StatusSeeOther)
}

// BeginSignIn stores state in [StateCookie] and redirects to authURL.
func BeginSignIn(w http.ResponseWriter, r *http.Request, state, authURL string) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: StateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

// callbackCode validates the state and error parameters of a callback and returns the authorization code.
func callbackCode(r *http.Request, want string) (string, error) {
	q := r.URL.Query()
	if subtle.ConstantTimeCompare([]byte(q.Get("state")), []byte(want)) != 1 {
		return "", fmt.Errorf("invalid state parameter")
	}

	code := q.Get("code")
	if code == "" {
		return "", fmt.Errorf("authorization failed: %s - %s", q.Get("error"), q.Get("error_description"))
	}
	return code, nil
}

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>{{.}}</p>
    </div>
</body>
</html>
`))
