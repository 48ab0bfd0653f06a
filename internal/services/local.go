package services

import (
	"context"
	"sync"

	"github.com/desertthunder/playrec/internal/viewstate"
)

// LocalAuthenticator is an in-memory [Authenticator] for running without Spotify credentials.
type LocalAuthenticator struct {
	mu       sync.RWMutex
	signedIn bool
}

// NewLocalAuthenticator returns a signed out [LocalAuthenticator].
func NewLocalAuthenticator() *LocalAuthenticator {
	return &LocalAuthenticator{}
}

func (l *LocalAuthenticator) Status() viewstate.SessionStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.signedIn {
		return viewstate.SignedIn
	}
	return viewstate.SignedOut
}

func (l *LocalAuthenticator) SignIn(context.Context) error {
	l.mu.Lock()
	l.signedIn = true
	l.mu.Unlock()
	return nil
}

func (l *LocalAuthenticator) SignOut(context.Context) error {
	l.mu.Lock()
	l.signedIn = false
	l.mu.Unlock()
	return nil
}
