// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/playrec/internal/viewstate"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// StubFetcher is a [viewstate.Fetcher] returning a fixed payload or error and recording queries.
type StubFetcher struct {
	mu      sync.Mutex
	Payload any
	Err     error
	queries []string
}

func (s *StubFetcher) Fetch(_ context.Context, query string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return s.Payload, s.Err
}

// Queries returns every query fetched so far.
func (s *StubFetcher) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// StaticSession is a [viewstate.Session] with a settable status.
type StaticSession struct {
	mu     sync.Mutex
	status viewstate.SessionStatus
}

func (s *StaticSession) Status() viewstate.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *StaticSession) Set(status viewstate.SessionStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// StubAuthenticator is a services.Authenticator whose SignIn/SignOut toggle the status and count calls.
type StubAuthenticator struct {
	StaticSession
	SignInErr error
	SignIns   int
	SignOuts  int
}

func (a *StubAuthenticator) SignIn(context.Context) error {
	a.SignIns++
	if a.SignInErr != nil {
		return a.SignInErr
	}
	a.Set(viewstate.SignedIn)
	return nil
}

func (a *StubAuthenticator) SignOut(context.Context) error {
	a.SignOuts++
	a.Set(viewstate.SignedOut)
	return nil
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file %s to exist", path)
	}
}
