package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/playrec/internal/shared"
	"github.com/desertthunder/playrec/internal/viewstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ viewstate.Fetcher = (*RecommendationClient)(nil)

func TestRecommendationClient(t *testing.T) {
	t.Run("Path Escapes Query As One Segment", func(t *testing.T) {
		c := NewRecommendationClient(nil, "")

		assert.Equal(t, "/square/lofi", c.Path("lofi"))
		assert.Equal(t, "/square/late%20night%2Fbeats%3F", c.Path("late night/beats?"))
		assert.Equal(t, "/square/", c.Path(""))
	})

	t.Run("Fetch Returns Parsed Payload", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"artists":["Michael Jackson"],"energy":0}`))
		}))
		defer server.Close()

		c := NewRecommendationClient(NewAPIService(server.URL, nil), "/find-playlists/")
		payload, err := c.Fetch(context.Background(), "chill vibes")

		require.NoError(t, err)
		assert.Equal(t, "/find-playlists/chill%20vibes", gotPath)
		body, ok := payload.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(0), body["energy"])
	})

	t.Run("Fetch Non-2xx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := NewRecommendationClient(NewAPIService(server.URL, nil), "").Fetch(context.Background(), "x")
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})

	t.Run("Fetch Malformed JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"broken":`))
		}))
		defer server.Close()

		_, err := NewRecommendationClient(NewAPIService(server.URL, nil), "").Fetch(context.Background(), "x")
		assert.ErrorIs(t, err, shared.ErrInvalidPayload)
	})

	t.Run("Fetch Transport Error", func(t *testing.T) {
		client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp: connection refused")
		})}

		_, err := NewRecommendationClient(NewAPIService("http://proxy.invalid", client), "").Fetch(context.Background(), "x")
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})

	t.Run("Controller Swallows Fetch Failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		ctrl := viewstate.New(viewstate.Options{
			Fetcher: NewRecommendationClient(NewAPIService(server.URL, nil), ""),
			Logger:  shared.NewLogger(&discard{}),
		})
		ctrl.UpdateQueryText("lofi")
		ctrl.Submit(context.Background())

		require.Equal(t, viewstate.Submitted, ctrl.Phase())
		assert.Len(t, ctrl.CurrentView().Results.Cards, 10)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
