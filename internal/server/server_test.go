package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/playrec/internal/shared"
	"golang.org/x/oauth2"
)

type stubExchanger struct {
	token *oauth2.Token
	err   error
	codes []string
}

func (s *stubExchanger) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	s.codes = append(s.codes, code)
	return s.token, s.err
}

type requestLog struct {
	seen []string
}

func (l *requestLog) RecordRequest(method string, code int) {
	l.seen = append(l.seen, fmt.Sprintf("%s %d", method, code))
}

func ok(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(body)) }
}

func TestBasicRouter(t *testing.T) {
	t.Run("Dispatches By Method", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc(http.MethodGet, "/thing", ok("get"))
		r.HandleFunc(http.MethodPost, "/thing", ok("post"))

		for _, method := range []string{http.MethodGet, http.MethodPost} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(method, "/thing", nil))
			if got := rec.Body.String(); got != strings.ToLower(method) {
				t.Errorf("%s: expected body %q, got %q", method, strings.ToLower(method), got)
			}
		}
	})

	t.Run("Method Not Allowed", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc(http.MethodGet, "/thing", ok("get"))
		r.HandleFunc(http.MethodPost, "/thing", ok("post"))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/thing", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != "GET, POST" {
			t.Errorf("expected Allow header %q, got %q", "GET, POST", allow)
		}
	})

	t.Run("Head Falls Back To Get", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc(http.MethodGet, "/thing", ok("get"))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/thing", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("first"), mw("second"))
		r.HandleFunc(http.MethodGet, "/", ok(""))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second" {
			t.Errorf("expected first,second got %v", order)
		}
	})

	t.Run("Handler Registers Routes", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handler(NewOAuthHandler(&stubExchanger{token: &oauth2.Token{AccessToken: "a"}}, "s"))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=c", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("Logging", func(t *testing.T) {
		var buf bytes.Buffer
		h := Logging(shared.NewLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

		out := buf.String()
		if !strings.Contains(out, "/brew") || !strings.Contains(out, "418") {
			t.Errorf("expected path and status in log, got %q", out)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		var buf bytes.Buffer
		h := Recover(shared.NewLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "boom") {
			t.Errorf("expected panic value in log, got %q", buf.String())
		}
	})

	t.Run("RateLimit", func(t *testing.T) {
		h := RateLimit(0.001, 2)(ok("ok"))

		codes := make([]int, 3)
		for i := range codes {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			codes[i] = rec.Code
		}

		if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
			t.Errorf("expected 200,200,429 got %v", codes)
		}
	})

	t.Run("Instrument", func(t *testing.T) {
		log := &requestLog{}
		r := NewBasicRouter()
		r.Use(Instrument(log))
		r.HandleFunc(http.MethodGet, "/", ok("ok"))
		r.HandleFunc(http.MethodPost, "/gone", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGone)
		})

		for _, req := range []*http.Request{
			httptest.NewRequest(http.MethodGet, "/", nil),
			httptest.NewRequest(http.MethodPost, "/gone", nil),
		} {
			r.ServeHTTP(httptest.NewRecorder(), req)
		}

		want := []string{"GET 200", "POST 410"}
		if strings.Join(log.seen, ",") != strings.Join(want, ",") {
			t.Errorf("expected %v, got %v", want, log.seen)
		}
	})

	t.Run("RateLimit Disabled", func(t *testing.T) {
		h := RateLimit(0, 0)(ok("ok"))
		for range 100 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ex := &stubExchanger{token: &oauth2.Token{AccessToken: "tok"}}
		h := NewOAuthHandler(ex, "state")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state&code=abc", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token.AccessToken != "tok" {
			t.Errorf("expected token tok, got %s", result.Token.AccessToken)
		}
		if len(ex.codes) != 1 || ex.codes[0] != "abc" {
			t.Errorf("expected code abc to be exchanged, got %v", ex.codes)
		}
	})

	t.Run("Invalid State", func(t *testing.T) {
		h := NewOAuthHandler(&stubExchanger{}, "state")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=wrong&code=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected error result")
		}
	})

	t.Run("Provider Error", func(t *testing.T) {
		h := NewOAuthHandler(&stubExchanger{}, "state")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state&error=access_denied", nil))

		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("Exchange Failure", func(t *testing.T) {
		h := NewOAuthHandler(&stubExchanger{err: errors.New("nope")}, "state")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state&code=abc", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("Only Once", func(t *testing.T) {
		h := NewOAuthHandler(&stubExchanger{token: &oauth2.Token{AccessToken: "a"}}, "state")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=state&code=abc", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state&code=abc", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", rec.Code)
		}
	})
}

func TestCallbackHandler(t *testing.T) {
	newRequest := func(query, state string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/callback?"+query, nil)
		if state != "" {
			req.AddCookie(&http.Cookie{Name: StateCookie, Value: state})
		}
		return req
	}

	t.Run("Success Redirects", func(t *testing.T) {
		var got *oauth2.Token
		h := NewCallbackHandler(&stubExchanger{token: &oauth2.Token{AccessToken: "tok"}},
			func(w http.ResponseWriter, r *http.Request, token *oauth2.Token) error {
				got = token
				return nil
			}, "/", shared.NewLogger(&bytes.Buffer{}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest("state=s1&code=c", "s1"))

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/" {
			t.Errorf("expected redirect to /, got %s", loc)
		}
		if got == nil || got.AccessToken != "tok" {
			t.Errorf("expected token to be handed over, got %v", got)
		}
	})

	t.Run("Reusable Across Visitors", func(t *testing.T) {
		calls := 0
		h := NewCallbackHandler(&stubExchanger{token: &oauth2.Token{AccessToken: "tok"}},
			func(http.ResponseWriter, *http.Request, *oauth2.Token) error { calls++; return nil },
			"", shared.NewLogger(&bytes.Buffer{}))

		for _, s := range []string{"a", "b"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, newRequest("state="+s+"&code=c", s))
			if rec.Code != http.StatusSeeOther {
				t.Errorf("state %s: expected 303, got %d", s, rec.Code)
			}
		}
		if calls != 2 {
			t.Errorf("expected 2 sessions stored, got %d", calls)
		}
	})

	t.Run("Missing Cookie", func(t *testing.T) {
		h := NewCallbackHandler(&stubExchanger{}, nil, "/", shared.NewLogger(&bytes.Buffer{}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest("state=s&code=c", ""))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("State Mismatch", func(t *testing.T) {
		ex := &stubExchanger{}
		h := NewCallbackHandler(ex, nil, "/", shared.NewLogger(&bytes.Buffer{}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest("state=other&code=c", "s"))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if len(ex.codes) != 0 {
			t.Error("code should not be exchanged on state mismatch")
		}
	})

	t.Run("Store Failure", func(t *testing.T) {
		h := NewCallbackHandler(&stubExchanger{token: &oauth2.Token{AccessToken: "tok"}},
			func(http.ResponseWriter, *http.Request, *oauth2.Token) error { return errors.New("db down") },
			"/", shared.NewLogger(&bytes.Buffer{}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest("state=s&code=c", "s"))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("BeginSignIn", func(t *testing.T) {
		rec := httptest.NewRecorder()
		BeginSignIn(rec, httptest.NewRequest(http.MethodGet, "/signin", nil), "xyz", "https://accounts.example/authorize")

		if rec.Code != http.StatusFound {
			t.Errorf("expected 302, got %d", rec.Code)
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != StateCookie || cookies[0].Value != "xyz" {
			t.Errorf("expected state cookie, got %v", cookies)
		}
	})
}
