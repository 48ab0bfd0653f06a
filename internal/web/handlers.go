package web

import (
	"net/http"
	"time"

	"github.com/desertthunder/playrec/internal/models"
	"github.com/desertthunder/playrec/internal/server"
	"github.com/desertthunder/playrec/internal/shared"
	"github.com/desertthunder/playrec/internal/viewstate"
	"golang.org/x/oauth2"
)

const (
	visitorTTL  = 30 * 24 * time.Hour
	maxVisitors = 10000
)

// pageData is the template context for page.html.
type pageData struct {
	View     viewstate.View
	SignedIn bool
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	v := a.peek(w, r)
	view := v.controller.CurrentView()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := a.page.Execute(w, pageData{View: view, SignedIn: view.Header.Status == viewstate.SignedIn}); err != nil {
		a.logger.Error("failed to render page", "error", err)
	}
}

func (a *App) handleQuery(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	a.visitor(w, r).controller.UpdateQueryText(r.PostForm.Get("q"))
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmit records the submitted text, runs the submission and redirects back to the page.
func (a *App) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	c := a.visitor(w, r).controller
	if r.PostForm.Has("q") {
		c.UpdateQueryText(r.PostForm.Get("q"))
	}
	c.Submit(r.Context())
	a.opts.Metrics.RecordSubmit()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	choice, err := viewstate.ParseFeedbackChoice(r.PostForm.Get("choice"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a.opts.Metrics.RecordFeedback(choice)
	if err := a.peek(w, r).controller.SubmitFeedback(r.Context(), choice); err != nil {
		a.logger.Warn("feedback rejected", "choice", choice, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if !a.oauthEnabled() {
		v := a.visitor(w, r)
		a.mu.Lock()
		v.signedIn = true
		a.mu.Unlock()
		a.logger.Info("local sign in", "visitor", v.id)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	state, err := shared.GenerateState()
	if err != nil {
		a.logger.Error("failed to generate state", "error", err)
		http.Error(w, "Failed to start sign-in", http.StatusInternalServerError)
		return
	}
	// The callback stores the session under the visitor cookie, so make sure there is one.
	a.peek(w, r)
	server.BeginSignIn(w, r, state, a.opts.OAuth.GetAuthURL(state))
}

func (a *App) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if !a.oauthEnabled() {
		v := a.visitor(w, r)
		a.mu.Lock()
		v.signedIn = false
		a.mu.Unlock()
	} else {
		v := a.peek(w, r)
		n, err := a.opts.Sessions.SignOut(v.id)
		if err != nil {
			a.logger.Error("failed to sign out", "visitor", v.id, "error", err)
			http.Error(w, "Failed to sign out", http.StatusInternalServerError)
			return
		}
		a.logger.Info("signed out", "visitor", v.id, "sessions", n)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// storeSession upserts the visitor's session once the callback has a token.
func (a *App) storeSession(w http.ResponseWriter, r *http.Request, token *oauth2.Token) error {
	v := a.visitor(w, r)

	var userID, name string
	if user, err := a.opts.OAuth.ProfileWithToken(r.Context(), token); err != nil {
		a.logger.Warn("failed to fetch profile", "visitor", v.id, "error", err)
	} else {
		userID, name = user.ID, user.Label()
	}

	if err := a.opts.Sessions.Upsert(models.NewSession(v.id, userID, name, token)); err != nil {
		return err
	}
	a.logger.Info("signed in", "visitor", v.id, "user", name)
	return nil
}

func (a *App) handleView(w http.ResponseWriter, r *http.Request) {
	view := a.peek(w, r).controller.CurrentView()

	data, err := shared.MarshalJSON(view, false)
	if err != nil {
		http.Error(w, "Failed to encode view", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}
