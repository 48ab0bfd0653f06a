package ui

import "github.com/desertthunder/playrec/internal/viewstate"

// submittedMsg reports that a Submit call returned.
type submittedMsg struct{}

// authMsg reports the outcome of a sign-in or sign-out.
type authMsg struct {
	signIn bool
	err    error
}

// feedbackMsg reports the outcome of a feedback click.
type feedbackMsg struct {
	choice viewstate.FeedbackChoice
	err    error
}
