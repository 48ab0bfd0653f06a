// Package ui implements the recommender as an interactive terminal interface using bubbletea's Elm architecture.
//
// The [Model] renders a viewstate.View: a header with the sign-in control, a bubbles textinput bound to the
// query text, a spinner while a submission is outstanding, and lipgloss cards once results are shown.
//
// Every keystroke in the input is forwarded to the controller with UpdateQueryText. Enter runs Submit in a
// command so the UI keeps drawing while the fetch is in flight; the key never exits the program.
//
// Tab moves focus to the results, where 1/2/3 send feedback and q quits. ctrl+l and ctrl+o drive the
// services.Authenticator, and ctrl+c always quits.
package ui
