package shared

import "errors"

// Config file
var (
	ErrMissingConfig      = errors.New("configuration not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrMissingCredentials = errors.New("missing credentials")
)

// Spotify sign-in and stored sessions
var (
	ErrAuthFailed       = errors.New("authentication failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTokenExpired     = errors.New("access token expired")
	ErrTimeout          = errors.New("operation timed out")
	ErrSessionNotFound  = errors.New("session not found")
)

// Recommendation proxy
var (
	ErrAPIRequest     = errors.New("API request failed")
	ErrInvalidPayload = errors.New("invalid response payload")
)

// Caller input
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidFlag     = errors.New("invalid flag value")
)
