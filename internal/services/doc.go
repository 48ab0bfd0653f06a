// Package services implements the HTTP collaborators of the recommender page.
//
// # Recommendation Proxy
//
// [APIService] makes raw requests against the FastAPI proxy and reports whether the body parsed as JSON.
// [RecommendationClient] builds on it to implement viewstate.Fetcher: one GET per submit with the query
// escaped as the final path segment. Non-2xx statuses wrap [shared.ErrAPIRequest] and non-JSON bodies wrap
// [shared.ErrInvalidPayload]; callers are expected to log and carry on.
//
// # Spotify Sign-in
//
// [SpotifyService] implements [OAuthService] for the authorization code flow used by both the web app and
// the `auth login` command. It only reads the /me profile; no playlist scopes are requested.
//
// # Authenticators
//
// [Authenticator] is the sign-in handle for front ends that drive the flow themselves. [LocalAuthenticator]
// keeps an in-memory flag and is used when no Spotify credentials are configured.
package services
