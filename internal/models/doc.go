// Package models defines persistent entities for the playrec web app.
//
// The only entity is [Session]: the record the Spotify sign-in flow leaves behind for a visitor cookie.
// Query text and recommendation results are never persisted; they live in memory on the view-state
// controller.
//
// All persistent entities implement the [Model] interface providing ID, timestamps, and validation.
// Soft deletes mark a session as signed out without losing its history.
// The [Repository] interface defines standard CRUD operations for database access.
package models
