// Package repositories implements SQLite persistence for the sign-in state of the web app.
//
// [SessionRepository] implements models.Repository for [models.Session]. Signing out is a soft delete via
// deleted_at, and deleted rows are excluded from every query by default.
//
// Nothing else is stored: query text and results stay in memory on the view-state controllers.
package repositories
