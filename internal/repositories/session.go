package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/playrec/internal/models"
	"github.com/desertthunder/playrec/internal/shared"
)

const sessionColumns = `id, visitor_id, spotify_user_id, display_name, access_token, refresh_token,
	expires_at, created_at, updated_at, deleted_at`

// SessionRepository implements [models.Repository] for [models.Session] persistence.
type SessionRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Session] = (*SessionRepository)(nil)

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session into the database with a generated ID
func (r *SessionRepository) Create(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	session.SetID(shared.GenerateID())

	query := `
		INSERT INTO sessions (id, visitor_id, spotify_user_id, display_name, access_token, refresh_token,
			expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		session.ID(), session.VisitorID(), session.SpotifyUserID(), session.DisplayName(),
		session.AccessToken(), session.RefreshToken(), nullTime(session.ExpiresAt()),
		session.CreatedAt(), session.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID, excluding signed-out sessions
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ? AND deleted_at IS NULL`

	session, err := scanSession(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return session, nil
}

// GetByVisitor returns the newest active session for a visitor cookie
func (r *SessionRepository) GetByVisitor(visitorID string) (*models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE visitor_id = ? AND deleted_at IS NULL
		ORDER BY updated_at DESC
		LIMIT 1
	`

	session, err := scanSession(r.db.QueryRow(query, visitorID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: visitor %s", shared.ErrSessionNotFound, visitorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return session, nil
}

// Upsert refreshes the visitor's active session with session's account and token, creating one if none exists.
func (r *SessionRepository) Upsert(session *models.Session) error {
	existing, err := r.GetByVisitor(session.VisitorID())
	if errors.Is(err, shared.ErrSessionNotFound) {
		return r.Create(session)
	}
	if err != nil {
		return err
	}

	session.SetID(existing.ID())
	session.SetCreatedAt(existing.CreatedAt())
	return r.Update(session)
}

// Update modifies an existing session in the database
func (r *SessionRepository) Update(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	session.SetUpdatedAt(now)

	query := `
		UPDATE sessions
		SET spotify_user_id = ?, display_name = ?, access_token = ?, refresh_token = ?, expires_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		session.SpotifyUserID(), session.DisplayName(), session.AccessToken(), session.RefreshToken(),
		nullTime(session.ExpiresAt()), now, session.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return expectAffected(result, session.ID())
}

// Delete soft-deletes a session by ID
func (r *SessionRepository) Delete(id string) error {
	query := `UPDATE sessions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return expectAffected(result, id)
}

// SignOut soft-deletes every active session for a visitor. Signing out a signed-out visitor is not an error.
func (r *SessionRepository) SignOut(visitorID string) (int64, error) {
	query := `UPDATE sessions SET deleted_at = ? WHERE visitor_id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now().UTC(), visitorID)
	if err != nil {
		return 0, fmt.Errorf("failed to sign out visitor: %w", err)
	}
	return result.RowsAffected()
}

// List retrieves all active sessions matching the given criteria.
//
// Supported keys are "visitor_id" and "spotify_user_id"; "include_deleted" set to true returns signed-out rows too.
func (r *SessionRepository) List(criteria map[string]any) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1 = 1`
	args := []any{}

	if deleted, _ := criteria["include_deleted"].(bool); !deleted {
		query += " AND deleted_at IS NULL"
	}
	if visitor, ok := criteria["visitor_id"].(string); ok && visitor != "" {
		query += " AND visitor_id = ?"
		args = append(args, visitor)
	}
	if user, ok := criteria["spotify_user_id"].(string); ok && user != "" {
		query += " AND spotify_user_id = ?"
		args = append(args, user)
	}

	query += " ORDER BY created_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.Session, error) {
	var (
		id, visitorID, userID, name string
		access, refresh             string
		expiresAt                   sql.NullTime
		createdAt, updatedAt        time.Time
		deletedAt                   sql.NullTime
	)

	if err := row.Scan(&id, &visitorID, &userID, &name, &access, &refresh,
		&expiresAt, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	session := models.NewSession(visitorID, userID, name, nil)
	session.SetID(id)
	session.SetTokens(access, refresh)
	session.SetCreatedAt(createdAt)
	session.SetUpdatedAt(updatedAt)
	if expiresAt.Valid {
		session.SetExpiresAt(&expiresAt.Time)
	}
	if deletedAt.Valid {
		session.SetDeletedAt(&deletedAt.Time)
	}
	return session, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func expectAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: not found or already signed out: %s", shared.ErrSessionNotFound, id)
	}
	return nil
}
