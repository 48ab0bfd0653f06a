// package models defines the persistent entities behind the recommender's sign-in state
package models

import (
	"time"
)

// Model is a row with an identity and bookkeeping timestamps.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	// Validate reports missing required fields before a write.
	Validate() error
}

// Repository is the CRUD surface shared by the sqlite repositories.
//
// Get returns an error wrapping a not-found sentinel when no live row matches; List accepts
// implementation-specific criteria keys and ignores unknown ones.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
