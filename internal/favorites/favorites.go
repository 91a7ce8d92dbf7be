// Package favorites implements the saved-city feature: the server-side
// service backed by a persistent store, and the client-side registry that
// mirrors it.
package favorites

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyFavorite indicates the user already saved this city. It is an
	// expected, user-facing outcome and must be distinguishable from
	// transport failures.
	ErrAlreadyFavorite = errors.New("city is already a favorite")

	// ErrEmptyCity indicates an add was attempted with a blank city name.
	ErrEmptyCity = errors.New("city name must not be empty")
)

// Favorite is one saved (user, city) pair. City keeps its original casing for
// display; uniqueness is enforced case-insensitively per user.
type Favorite struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the persistence boundary for favorites. Implementations must
// enforce a uniqueness constraint on (userID, lower(city)) themselves:
// Create returns ErrAlreadyFavorite when it is violated, which is what closes
// the check-then-create race under concurrent identical requests.
type Store interface {
	FindByUserAndCity(ctx context.Context, userID uuid.UUID, city string) (*Favorite, error)
	Create(ctx context.Context, userID uuid.UUID, city string) (*Favorite, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Favorite, error)
}
