package favorites

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service is the server-side half of the favorites feature.
type Service struct {
	store Store
	log   zerolog.Logger
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{store: store, log: log}
}

// Add persists a new favorite for the user. The lookup is a fast path for the
// common duplicate case; the store's uniqueness constraint is what actually
// guarantees at-most-one entry per (user, city) when identical requests race.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, city string) (*Favorite, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrEmptyCity
	}

	existing, err := s.store.FindByUserAndCity(ctx, userID, city)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyFavorite
	}

	fav, err := s.store.Create(ctx, userID, city)
	if err != nil {
		if errors.Is(err, ErrAlreadyFavorite) {
			// Lost the race against a concurrent add of the same city.
			return nil, ErrAlreadyFavorite
		}
		return nil, err
	}

	s.log.Info().Str("userId", userID.String()).Str("city", fav.City).Msg("favorite added")
	return fav, nil
}

// List returns the user's favorites in store order.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Favorite, error) {
	return s.store.ListByUser(ctx, userID)
}
