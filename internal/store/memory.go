package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"weatherdash/internal/auth"
	"weatherdash/internal/common"
	"weatherdash/internal/favorites"
)

// MemoryStore is an in-memory implementation of the user and favorites
// persistence boundaries, used in tests and when no database is configured.
// The duplicate check in Create runs under the mutex, so it provides the same
// atomic insert-if-absent guarantee as the Postgres unique index.
type MemoryStore struct {
	mu        sync.Mutex
	favorites []favorites.Favorite
	users     []auth.User
}

var (
	_ favorites.Store = (*MemoryStore)(nil)
	_ auth.UserStore  = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// --- favorites.Store ---

func (s *MemoryStore) FindByUserAndCity(ctx context.Context, userID uuid.UUID, city string) (*favorites.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.findLocked(userID, city); f != nil {
		out := *f
		return &out, nil
	}
	return nil, nil
}

func (s *MemoryStore) Create(ctx context.Context, userID uuid.UUID, city string) (*favorites.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(userID, city) != nil {
		return nil, favorites.ErrAlreadyFavorite
	}

	f := favorites.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		City:      city,
		CreatedAt: time.Now().UTC(),
	}
	s.favorites = append(s.favorites, f)
	return &f, nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]favorites.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []favorites.Favorite
	for _, f := range s.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

// ListCities returns the distinct favorited city names across all users.
func (s *MemoryStore) ListCities(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var cities []string
	for _, f := range s.favorites {
		key := common.NormalizeCity(f.City)
		if !seen[key] {
			seen[key] = true
			cities = append(cities, f.City)
		}
	}
	return cities, nil
}

func (s *MemoryStore) findLocked(userID uuid.UUID, city string) *favorites.Favorite {
	key := common.NormalizeCity(city)
	for i := range s.favorites {
		if s.favorites[i].UserID == userID && common.NormalizeCity(s.favorites[i].City) == key {
			return &s.favorites[i]
		}
	}
	return nil
}

// --- auth.UserStore ---

func (s *MemoryStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserLocked(email) != nil {
		return nil, auth.ErrEmailTaken
	}

	u := auth.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users = append(s.users, u)
	out := u
	return &out, nil
}

func (s *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.findUserLocked(email); u != nil {
		out := *u
		return &out, nil
	}
	return nil, nil
}

func (s *MemoryStore) findUserLocked(email string) *auth.User {
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			return &s.users[i]
		}
	}
	return nil
}
