package favorites

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"weatherdash/internal/common"
	"weatherdash/internal/weather"
)

// Entry is one favorite as held in the client-side cache. Summary carries the
// current conditions that were on display when the favorite was added, or the
// server's last refreshed reading after a load.
type Entry struct {
	ID      string
	City    string
	Summary *weather.CurrentConditions
}

// AddOutcome is the result of a Registry.Add attempt.
type AddOutcome int

const (
	// OutcomeAdded means the favorite was persisted and appended to the cache.
	OutcomeAdded AddOutcome = iota
	// OutcomeAlreadyFavorite means the city was already saved, either per the
	// local cache or per the server.
	OutcomeAlreadyFavorite
	// OutcomeInFlight means a previous add is still outstanding; the attempt
	// was ignored, not queued.
	OutcomeInFlight
	// OutcomeFailed means the server or transport failed; the cache is
	// unchanged and a further attempt may be made.
	OutcomeFailed
)

// API is the remote favorites surface the registry synchronizes against.
type API interface {
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]Entry, error)
	AddFavorite(ctx context.Context, userID uuid.UUID, city string) (string, error)
}

// Registry is the client-side half of the favorites feature: an ordered
// in-memory mirror of the server's set, plus the in-flight guard that keeps a
// single client from submitting duplicate adds.
type Registry struct {
	api API
	log zerolog.Logger

	mu       sync.Mutex
	entries  []Entry
	inFlight bool
}

func NewRegistry(api API, log zerolog.Logger) *Registry {
	return &Registry{api: api, log: log}
}

// Load populates the cache from the server at session start. A load failure
// degrades to an empty cache rather than an error: the favorites panel simply
// shows its empty state.
func (r *Registry) Load(ctx context.Context, userID uuid.UUID) []Entry {
	entries, err := r.api.ListFavorites(ctx, userID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.log.Warn().Err(err).Msg("loading favorites failed; starting with an empty list")
		r.entries = nil
		return nil
	}

	r.entries = entries
	return append([]Entry(nil), r.entries...)
}

// Add saves the snapshot's location as a favorite.
//
// While a previous Add is outstanding the call is a no-op (OutcomeInFlight).
// A city already in the cache is rejected locally without contacting the
// server. On success the entry is appended to the cache with the snapshot's
// current-conditions summary only; on failure the cache is left unchanged and
// the guard is released.
func (r *Registry) Add(ctx context.Context, userID uuid.UUID, snap *weather.Snapshot) (AddOutcome, error) {
	if snap == nil {
		return OutcomeFailed, errors.New("no snapshot to favorite")
	}
	city := snap.LocationName

	r.mu.Lock()
	if r.inFlight {
		r.mu.Unlock()
		return OutcomeInFlight, nil
	}
	if r.containsLocked(city) {
		r.mu.Unlock()
		return OutcomeAlreadyFavorite, nil
	}
	r.inFlight = true
	r.mu.Unlock()

	id, err := r.api.AddFavorite(ctx, userID, city)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight = false

	if err != nil {
		if errors.Is(err, ErrAlreadyFavorite) {
			return OutcomeAlreadyFavorite, nil
		}
		return OutcomeFailed, err
	}

	summary := snap.Current
	r.entries = append(r.entries, Entry{ID: id, City: city, Summary: &summary})
	return OutcomeAdded, nil
}

// Entries returns a copy of the cache in insertion order.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

func (r *Registry) containsLocked(city string) bool {
	key := common.NormalizeCity(city)
	for _, e := range r.entries {
		if common.NormalizeCity(e.City) == key {
			return true
		}
	}
	return false
}
