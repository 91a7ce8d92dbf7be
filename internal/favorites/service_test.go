package favorites_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherdash/internal/favorites"
	"weatherdash/internal/store"
)

func newService() (*favorites.Service, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	return favorites.NewService(mem, zerolog.Nop()), mem
}

func TestAddRejectsCaseInsensitiveDuplicate(t *testing.T) {
	svc, mem := newService()
	userID := uuid.New()
	ctx := context.Background()

	fav, err := svc.Add(ctx, userID, "Paris")
	require.NoError(t, err)
	assert.Equal(t, "Paris", fav.City)

	_, err = svc.Add(ctx, userID, "pArIs")
	assert.ErrorIs(t, err, favorites.ErrAlreadyFavorite)

	all, err := mem.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, all, 1, "exactly one entry may persist per (user, city)")
	assert.Equal(t, "Paris", all[0].City, "original casing preserved for display")
}

func TestConcurrentIdenticalAddsPersistExactlyOne(t *testing.T) {
	svc, mem := newService()
	userID := uuid.New()
	ctx := context.Background()

	const attempts = 8
	results := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Add(ctx, userID, "Paris")
		}(i)
	}
	wg.Wait()

	var created, conflicted int
	for _, err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, favorites.ErrAlreadyFavorite):
			conflicted++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicted)

	all, err := mem.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddAllowsSameCityForDifferentUsers(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Add(ctx, uuid.New(), "Paris")
	require.NoError(t, err)
	_, err = svc.Add(ctx, uuid.New(), "Paris")
	require.NoError(t, err)
}

func TestAddRejectsEmptyCity(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Add(context.Background(), uuid.New(), "   ")
	assert.ErrorIs(t, err, favorites.ErrEmptyCity)
}

func TestListReturnsOnlyOwnFavorites(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := svc.Add(ctx, alice, "Paris")
	require.NoError(t, err)
	_, err = svc.Add(ctx, alice, "Oslo")
	require.NoError(t, err)
	_, err = svc.Add(ctx, bob, "Lima")
	require.NoError(t, err)

	favs, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "Paris", favs[0].City)
	assert.Equal(t, "Oslo", favs[1].City)
}
