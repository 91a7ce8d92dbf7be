package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherdash/internal/auth"
	"weatherdash/internal/favorites"
)

func TestMemoryStoreCreateEnforcesCaseInsensitiveUniqueness(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	_, err := mem.Create(ctx, userID, "Paris")
	require.NoError(t, err)

	_, err = mem.Create(ctx, userID, "PARIS")
	assert.ErrorIs(t, err, favorites.ErrAlreadyFavorite)

	// Another user is free to favorite the same city.
	_, err = mem.Create(ctx, uuid.New(), "paris")
	require.NoError(t, err)
}

func TestMemoryStoreFindByUserAndCityIsCaseInsensitive(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	created, err := mem.Create(ctx, userID, "New Delhi")
	require.NoError(t, err)

	found, err := mem.FindByUserAndCity(ctx, userID, "new delhi")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := mem.FindByUserAndCity(ctx, userID, "Oslo")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStoreListByUserPreservesInsertionOrder(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	for _, city := range []string{"Paris", "Oslo", "Lima"} {
		_, err := mem.Create(ctx, userID, city)
		require.NoError(t, err)
	}

	favs, err := mem.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, favs, 3)
	assert.Equal(t, "Paris", favs[0].City)
	assert.Equal(t, "Oslo", favs[1].City)
	assert.Equal(t, "Lima", favs[2].City)
}

func TestMemoryStoreListCitiesDeduplicatesAcrossUsers(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	_, err := mem.Create(ctx, uuid.New(), "Paris")
	require.NoError(t, err)
	_, err = mem.Create(ctx, uuid.New(), "paris")
	require.NoError(t, err)
	_, err = mem.Create(ctx, uuid.New(), "Oslo")
	require.NoError(t, err)

	cities, err := mem.ListCities(ctx)
	require.NoError(t, err)
	assert.Len(t, cities, 2)
}

func TestMemoryStoreUserEmailUniqueness(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	created, err := mem.CreateUser(ctx, "Asha", "asha@example.com", "hash")
	require.NoError(t, err)

	_, err = mem.CreateUser(ctx, "Other", "ASHA@example.com", "hash2")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)

	found, err := mem.FindUserByEmail(ctx, "Asha@Example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := mem.FindUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
