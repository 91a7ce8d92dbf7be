package favorites

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherdash/internal/weather"
)

type fakeAPI struct {
	addCalls atomic.Int64
	addFn    func(city string) (string, error)
	listFn   func() ([]Entry, error)
}

func (f *fakeAPI) AddFavorite(_ context.Context, _ uuid.UUID, city string) (string, error) {
	f.addCalls.Add(1)
	return f.addFn(city)
}

func (f *fakeAPI) ListFavorites(_ context.Context, _ uuid.UUID) ([]Entry, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn()
}

func parisSnapshot() *weather.Snapshot {
	return &weather.Snapshot{
		LocationName: "Paris",
		Current: weather.CurrentConditions{
			TemperatureC: 18.2,
			Condition:    weather.ConditionCloudy,
		},
		AirQuality: &weather.AirQualityReading{Index: 2},
		Forecast:   []weather.ForecastPeriod{{TemperatureC: 17}},
	}
}

func TestAddSecondAttemptWhileInFlightIsIgnored(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	api := &fakeAPI{addFn: func(string) (string, error) {
		close(entered)
		<-release
		return "fav-1", nil
	}}
	reg := NewRegistry(api, zerolog.Nop())

	userID := uuid.New()
	first := make(chan AddOutcome, 1)
	go func() {
		outcome, _ := reg.Add(context.Background(), userID, parisSnapshot())
		first <- outcome
	}()

	<-entered

	outcome, err := reg.Add(context.Background(), userID, parisSnapshot())
	require.NoError(t, err)
	assert.Equal(t, OutcomeInFlight, outcome)

	close(release)

	select {
	case outcome := <-first:
		assert.Equal(t, OutcomeAdded, outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("first add did not complete")
	}

	assert.Equal(t, int64(1), api.addCalls.Load(), "exactly one outbound create request expected")
}

func TestAddRejectsCachedDuplicateWithoutContactingServer(t *testing.T) {
	api := &fakeAPI{
		addFn:  func(string) (string, error) { return "fav-1", nil },
		listFn: func() ([]Entry, error) { return []Entry{{ID: "fav-0", City: "PARIS"}}, nil },
	}
	reg := NewRegistry(api, zerolog.Nop())

	userID := uuid.New()
	reg.Load(context.Background(), userID)

	outcome, err := reg.Add(context.Background(), userID, parisSnapshot())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyFavorite, outcome)
	assert.Equal(t, int64(0), api.addCalls.Load())
}

func TestAddFailureLeavesCacheUnchangedAndReleasesGuard(t *testing.T) {
	fail := true
	api := &fakeAPI{addFn: func(string) (string, error) {
		if fail {
			return "", errors.New("boom")
		}
		return "fav-1", nil
	}}
	reg := NewRegistry(api, zerolog.Nop())
	userID := uuid.New()

	outcome, err := reg.Add(context.Background(), userID, parisSnapshot())
	assert.Equal(t, OutcomeFailed, outcome)
	require.Error(t, err)
	assert.Empty(t, reg.Entries())

	// Guard released: a manual retry is possible.
	fail = false
	outcome, err = reg.Add(context.Background(), userID, parisSnapshot())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)
	assert.Len(t, reg.Entries(), 1)
}

func TestAddServerConflictReportsAlreadyFavorite(t *testing.T) {
	api := &fakeAPI{addFn: func(string) (string, error) {
		return "", ErrAlreadyFavorite
	}}
	reg := NewRegistry(api, zerolog.Nop())

	outcome, err := reg.Add(context.Background(), uuid.New(), parisSnapshot())
	require.NoError(t, err, "a duplicate is an expected outcome, not an error")
	assert.Equal(t, OutcomeAlreadyFavorite, outcome)
	assert.Empty(t, reg.Entries())
}

func TestAddAppendsCurrentConditionsSummaryOnly(t *testing.T) {
	api := &fakeAPI{addFn: func(string) (string, error) { return "fav-1", nil }}
	reg := NewRegistry(api, zerolog.Nop())

	snap := parisSnapshot()
	outcome, err := reg.Add(context.Background(), uuid.New(), snap)
	require.NoError(t, err)
	require.Equal(t, OutcomeAdded, outcome)

	entries := reg.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "fav-1", entries[0].ID)
	assert.Equal(t, "Paris", entries[0].City)
	require.NotNil(t, entries[0].Summary)
	assert.Equal(t, snap.Current, *entries[0].Summary)
}

func TestLoadFailureDegradesToEmptyCache(t *testing.T) {
	api := &fakeAPI{listFn: func() ([]Entry, error) {
		return nil, errors.New("server unavailable")
	}}
	reg := NewRegistry(api, zerolog.Nop())

	entries := reg.Load(context.Background(), uuid.New())
	assert.Nil(t, entries)
	assert.Empty(t, reg.Entries())
}

func TestLoadPreservesServerOrder(t *testing.T) {
	api := &fakeAPI{listFn: func() ([]Entry, error) {
		return []Entry{{ID: "1", City: "Paris"}, {ID: "2", City: "Oslo"}}, nil
	}}
	reg := NewRegistry(api, zerolog.Nop())

	entries := reg.Load(context.Background(), uuid.New())
	require.Len(t, entries, 2)
	assert.Equal(t, "Paris", entries[0].City)
	assert.Equal(t, "Oslo", entries[1].City)
}
