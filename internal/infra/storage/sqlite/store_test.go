package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "healthtrack/internal/domain/auth"
	domainreports "healthtrack/internal/domain/reports"
	domainuser "healthtrack/internal/domain/user"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "health.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport(owner domainreports.Owner, sugar float64) *domainreports.Report {
	return &domainreports.Report{
		CreatedAt:    time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC),
		Hemoglobin:   13.5,
		FastingSugar: sugar,
		Systolic:     118,
		Diastolic:    76,
		Cholesterol:  190,
		HeightCM:     172,
		WeightKG:     68.4,
		BMI:          23.12,
		Owner:        owner,
	}
}

func TestReportsRoundTripInOrder(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).Reports()

	first := sampleReport("u-1", 90)
	second := sampleReport("u-2", 101.5)
	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))
	assert.Less(t, first.ID, second.ID)

	all, err := repo.List(ctx, domainreports.Guest)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, 101.5, all[1].FastingSugar)
	assert.Equal(t, 118, all[0].Systolic)
	assert.Equal(t, domainreports.Owner("u-1"), all[0].Owner)
	assert.True(t, first.CreatedAt.Equal(all[0].CreatedAt))

	mine, err := repo.List(ctx, "u-2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, second.ID, mine[0].ID)
}

func TestReportDeleteScoping(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).Reports()

	r := sampleReport("u-1", 90)
	require.NoError(t, repo.Insert(ctx, r))

	assert.ErrorIs(t, repo.Delete(ctx, r.ID, "u-2"), domainreports.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, r.ID, "u-1"))
	assert.ErrorIs(t, repo.Delete(ctx, r.ID, domainreports.Guest), domainreports.ErrNotFound)
}

func TestReportDeleteAll(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).Reports()
	for _, owner := range []domainreports.Owner{"u-1", "u-1", "u-2", domainreports.Guest} {
		require.NoError(t, repo.Insert(ctx, sampleReport(owner, 95)))
	}

	removed, err := repo.DeleteAll(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = repo.DeleteAll(ctx, domainreports.Guest)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	left, err := repo.List(ctx, domainreports.Guest)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestUsersUniqueEmail(t *testing.T) {
	ctx := context.Background()
	users := openStore(t).Users()

	alice, err := domainuser.NewUser(domainuser.CreateParams{ID: "a", Email: "Alice@Example.com", Name: "Alice", PasswordHash: "h"})
	require.NoError(t, err)
	require.NoError(t, users.Save(ctx, alice))

	got, err := users.ByEmail(ctx, " ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID("a"), got.ID)
	assert.Equal(t, "Alice", got.Name)

	clash, err := domainuser.NewUser(domainuser.CreateParams{ID: "b", Email: "alice@example.com", Name: "Other", PasswordHash: "h"})
	require.NoError(t, err)
	assert.ErrorIs(t, users.Save(ctx, clash), domainuser.ErrEmailAlreadyUsed)

	require.NoError(t, alice.ReplacePasswordHash("h2", time.Now()))
	require.NoError(t, users.Save(ctx, alice))
	got, err = users.ByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "h2", got.PasswordHash)

	_, err = users.ByID(ctx, "missing")
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}

func TestSessionsExpire(t *testing.T) {
	ctx := context.Background()
	sessions := openStore(t).Sessions()

	live, err := domainauth.NewSession(domainauth.CreateSessionParams{Token: "live", UserID: "a", TTL: time.Hour})
	require.NoError(t, err)
	stale, err := domainauth.NewSession(domainauth.CreateSessionParams{Token: "stale", UserID: "a", TTL: time.Minute, Now: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, live))
	require.NoError(t, sessions.Save(ctx, stale))

	got, err := sessions.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID("a"), got.UserID)

	_, err = sessions.Get(ctx, "stale")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	require.NoError(t, sessions.DeleteByUser(ctx, "a"))
	_, err = sessions.Get(ctx, "live")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
