package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthtrack/internal/app/middleware"
	appoutbox "healthtrack/internal/app/outbox"
	domainauth "healthtrack/internal/domain/auth"
	domainreports "healthtrack/internal/domain/reports"
	domainuser "healthtrack/internal/domain/user"
	infraoutbox "healthtrack/internal/infra/outbox"
)

func report(owner domainreports.Owner) *domainreports.Report {
	return &domainreports.Report{
		CreatedAt:    time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		Hemoglobin:   14,
		FastingSugar: 92,
		Systolic:     115,
		Diastolic:    75,
		Cholesterol:  170,
		HeightCM:     180,
		WeightKG:     80,
		BMI:          24.69,
		Owner:        owner,
	}
}

func TestReportRepositoryScopes(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository()
	for _, owner := range []domainreports.Owner{"a", "b", "", "a"} {
		r := report(owner)
		require.NoError(t, repo.Insert(ctx, r))
		assert.NotZero(t, r.ID)
	}

	mine, err := repo.List(ctx, "a")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, domainreports.ID(1), mine[0].ID)
	assert.Equal(t, domainreports.ID(4), mine[1].ID)

	// returned reports are copies
	mine[0].BMI = 0
	again, err := repo.List(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 24.69, again[0].BMI)

	assert.ErrorIs(t, repo.Delete(ctx, 2, "a"), domainreports.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, 2, domainreports.Guest))

	removed, err := repo.DeleteAll(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	all, err := repo.List(ctx, domainreports.Guest)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domainreports.ID(3), all[0].ID)

	next := report("")
	require.NoError(t, repo.Insert(ctx, next))
	assert.Equal(t, domainreports.ID(5), next.ID)
}

func TestUserRepositoryUniqueEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository()
	u, err := domainuser.NewUser(domainuser.CreateParams{ID: "u1", Email: "Eve@Example.com", Name: "Eve", PasswordHash: "h"})
	require.NoError(t, err)
	require.NoError(t, users.Save(ctx, u))

	got, err := users.ByEmail(ctx, "eve@example.com")
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID("u1"), got.ID)

	dup, err := domainuser.NewUser(domainuser.CreateParams{ID: "u2", Email: "eve@example.com", Name: "Copy", PasswordHash: "h"})
	require.NoError(t, err)
	assert.ErrorIs(t, users.Save(ctx, dup), domainuser.ErrEmailAlreadyUsed)

	_, err = users.ByID(ctx, "nope")
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}

func TestSessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	live, err := domainauth.NewSession(domainauth.CreateSessionParams{Token: "t1", UserID: "u1", TTL: time.Hour})
	require.NoError(t, err)
	stale, err := domainauth.NewSession(domainauth.CreateSessionParams{Token: "t2", UserID: "u1", TTL: time.Minute, Now: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, live))
	require.NoError(t, store.Save(ctx, stale))

	_, err = store.Get(ctx, "t1")
	require.NoError(t, err)
	_, err = store.Get(ctx, "t2")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "t1"))
	_, err = store.Get(ctx, "t1")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestSessionStoreSweepsAndDeletesByUser(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	past := time.Now().Add(-time.Hour)
	for _, p := range []domainauth.CreateSessionParams{
		{Token: "old", UserID: "u1", TTL: time.Minute, Now: past},
		{Token: "a", UserID: "u1", TTL: time.Hour},
		{Token: "b", UserID: "u2", TTL: time.Hour},
	} {
		sess, err := domainauth.NewSession(p)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, sess))
	}
	assert.Equal(t, 2, store.Len())

	require.NoError(t, store.DeleteByUser(ctx, "u1"))
	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	_, err = store.Get(ctx, "b")
	assert.NoError(t, err)
}

func TestIdempotencyStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(time.Minute)
	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{Key: "fresh", OccurredAt: time.Now()}))
	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{Key: "old", OccurredAt: time.Now().Add(-time.Hour)}))

	_, ok, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = store.Get(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestOutboxClaimLifecycle(t *testing.T) {
	ctx := context.Background()
	box := NewOutbox()
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "e1", Name: "report.recorded", Payload: []byte(`{}`)}))
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "e2", Name: "report.deleted", Payload: []byte(`{}`)}))
	assert.Equal(t, 2, box.Pending())

	require.NoError(t, box.Flush(ctx))
	require.NoError(t, box.Flush(ctx))
	select {
	case <-box.Wake():
	default:
		t.Fatal("expected a wake signal")
	}

	doc, err := box.Claim(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "e1", doc.ID)
	assert.Equal(t, infraoutbox.StateClaimed, doc.State)

	require.NoError(t, box.MarkFailed(ctx, "e1", time.Now().Add(time.Hour), "broker down"))
	doc, err = box.Claim(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "e2", doc.ID)
	require.NoError(t, box.MarkSent(ctx, "e2"))

	doc, err = box.Claim(ctx, "w1")
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, 1, box.Pending())

	require.NoError(t, box.MarkFailed(ctx, "e1", time.Now().Add(-time.Second), "broker down"))
	doc, err = box.Claim(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, 2, doc.Attempts)
	assert.Equal(t, "broker down", doc.LastError)
}
