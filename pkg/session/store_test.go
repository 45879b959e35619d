package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archadvisor/archadvisor/pkg/models"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(rdb), mr
}

func TestCreateAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	st := models.NewSessionState("arch_11112222", "build a chat app", models.Preferences{})
	require.NoError(t, store.Create(ctx, st))

	got, err := store.Get(ctx, "arch_11112222")
	require.NoError(t, err)
	assert.Equal(t, "build a chat app", got.Requirements)
	assert.Equal(t, models.StatusInitializing, got.Status)
	assert.Equal(t, 3, got.MaxDebateRounds)
}

func TestGetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "arch_deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSetsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	st := models.NewSessionState("arch_11112222", "x", models.Preferences{})
	require.NoError(t, store.Create(ctx, st))

	assert.Equal(t, SessionTTL, mr.TTL("archadvisor:session:arch_11112222"))

	// expiry makes the session unreadable
	mr.FastForward(SessionTTL + time.Second)
	_, err := store.Get(ctx, "arch_11112222")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReadModifyWrite(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	st := models.NewSessionState("arch_11112222", "x", models.Preferences{})
	require.NoError(t, store.Create(ctx, st))

	// age the key, then verify update refreshes the TTL
	mr.FastForward(time.Hour)
	require.NoError(t, store.Update(ctx, "arch_11112222", func(s *models.SessionState) {
		s.Status = models.StatusDesigning
		s.DebateRound = 2
	}))

	got, err := store.Get(ctx, "arch_11112222")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDesigning, got.Status)
	assert.Equal(t, 2, got.DebateRound)
	assert.Equal(t, SessionTTL, mr.TTL("archadvisor:session:arch_11112222"))
}

func TestUpdateMissing(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Update(context.Background(), "arch_deadbeef", func(*models.SessionState) {})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusAndAppendMessage(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	st := models.NewSessionState("arch_11112222", "x", models.Preferences{})
	require.NoError(t, store.Create(ctx, st))

	require.NoError(t, store.UpdateStatus(ctx, "arch_11112222", models.StatusReviewing))
	require.NoError(t, store.AppendMessage(ctx, "arch_11112222", models.AgentMessage{
		Agent: "architect", Summary: "initial design",
	}))
	require.NoError(t, store.AppendMessage(ctx, "arch_11112222", models.AgentMessage{
		Agent: "devils_advocate", Summary: "review",
	}))

	got, err := store.Get(ctx, "arch_11112222")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReviewing, got.Status)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "architect", got.Messages[0].Agent)
	assert.Equal(t, "devils_advocate", got.Messages[1].Agent)
}

func TestStoreOutput(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	st := models.NewSessionState("arch_11112222", "x", models.Preferences{})
	require.NoError(t, store.Create(ctx, st))

	final := *st
	final.Status = models.StatusComplete
	final.RenderedMarkdown = "# Architecture"
	final.TotalCostUSD = 0.42
	final.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	require.NoError(t, store.StoreOutput(ctx, &final))

	got, err := store.Get(ctx, "arch_11112222")
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, got.Status)
	assert.Equal(t, "# Architecture", got.RenderedMarkdown)
	assert.Equal(t, 0.42, got.TotalCostUSD)
	assert.NotEmpty(t, got.CompletedAt)
}

func TestListRecentNewestFirstAndCapped(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 105; i++ {
		st := models.NewSessionState(fmt.Sprintf("arch_%08d", i), "x", models.Preferences{})
		require.NoError(t, store.Create(ctx, st))
	}

	ids, err := store.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"arch_00000104", "arch_00000103", "arch_00000102"}, ids)

	all, err := store.ListRecent(ctx, 200)
	require.NoError(t, err)
	assert.Len(t, all, 100)
}

func TestDeleteAndExists(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	st := models.NewSessionState("arch_11112222", "x", models.Preferences{})
	require.NoError(t, store.Create(ctx, st))

	ok, err := store.Exists(ctx, "arch_11112222")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "arch_11112222"))

	ok, err = store.Exists(ctx, "arch_11112222")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPing(t *testing.T) {
	store, mr := newTestStore(t)

	_, err := store.Ping(context.Background())
	require.NoError(t, err)

	mr.Close()
	_, err = store.Ping(context.Background())
	assert.Error(t, err)
}
