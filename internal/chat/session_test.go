package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSeedsNewSessions(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	hist, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, SeedHistory(), hist)
}

func TestMemoryStoreHistoryIsACopy(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", Message{Role: RoleUser, Text: "hello"}))

	hist, err := store.History(ctx, "s1")
	require.NoError(t, err)
	hist[0].Text = "mutated"

	again, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, SeedHistory()[0].Text, again[0].Text)
}

func TestMemoryStoreResetRestoresSeed(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1",
		Message{Role: RoleUser, Text: "book me in"},
		Message{Role: RoleModel, Text: "What is your name?"},
	))
	require.NoError(t, store.Reset(ctx, "s1"))

	hist, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, SeedHistory(), hist)

	// reset twice in a row yields the same template both times
	require.NoError(t, store.Reset(ctx, "s1"))
	hist, err = store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, SeedHistory(), hist)
}

func TestMemoryStoreSessionsAreIsolated(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "a", Message{Role: RoleUser, Text: "only in a"}))

	histB, err := store.History(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, SeedHistory(), histB)

	histA, err := store.History(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, histA, len(SeedHistory())+1)
}

func TestSeedHistoryFreshCopies(t *testing.T) {
	a := SeedHistory()
	a[0].Text = "mutated"
	assert.NotEqual(t, a[0].Text, SeedHistory()[0].Text)
}
