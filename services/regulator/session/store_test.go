package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAllocatesNewSession(t *testing.T) {
	store := NewStore()

	id := store.Resolve("")
	require.NotEmpty(t, id)
	assert.Equal(t, 1, store.Count())

	sess, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "global", sess.TeamUsed)
	assert.Empty(t, sess.Messages)
}

func TestResolveKeepsKnownSession(t *testing.T) {
	store := NewStore()

	id := store.Resolve("")
	assert.Equal(t, id, store.Resolve(id))
	assert.Equal(t, 1, store.Count())
}

func TestResolveUnknownIDAllocatesFresh(t *testing.T) {
	store := NewStore()

	id := store.Resolve("does-not-exist")
	assert.NotEqual(t, "does-not-exist", id)
	assert.Equal(t, 1, store.Count())
}

func TestRecordAppendsAndUpdatesActivity(t *testing.T) {
	store := NewStore()
	id := store.Resolve("")

	before, err := store.Get(id)
	require.NoError(t, err)

	store.Record(id, "question", "réponse", "raisonnement", "acaps")

	sess, err := store.Get(id)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "question", sess.Messages[0].UserMessage)
	assert.Equal(t, "réponse", sess.Messages[0].BotResponse)
	assert.Equal(t, "raisonnement", sess.Messages[0].Reasoning)
	assert.Equal(t, "acaps", sess.TeamUsed)
	assert.False(t, sess.LastActivity.Before(before.LastActivity))
}

func TestRecordUnknownIDIsNoOp(t *testing.T) {
	store := NewStore()

	store.Record("ghost", "m", "r", "", "global")
	assert.Equal(t, 0, store.Count())
}

func TestListSortsByLastActivityDesc(t *testing.T) {
	store := NewStore()

	first := store.Resolve("")
	time.Sleep(2 * time.Millisecond)
	second := store.Resolve("")
	time.Sleep(2 * time.Millisecond)
	store.Record(first, "q", "a", "", "ammc")

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0].SessionID)
	assert.Equal(t, second, list[1].SessionID)
	assert.Equal(t, 1, list[0].MessageCount)
}

func TestGetReturnsDeepCopy(t *testing.T) {
	store := NewStore()
	id := store.Resolve("")
	store.Record(id, "q", "a", "", "global")

	sess, err := store.Get(id)
	require.NoError(t, err)
	sess.Messages[0].BotResponse = "mutated"

	again, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Messages[0].BotResponse)
}

func TestDelete(t *testing.T) {
	store := NewStore()
	id := store.Resolve("")

	require.NoError(t, store.Delete(id))
	assert.ErrorIs(t, store.Delete(id), ErrNotFound)

	_, err := store.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentRecordSameSession(t *testing.T) {
	store := NewStore()
	id := store.Resolve("")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.Record(id, fmt.Sprintf("q%d", n), "a", "", "global")
		}(i)
	}
	wg.Wait()

	sess, err := store.Get(id)
	require.NoError(t, err)
	assert.Len(t, sess.Messages, 32)
}
