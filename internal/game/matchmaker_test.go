package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidkat/astrotype-backend/internal"
)

func newTestMatchmaker() (*Matchmaker, *recorder) {
	rec := &recorder{}
	return NewMatchmaker([]string{"rocket", "comet"}, fastConfig(), rec), rec
}

func TestEnqueueIdempotent(t *testing.T) {
	mm, rec := newTestMatchmaker()

	mm.Enqueue("c1", "ada")
	mm.Enqueue("c1", "ada")

	waiting, rooms := mm.Counts()
	assert.Equal(t, 1, waiting)
	assert.Zero(t, rooms)
	assert.True(t, rec.has("player:c1", "waiting_for_opponent"))
}

func TestPairingIsFIFO(t *testing.T) {
	mm, rec := newTestMatchmaker()

	mm.Enqueue("c1", "ada")
	mm.Enqueue("c2", "grace")
	mm.Enqueue("c3", "edsger")

	waiting, rooms := mm.Counts()
	assert.Equal(t, 1, waiting, "third client stays queued")
	assert.Equal(t, 1, rooms)

	// The two oldest waiters got paired and told about it.
	r1 := mm.roomFor("c1")
	require.NotNil(t, r1)
	assert.Same(t, r1, mm.roomFor("c2"))
	assert.Nil(t, mm.roomFor("c3"))
	assert.True(t, rec.has("room:"+r1.Id, "game_found"))

	r1.Mu.RLock()
	colors := []string{r1.Players["c1"].Color, r1.Players["c2"].Color}
	lives := r1.Players["c1"].Lives
	r1.Mu.RUnlock()
	assert.ElementsMatch(t, internal.PlayerColors, colors)
	assert.Equal(t, internal.StartingLives, lives)

	// Cleanup: abandon the room so its goroutine exits.
	mm.RemoveClient("c1")
}

func TestFullMatchRunsToCompletion(t *testing.T) {
	mm, rec := newTestMatchmaker()

	mm.Enqueue("c1", "ada")
	mm.Enqueue("c2", "grace")
	mm.MarkReady("c1")
	mm.MarkReady("c2")

	assert.Eventually(t, func() bool {
		_, rooms := mm.Counts()
		return rooms == 0
	}, 5*time.Second, 10*time.Millisecond, "room should retire after the round ends")

	assert.True(t, rec.has("player:c1", "game_over"))
	assert.True(t, rec.has("player:c2", "game_over"))
}

func TestEventsWithoutRoomAreDropped(t *testing.T) {
	mm, rec := newTestMatchmaker()

	mm.MarkReady("ghost")
	mm.HandleKeystroke("ghost", "r")
	mm.HandleHint("ghost", "ro")
	mm.RemoveClient("ghost")

	assert.Empty(t, rec.typesFor("player:ghost"))
}

func TestKeystrokeBadKeyGoesToSenderOnly(t *testing.T) {
	mm, rec := newTestMatchmaker()

	mm.Enqueue("c1", "ada")
	mm.Enqueue("c2", "grace")

	// No words on the field yet: any letter is a bad key.
	mm.HandleKeystroke("c1", "z")

	assert.True(t, rec.has("player:c1", "bad_key"))
	assert.False(t, rec.has("player:c2", "bad_key"))

	mm.RemoveClient("c1")
}

func TestHintWithoutMatchReturnsEmptyResult(t *testing.T) {
	mm, rec := newTestMatchmaker()

	mm.Enqueue("c1", "ada")
	mm.Enqueue("c2", "grace")
	mm.HandleHint("c1", "zzz")

	assert.True(t, rec.has("player:c1", "hint_result"))

	mm.RemoveClient("c1")
}

func TestRemoveClientPreMatchAbandonsRoom(t *testing.T) {
	mm, _ := newTestMatchmaker()

	mm.Enqueue("c1", "ada")
	mm.Enqueue("c2", "grace")
	_, rooms := mm.Counts()
	require.Equal(t, 1, rooms)

	mm.RemoveClient("c1")

	assert.Eventually(t, func() bool {
		_, rooms := mm.Counts()
		return rooms == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRemoveClientMidRoundForfeits(t *testing.T) {
	// Long round: only life exhaustion can end it.
	cfg := fastConfig()
	cfg.RoundDuration = time.Minute
	mm := NewMatchmaker([]string{"rocket", "comet"}, cfg, &recorder{})

	mm.Enqueue("c1", "ada")
	mm.Enqueue("c2", "grace")
	room := mm.roomFor("c1")
	require.NotNil(t, room)

	mm.MarkReady("c1")
	mm.MarkReady("c2")

	require.Eventually(t, func() bool {
		room.Mu.RLock()
		defer room.Mu.RUnlock()
		return room.Phase == internal.PhaseActive
	}, 2*time.Second, 5*time.Millisecond)

	mm.RemoveClient("c1")

	room.Mu.RLock()
	lives := room.Players["c1"].Lives
	connected := room.Players["c1"].IsConnected
	room.Mu.RUnlock()
	assert.Zero(t, lives)
	assert.False(t, connected)

	// Forfeit alone does not end the round; the opponent plays on.
	room.Mu.RLock()
	alive := room.Players["c2"].Alive()
	room.Mu.RUnlock()
	assert.True(t, alive)

	// Cleanup so the goroutine exits quickly.
	mm.RemoveClient("c2")
	assert.Eventually(t, func() bool {
		_, rooms := mm.Counts()
		return rooms == 0
	}, 5*time.Second, 10*time.Millisecond)
}
