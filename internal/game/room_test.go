package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidkat/astrotype-backend/internal"
)

func TestNewRoomEmptyBankFallsBack(t *testing.T) {
	room, _ := newTestRoom()
	assert.NotEmpty(t, room.Bank)

	// The fallback bank must actually spawn.
	w := spawnLocked(room)
	assert.Contains(t, room.Bank, w.Text)
}

func TestSpawnPrefersFreshTexts(t *testing.T) {
	room, _ := newTestRoom("rocket", "comet")

	first := spawnLocked(room)
	room.Mu.Lock()
	despawn(room, first.Id)
	second := SpawnWord(room)
	room.Mu.Unlock()

	// With the first text burned, the next spawn must take the other one.
	assert.NotEqual(t, first.Text, second.Text)
}

func TestSpawnReusesUsedTextsBeforeActiveOnes(t *testing.T) {
	room, _ := newTestRoom("rocket", "comet")

	room.Mu.Lock()
	room.UsedTexts["rocket"] = struct{}{}
	room.UsedTexts["comet"] = struct{}{}
	room.ActiveTexts["comet"] = struct{}{}
	w := SpawnWord(room)
	room.Mu.Unlock()

	// Everything is used, only "rocket" is inactive.
	assert.Equal(t, "rocket", w.Text)
}

func TestSpawnAcceptsDuplicateWhenBankExhausted(t *testing.T) {
	room, _ := newTestRoom("rocket")

	first := spawnLocked(room)
	second := spawnLocked(room)

	assert.Equal(t, "rocket", first.Text)
	assert.Equal(t, "rocket", second.Text)
	assert.NotEqual(t, first.Id, second.Id)
	assert.Len(t, room.Words, 2)
}

func TestSpawnIndexesWord(t *testing.T) {
	room, _ := newTestRoom("rocket")

	w := spawnLocked(room)
	assert.Equal(t, 1, room.Index.CountByInitial('r'))

	room.Mu.Lock()
	despawn(room, w.Id)
	room.Mu.Unlock()
	assert.Equal(t, 0, room.Index.CountByInitial('r'))
}

func TestWordIdsAreTimeOrdered(t *testing.T) {
	room, _ := newTestRoom("rocket", "comet", "meteor")

	var prev string
	for i := 0; i < 3; i++ {
		w := spawnLocked(room)
		if prev != "" {
			assert.Greater(t, w.Id, prev)
		}
		prev = w.Id
	}
}

func TestMissPenaltyHitsEveryPlayer(t *testing.T) {
	room, _ := newTestRoom("rocket")
	w := spawnLocked(room)

	// Lock the word to p1 and build a streak on both players.
	require.Equal(t, KeyProgress, TypeChar(room, "p1", "r").Kind)
	room.Players["p2"].Streak = 4

	room.Mu.Lock()
	w.Y = internal.MissLineY - w.Speed/2
	missed := advanceWords(room)
	room.Mu.Unlock()

	require.Equal(t, []string{w.Id}, missed)
	assert.Equal(t, internal.WordMissed, w.Status)

	// Shared life pool: the miss costs both players, not just the owner.
	assert.Equal(t, internal.StartingLives-1, room.Players["p1"].Lives)
	assert.Equal(t, internal.StartingLives-1, room.Players["p2"].Lives)
	assert.Zero(t, room.Players["p1"].Streak)
	assert.Zero(t, room.Players["p2"].Streak)
	assert.Empty(t, room.Players["p1"].CurrentWordId)
	assert.NotContains(t, room.Words, w.Id)
	assert.Contains(t, room.UsedTexts, "rocket")
}

func TestAdvanceSkipsTerminalWords(t *testing.T) {
	room, _ := newTestRoom("rocket")
	w := spawnLocked(room)

	room.Mu.Lock()
	w.Status = internal.WordCompleted
	y := w.Y
	missed := advanceWords(room)
	room.Mu.Unlock()

	assert.Empty(t, missed)
	assert.Equal(t, y, w.Y)
}

func TestLivesNeverGoNegative(t *testing.T) {
	room, _ := newTestRoom("rocket")
	room.Players["p1"].Lives = 0
	room.Players["p2"].Lives = 1

	w := spawnLocked(room)
	room.Mu.Lock()
	w.Y = internal.MissLineY
	advanceWords(room)
	allDead := room.AllDead()
	room.Mu.Unlock()

	assert.Zero(t, room.Players["p1"].Lives)
	assert.Zero(t, room.Players["p2"].Lives)
	assert.True(t, allDead)
}

func TestRunEndsWithinDuration(t *testing.T) {
	room, rec := newTestRoom("rocket", "comet")
	room.Players["p1"].IsReady = true
	room.Players["p2"].IsReady = true

	done := make(chan struct{})
	go func() {
		Run(room)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("round did not end within its duration")
	}

	room.Mu.RLock()
	phase := room.Phase
	room.Mu.RUnlock()
	assert.Equal(t, internal.PhaseEnded, phase)

	// Everyone got the lifecycle events, individually for game_over.
	assert.True(t, rec.has("room:room_test", "countdown"))
	assert.True(t, rec.has("room:room_test", "game_start"))
	assert.True(t, rec.has("player:p1", "game_over"))
	assert.True(t, rec.has("player:p2", "game_over"))
}

func TestRunEndsOnLifeExhaustion(t *testing.T) {
	room, rec := newTestRoom("rocket")
	cfg := fastConfig()
	cfg.RoundDuration = time.Minute // only life exhaustion can end this one
	room.Cfg = cfg
	room.Players["p1"].IsReady = true
	room.Players["p2"].IsReady = true
	room.Players["p1"].Lives = 0
	room.Players["p2"].Lives = 0

	done := make(chan struct{})
	go func() {
		Run(room)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("round did not end on life exhaustion")
	}
	assert.True(t, rec.has("player:p1", "game_over"))
}

func TestRunAbandonedBeforeReady(t *testing.T) {
	room, _ := newTestRoom("rocket")

	done := make(chan struct{})
	go func() {
		Run(room)
		close(done)
	}()

	room.Cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled room did not stop waiting for ready")
	}
}

func TestWinnerHasHigherScore(t *testing.T) {
	room, rec := newTestRoom("rocket")
	room.Players["p1"].Score = 40
	room.Players["p2"].Score = 65

	endGame(room)

	require.True(t, rec.has("player:p1", "game_over"))
	for _, ev := range rec.events {
		if msgType(ev.msg) != "game_over" {
			continue
		}
		data := ev.msg.(internal.Message[internal.GameOverData]).Data
		assert.Equal(t, "player-p2", data.Winner)
		assert.Equal(t, 65, data.Score)
	}
}
