package game

import (
	"log"
	"time"

	"github.com/samber/lo"

	"github.com/voidkat/astrotype-backend/internal"
)

// =============================================================================
// ROUND LIFECYCLE
// =============================================================================

// Run drives a room through its full lifecycle:
// waiting for ready -> countdown -> active tick loop -> ended.
// It is the room's single goroutine of execution; every state mutation
// happens under the room lock, broadcasts happen after release.
func Run(room *internal.Room) {
	room.Mu.Lock()
	room.Running = true
	room.Mu.Unlock()

	defer endGame(room)

	if !waitForReady(room) {
		log.Printf("[Run] room=%s: abandoned before both players were ready", room.Id)
		return
	}

	if !runCountdown(room) {
		return
	}

	runActive(room)
}

// waitForReady polls at low frequency until both players flag ready. Returns
// false when the room context is cancelled first (players left pre-match).
func waitForReady(room *internal.Room) bool {
	ticker := time.NewTicker(room.Cfg.ReadyPoll)
	defer ticker.Stop()

	for {
		select {
		case <-room.Context.Done():
			return false
		case <-ticker.C:
			room.Mu.RLock()
			ready := room.AllReady()
			room.Mu.RUnlock()
			if ready {
				return true
			}
		}
	}
}

// runCountdown emits the descending countdown, then game_start with the round
// duration and both score panels.
func runCountdown(room *internal.Room) bool {
	room.Mu.Lock()
	room.Phase = internal.PhaseCountdown
	room.Mu.Unlock()

	for c := room.Cfg.CountdownFrom; c >= 1; c-- {
		room.Caster.ToRoom(room.Id, internal.Message[internal.CountdownData]{
			Type: "countdown",
			Data: internal.CountdownData{Count: c},
		})
		select {
		case <-room.Context.Done():
			return false
		case <-time.After(room.Cfg.CountdownInterval):
		}
	}

	room.Mu.Lock()
	room.Phase = internal.PhaseActive
	room.StartedAt = time.Now()
	room.NextSpawnAt = time.Now().Add(nextSpawnGap(room))
	players := room.PublicPlayers()
	room.Mu.Unlock()

	log.Printf("[runCountdown] room=%s: starting round (duration=%v)", room.Id, room.Cfg.RoundDuration)
	room.Caster.ToRoom(room.Id, internal.Message[internal.GameStartData]{
		Type: "game_start",
		Data: internal.GameStartData{
			Players:  players,
			Duration: int(room.Cfg.RoundDuration.Seconds()),
		},
	})
	return true
}

// runActive is the fixed-rate tick loop. Each iteration spawns on schedule,
// advances physics, resolves misses, pushes per-player snapshots, and exits
// on duration expiry or total life exhaustion. Tick cost is subtracted from
// the sleep so the rate stays bounded regardless of word count.
func runActive(room *internal.Room) {
	interval := time.Second / time.Duration(room.Cfg.TickRate)

	for {
		t0 := time.Now()

		select {
		case <-room.Context.Done():
			return
		default:
		}

		room.Mu.Lock()
		elapsed := time.Since(room.StartedAt)
		if elapsed >= room.Cfg.RoundDuration {
			room.Running = false
			room.Mu.Unlock()
			log.Printf("[runActive] room=%s: duration reached, ending round", room.Id)
			return
		}

		var spawned []internal.WordView
		if now := time.Now(); now.After(room.NextSpawnAt) {
			w := SpawnWord(room)
			spawned = append(spawned, w.ToPublic(room.Players))
			room.NextSpawnAt = now.Add(nextSpawnGap(room))
		}

		missed := advanceWords(room)

		players := room.PublicPlayers()
		wordViews := room.Snapshot()
		timeLeft := max(0, int((room.Cfg.RoundDuration - time.Since(room.StartedAt)).Seconds()))
		allDead := room.AllDead()
		if allDead {
			room.Running = false
		}
		room.Mu.Unlock()

		if len(spawned) > 0 {
			room.Caster.ToRoom(room.Id, internal.Message[internal.WordSpawnData]{
				Type: "word_spawn",
				Data: internal.WordSpawnData{Words: spawned},
			})
		}
		if len(missed) > 0 {
			room.Caster.ToRoom(room.Id, internal.Message[internal.WordMissedData]{
				Type: "word_missed",
				Data: internal.WordMissedData{WordIds: missed},
			})
		}
		for id, view := range players {
			room.Caster.ToPlayer(id, internal.Message[internal.StateUpdateData]{
				Type: "state_update",
				Data: internal.StateUpdateData{
					Players:  map[string]internal.PlayerView{id: view},
					Words:    wordViews,
					TimeLeft: timeLeft,
				},
			})
		}

		if allDead {
			log.Printf("[runActive] room=%s: all players out of lives, ending round", room.Id)
			return
		}

		if cost := time.Since(t0); cost < interval {
			time.Sleep(interval - cost)
		}
	}
}

// endGame determines the winner (higher score; ties fall to iteration order)
// and sends each player their own final panel plus the winner's name.
func endGame(room *internal.Room) {
	room.Mu.Lock()
	room.Phase = internal.PhaseEnded
	room.Running = false

	winnerName := "Nobody"
	winnerScore := 0
	if len(room.Players) > 0 {
		winner := lo.MaxBy(lo.Values(room.Players), func(a, b *internal.Player) bool {
			return a.Score > b.Score
		})
		winnerName = winner.Username
		winnerScore = winner.Score
	}
	players := room.PublicPlayers()
	room.Mu.Unlock()

	log.Printf("[endGame] room=%s: winner=%s score=%d", room.Id, winnerName, winnerScore)
	for id, view := range players {
		room.Caster.ToPlayer(id, internal.Message[internal.GameOverData]{
			Type: "game_over",
			Data: internal.GameOverData{
				Players: map[string]internal.PlayerView{id: view},
				Winner:  winnerName,
				Score:   winnerScore,
			},
		})
	}
}
