package game

import (
	"reflect"
	"sync"
	"time"

	"github.com/voidkat/astrotype-backend/internal"
)

// recorder is an in-memory Broadcaster capturing every emitted event.
type recordedEvent struct {
	target string
	msg    any
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) JoinRoom(roomID, playerID string) {}

func (r *recorder) ToRoom(roomID string, msg any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{target: "room:" + roomID, msg: msg})
}

func (r *recorder) ToPlayer(playerID string, msg any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{target: "player:" + playerID, msg: msg})
}

// typesFor returns the event types delivered to a target, in order.
func (r *recorder) typesFor(target string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		if ev.target == target {
			out = append(out, msgType(ev.msg))
		}
	}
	return out
}

func (r *recorder) has(target, eventType string) bool {
	for _, typ := range r.typesFor(target) {
		if typ == eventType {
			return true
		}
	}
	return false
}

func msgType(msg any) string {
	f := reflect.ValueOf(msg).FieldByName("Type")
	if !f.IsValid() {
		return ""
	}
	return f.String()
}

func fastConfig() internal.Config {
	return internal.Config{
		TickRate:          100,
		RoundDuration:     150 * time.Millisecond,
		SpawnGapMin:       10 * time.Millisecond,
		SpawnGapMax:       20 * time.Millisecond,
		CountdownFrom:     1,
		CountdownInterval: 5 * time.Millisecond,
		ReadyPoll:         5 * time.Millisecond,
	}
}

// newTestRoom builds a room with two seated players and a recording caster.
func newTestRoom(bank ...string) (*internal.Room, *recorder) {
	rec := &recorder{}
	room := NewRoom("room_test", bank, fastConfig(), rec)
	for i, id := range []string{"p1", "p2"} {
		room.Players[id] = &internal.Player{
			Id:          id,
			Username:    "player-" + id,
			Color:       internal.PlayerColors[i],
			Lives:       internal.StartingLives,
			IsConnected: true,
			JoinedAt:    time.Now(),
		}
	}
	return room, rec
}

// spawnLocked spawns one word under the room lock and returns it.
func spawnLocked(room *internal.Room) *internal.Word {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	return SpawnWord(room)
}
