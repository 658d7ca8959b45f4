package game

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voidkat/astrotype-backend/internal"
)

// =============================================================================
// MATCHMAKING
// =============================================================================

type waitingClient struct {
	id       string
	username string
}

// Matchmaker owns the waiting queue and the room registry. Pairing is
// strictly FIFO: the two oldest waiters get the next room. One Matchmaker is
// constructed at process start and handed to whatever dispatches inbound
// events; there is no package-level state.
type Matchmaker struct {
	mu           sync.Mutex
	waiting      []waitingClient
	waitingSet   map[string]struct{}
	rooms        map[string]*internal.Room
	roomByClient map[string]string

	bank   []string
	cfg    internal.Config
	caster internal.Broadcaster
}

func NewMatchmaker(bank []string, cfg internal.Config, caster internal.Broadcaster) *Matchmaker {
	return &Matchmaker{
		waitingSet:   make(map[string]struct{}),
		rooms:        make(map[string]*internal.Room),
		roomByClient: make(map[string]string),
		bank:         bank,
		cfg:          cfg,
		caster:       caster,
	}
}

// Enqueue adds a client to the waiting queue and pairs if possible.
// Re-enqueueing a waiting client is a no-op beyond a fresh waiting count.
func (m *Matchmaker) Enqueue(clientID, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, queued := m.waitingSet[clientID]; !queued {
		m.waiting = append(m.waiting, waitingClient{id: clientID, username: username})
		m.waitingSet[clientID] = struct{}{}
		log.Printf("[Enqueue] client=%s (%s) queued, waiting=%d", clientID, username, len(m.waiting))
	}

	m.caster.ToPlayer(clientID, internal.Message[internal.WaitingData]{
		Type: "waiting_for_opponent",
		Data: internal.WaitingData{WaitingCount: len(m.waiting)},
	})

	m.tryPair()
}

// tryPair pops pairs of waiters into new rooms until fewer than two remain.
// Caller must hold m.mu.
func (m *Matchmaker) tryPair() {
	for len(m.waiting) >= 2 {
		first, second := m.waiting[0], m.waiting[1]
		m.waiting = m.waiting[2:]
		delete(m.waitingSet, first.id)
		delete(m.waitingSet, second.id)

		roomID := "room_" + uuid.NewString()
		room := NewRoom(roomID, m.bank, m.cfg, m.caster)
		for i, c := range []waitingClient{first, second} {
			room.Players[c.id] = &internal.Player{
				Id:          c.id,
				Username:    c.username,
				Color:       internal.PlayerColors[i],
				Lives:       internal.StartingLives,
				IsConnected: true,
				JoinedAt:    time.Now(),
			}
			m.roomByClient[c.id] = roomID
			m.caster.JoinRoom(roomID, c.id)
		}
		m.rooms[roomID] = room

		log.Printf("[tryPair] paired %s and %s into %s", first.id, second.id, roomID)
		m.caster.ToRoom(roomID, internal.Message[internal.GameFoundData]{
			Type: "game_found",
			Data: internal.GameFoundData{
				Room: roomID,
				Players: map[string]string{
					first.id:  first.username,
					second.id: second.username,
				},
			},
		})

		go m.runRoom(room)
	}
}

func (m *Matchmaker) runRoom(room *internal.Room) {
	Run(room)
	m.retireRoom(room)
}

// retireRoom drops a finished room and its client index entries.
func (m *Matchmaker) retireRoom(room *internal.Room) {
	room.Cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, room.Id)
	for clientID, roomID := range m.roomByClient {
		if roomID == room.Id {
			delete(m.roomByClient, clientID)
		}
	}
	log.Printf("[retireRoom] room=%s retired, active rooms=%d", room.Id, len(m.rooms))
}

// roomFor resolves a client to their room, or nil when the client has none.
func (m *Matchmaker) roomFor(clientID string) *internal.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	roomID, ok := m.roomByClient[clientID]
	if !ok {
		return nil
	}
	return m.rooms[roomID]
}

// MarkReady flags a client ready in their room. Events for clients with no
// room are dropped.
func (m *Matchmaker) MarkReady(clientID string) {
	room := m.roomFor(clientID)
	if room == nil {
		log.Printf("[MarkReady] client=%s has no room, dropping", clientID)
		return
	}

	room.Mu.Lock()
	if p, ok := room.Players[clientID]; ok {
		p.IsReady = true
		log.Printf("[MarkReady] room=%s: %s marked ready", room.Id, p.Username)
	}
	room.Mu.Unlock()
}

// HandleKeystroke resolves a keystroke and broadcasts its outcome: progress
// and completion go to both players with per-recipient panels, bad_key only
// to the sender, noop to nobody.
func (m *Matchmaker) HandleKeystroke(clientID, ch string) {
	room := m.roomFor(clientID)
	if room == nil {
		return
	}

	result := TypeChar(room, clientID, ch)
	switch result.Kind {
	case KeyProgress:
		for id, view := range result.Players {
			m.caster.ToPlayer(id, internal.Message[internal.WordUpdateData]{
				Type: "word_update",
				Data: internal.WordUpdateData{
					Word:    result.Word,
					Players: map[string]internal.PlayerView{id: view},
				},
			})
		}
	case KeyCompleted:
		for id, view := range result.Players {
			m.caster.ToPlayer(id, internal.Message[internal.WordCompletedData]{
				Type: "word_completed",
				Data: internal.WordCompletedData{
					Word:        result.Word,
					CompletedBy: result.CompletedBy,
					Players:     map[string]internal.PlayerView{id: view},
				},
			})
		}
	case KeyBadKey:
		m.caster.ToPlayer(clientID, internal.Message[struct{}]{Type: "bad_key"})
	}
}

// HandleHint answers a prefix-hint request from the room's prefix index.
func (m *Matchmaker) HandleHint(clientID, prefix string) {
	room := m.roomFor(clientID)
	if room == nil {
		return
	}

	m.caster.ToPlayer(clientID, internal.Message[internal.HintResultData]{
		Type: "hint_result",
		Data: internal.HintResultData{Word: BestHint(room, prefix)},
	})
}

// RemoveClient handles a disconnect. Before the round starts the room is
// abandoned; mid-round the player forfeits (lives to zero) and the room's own
// end checks conclude the match.
func (m *Matchmaker) RemoveClient(clientID string) {
	m.mu.Lock()
	if _, queued := m.waitingSet[clientID]; queued {
		delete(m.waitingSet, clientID)
		for i, c := range m.waiting {
			if c.id == clientID {
				m.waiting = append(m.waiting[:i], m.waiting[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()

	room := m.roomFor(clientID)
	if room == nil {
		return
	}

	room.Mu.Lock()
	p, ok := room.Players[clientID]
	if !ok {
		room.Mu.Unlock()
		return
	}
	p.IsConnected = false
	preMatch := room.Phase == internal.PhaseWaitingReady || room.Phase == internal.PhaseCountdown
	if !preMatch {
		// A still-locked word stays on the field and falls to a miss.
		p.CurrentWordId = ""
		p.Lives = 0
		log.Printf("[RemoveClient] room=%s: %s forfeited mid-round", room.Id, p.Username)
	}
	room.Mu.Unlock()

	if preMatch {
		log.Printf("[RemoveClient] room=%s: %s left before start, abandoning room", room.Id, p.Username)
		room.Cancel()
	}
}

// Counts reports queue and room registry sizes for the health endpoint.
func (m *Matchmaker) Counts() (waiting, rooms int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiting), len(m.rooms)
}
