package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/voidkat/astrotype-backend/internal"
	"github.com/voidkat/astrotype-backend/internal/trie"
	"github.com/voidkat/astrotype-backend/internal/words"
)

// =============================================================================
// ROOM CONSTRUCTION & WORD STATE
// =============================================================================

// NewRoom builds a match room over the given word bank. An empty bank falls
// back to the built-in default so the room can always spawn.
func NewRoom(id string, bank []string, cfg internal.Config, caster internal.Broadcaster) *internal.Room {
	if len(bank) == 0 {
		log.Printf("[NewRoom] room=%s: empty word bank, falling back to default list", id)
		bank = words.DefaultBank()
	}

	ctx, cancel := context.WithCancel(context.Background())
	room := &internal.Room{
		Id:          id,
		Players:     make(map[string]*internal.Player),
		Words:       make(map[string]*internal.Word),
		Bank:        bank,
		ActiveTexts: make(map[string]struct{}),
		UsedTexts:   make(map[string]struct{}),
		Index:       trie.New(),

		Phase:  internal.PhaseWaitingReady,
		Cfg:    cfg,
		Caster: caster,
		Rng:    rand.New(rand.NewSource(time.Now().UnixNano())),

		Mu:      sync.RWMutex{},
		Context: ctx,
		Cancel:  cancel,
	}
	room.NextSpawnAt = time.Now().Add(nextSpawnGap(room))

	log.Printf("[NewRoom] created room %s (bank=%d words)", id, len(bank))
	return room
}

func nextSpawnGap(room *internal.Room) time.Duration {
	span := room.Cfg.SpawnGapMax - room.Cfg.SpawnGapMin
	if span <= 0 {
		return room.Cfg.SpawnGapMin
	}
	return room.Cfg.SpawnGapMin + time.Duration(room.Rng.Int63n(int64(span)))
}

// chooseSpawnText picks the next word text: prefer never-used inactive texts,
// then any inactive text, then an unconstrained random pick (duplicate
// accepted) once the whole bank is on screen.
// Caller must hold the room lock.
func chooseSpawnText(room *internal.Room) string {
	fresh := lo.Filter(room.Bank, func(text string, _ int) bool {
		_, active := room.ActiveTexts[text]
		_, used := room.UsedTexts[text]
		return !active && !used
	})
	if len(fresh) > 0 {
		return fresh[room.Rng.Intn(len(fresh))]
	}

	inactive := lo.Filter(room.Bank, func(text string, _ int) bool {
		_, active := room.ActiveTexts[text]
		return !active
	})
	if len(inactive) > 0 {
		return inactive[room.Rng.Intn(len(inactive))]
	}

	return room.Bank[room.Rng.Intn(len(room.Bank))]
}

// SpawnWord creates one falling word above the visible field and indexes it.
// Word ids are time-ordered: unix millis plus a per-room sequence.
// Caller must hold the room lock.
func SpawnWord(room *internal.Room) *internal.Word {
	text := chooseSpawnText(room)
	room.WordSeq++

	w := &internal.Word{
		Id:        fmt.Sprintf("w_%d_%06d", time.Now().UnixMilli(), room.WordSeq),
		Text:      text,
		X:         float64(internal.SpawnMarginLeft + room.Rng.Intn(internal.FieldWidth-internal.SpawnMarginLeft-internal.SpawnMarginRight)),
		Y:         internal.SpawnStartY,
		Speed:     internal.WordSpeedBase + room.Rng.Float64()*internal.WordSpeedJitter,
		Status:    internal.WordFalling,
		Remaining: text,
	}

	room.Words[w.Id] = w
	room.ActiveTexts[text] = struct{}{}
	room.Index.Insert(trie.Entry{Text: text, Ref: w})
	return w
}

// despawn drops a word from active state and marks its text as used, making
// it eligible again only once fresh texts run out.
// Caller must hold the room lock.
func despawn(room *internal.Room, wordID string) {
	w, ok := room.Words[wordID]
	if !ok {
		return
	}
	delete(room.Words, wordID)
	delete(room.ActiveTexts, w.Text)
	room.UsedTexts[w.Text] = struct{}{}
	room.Index.Remove(w.Text)
}

// advanceWords moves every live word down by its speed and resolves misses: a
// word crossing the miss line is released from its owner, costs EVERY player
// one life (shared life pool, not a possession penalty), and resets streaks.
// Returns the ids of words missed this tick.
// Caller must hold the room lock.
func advanceWords(room *internal.Room) []string {
	var missed []string
	for _, w := range room.Words {
		if w.Status == internal.WordCompleted || w.Status == internal.WordMissed {
			continue
		}
		w.Y += w.Speed
		if w.Y < internal.MissLineY {
			continue
		}

		w.Status = internal.WordMissed
		missed = append(missed, w.Id)
		for _, p := range room.Players {
			if p.CurrentWordId == w.Id {
				p.CurrentWordId = ""
			}
			p.Lives = max(0, p.Lives-internal.MissLifePenalty)
			p.Streak = 0
		}
	}

	for _, id := range missed {
		despawn(room, id)
	}
	return missed
}
