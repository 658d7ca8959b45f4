package game

import (
	"log"

	"github.com/voidkat/astrotype-backend/internal"
)

// =============================================================================
// KEYSTROKE RESOLUTION
// =============================================================================

type KeyKind string

const (
	KeyNoop      KeyKind = "noop"
	KeyProgress  KeyKind = "progress"
	KeyCompleted KeyKind = "completed"
	KeyBadKey    KeyKind = "bad_key"
)

// KeyResult reports how a keystroke resolved, with the snapshots the caller
// needs to broadcast without re-locking the room.
type KeyResult struct {
	Kind        KeyKind
	Word        internal.WordView
	Players     map[string]internal.PlayerView
	CompletedBy string
}

// TypeChar resolves one keystroke under the room's exclusive lock. The
// scan-then-lock sequence stays inside the critical section so two players'
// simultaneous first-letter keystrokes can never both claim the same word.
//
// Rules: a player with a locked word may only continue that word; a player
// without one claims the first unowned falling word whose remaining suffix
// starts with the key. Anything else is bad_key (streak reset, ownership
// kept) or noop (unknown/dead player, non-letter input).
func TypeChar(room *internal.Room, playerID, ch string) KeyResult {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	p, ok := room.Players[playerID]
	if !ok || !p.Alive() {
		return KeyResult{Kind: KeyNoop}
	}

	ch = normalizeKey(ch)
	if ch == "" {
		return KeyResult{Kind: KeyNoop}
	}

	// Locked word first: the player may only continue their own claim.
	if p.CurrentWordId != "" {
		if w, held := room.Words[p.CurrentWordId]; held {
			if w.OwnerId == playerID && len(w.Remaining) > 0 && w.Remaining[:1] == ch {
				return acceptChar(room, p, w)
			}
			p.Streak = 0
			return KeyResult{Kind: KeyBadKey}
		}
		// Stale reference, the word despawned; fall through to the scan.
		p.CurrentWordId = ""
	}

	for _, w := range room.Words {
		if w.Status != internal.WordFalling || w.OwnerId != "" {
			continue
		}
		if len(w.Remaining) == 0 || w.Remaining[:1] != ch {
			continue
		}
		w.OwnerId = playerID
		w.Status = internal.WordLocked
		p.CurrentWordId = w.Id
		return acceptChar(room, p, w)
	}

	p.Streak = 0
	return KeyResult{Kind: KeyBadKey}
}

// acceptChar consumes one correct character: suffix to prefix, per-char score,
// streak bump, and the completion bonus when the suffix empties.
// Caller must hold the room lock.
func acceptChar(room *internal.Room, p *internal.Player, w *internal.Word) KeyResult {
	w.Typed += w.Remaining[:1]
	w.Remaining = w.Remaining[1:]
	p.Score += internal.ScorePerChar
	p.Streak++

	if len(w.Remaining) > 0 {
		return KeyResult{
			Kind:    KeyProgress,
			Word:    w.ToPublic(room.Players),
			Players: room.PublicPlayers(),
		}
	}

	w.Status = internal.WordCompleted
	p.Score += internal.WordBonus
	p.CurrentWordId = ""
	view := w.ToPublic(room.Players)
	despawn(room, w.Id)

	log.Printf("[TypeChar] room=%s player=%s completed %q (score=%d)",
		room.Id, p.Id, w.Text, p.Score)
	return KeyResult{
		Kind:        KeyCompleted,
		Word:        view,
		Players:     room.PublicPlayers(),
		CompletedBy: p.Id,
	}
}

func normalizeKey(ch string) string {
	if len(ch) != 1 {
		return ""
	}
	c := ch[0]
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	if c < 'a' || c > 'z' {
		return ""
	}
	return string(c)
}

// BestHint consults the prefix index for the most urgent word matching the
// player's typed prefix. The index is not on the keystroke hot path; this is
// its assist-feature consumer.
func BestHint(room *internal.Room, prefix string) *internal.WordView {
	room.Mu.RLock()
	defer room.Mu.RUnlock()

	entry, ok := room.Index.BestMatch(prefix)
	if !ok {
		return nil
	}
	if w, live := entry.Ref.(*internal.Word); live {
		view := w.ToPublic(room.Players)
		return &view
	}
	for _, w := range room.Words {
		if w.Text == entry.Text {
			view := w.ToPublic(room.Players)
			return &view
		}
	}
	return nil
}
