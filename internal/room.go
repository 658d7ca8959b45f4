package internal

// Methods (Room Struct)

// AllReady reports whether exactly two players joined and both flagged ready.
// Caller must hold the room lock.
func (r *Room) AllReady() bool {
	if len(r.Players) != MaxPlayersPerRoom {
		return false
	}
	for _, p := range r.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

// AllDead reports whether every player has run out of lives.
// Caller must hold the room lock.
func (r *Room) AllDead() bool {
	for _, p := range r.Players {
		if p.Alive() {
			return false
		}
	}
	return true
}

// PublicPlayers builds the per-recipient score panels, keyed by player id.
// Each entry carries that player's own numbers plus the opponent's score.
// Caller must hold the room lock.
func (r *Room) PublicPlayers() map[string]PlayerView {
	ids := make([]string, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}

	views := make(map[string]PlayerView, len(r.Players))
	for id, p := range r.Players {
		opponentScore := 0
		if len(ids) == MaxPlayersPerRoom {
			other := ids[0]
			if other == id {
				other = ids[1]
			}
			opponentScore = r.Players[other].Score
		}
		views[id] = p.View(opponentScore)
	}
	return views
}

// Snapshot returns the public view of every active word.
// Caller must hold the room lock.
func (r *Room) Snapshot() []WordView {
	views := make([]WordView, 0, len(r.Words))
	for _, w := range r.Words {
		views = append(views, w.ToPublic(r.Players))
	}
	return views
}
