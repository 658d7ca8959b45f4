package internal

// Alive reports whether the player can still act in the round.
func (p *Player) Alive() bool {
	return p.Lives > 0
}

// View builds the per-recipient panel for this player given the opponent's
// public score.
func (p *Player) View(opponentScore int) PlayerView {
	return PlayerView{
		Username:      p.Username,
		Score:         p.Score,
		Lives:         p.Lives,
		MyScore:       p.Score,
		OpponentScore: opponentScore,
	}
}
