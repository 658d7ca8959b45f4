package internal

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/voidkat/astrotype-backend/internal/trie"
)

const (
	FieldWidth  = 1200
	FieldHeight = 800

	// Words are marked missed once they cross this line.
	MissLineY = FieldHeight - 120

	SpawnMarginLeft  = 40
	SpawnMarginRight = 160
	SpawnStartY      = -40.0

	WordSpeedBase   = 1.4
	WordSpeedJitter = 0.6

	StartingLives   = 3
	ScorePerChar    = 5
	WordBonus       = 10
	MissLifePenalty = 1

	MaxPlayersPerRoom = 2
)

// PlayerColors holds the two fixed colors assigned at pairing time.
var PlayerColors = []string{"#ff7878", "#7878ff"}

type GamePhase string

const (
	PhaseWaitingReady GamePhase = "waiting_ready"
	PhaseCountdown    GamePhase = "countdown"
	PhaseActive       GamePhase = "active"
	PhaseEnded        GamePhase = "ended"
)

type WordStatus string

const (
	WordFalling   WordStatus = "falling"
	WordLocked    WordStatus = "locked"
	WordCompleted WordStatus = "completed"
	WordMissed    WordStatus = "missed"
)

// Config carries the timing knobs of a round. Tests shrink these so a full
// lifecycle runs in milliseconds.
type Config struct {
	TickRate          int
	RoundDuration     time.Duration
	SpawnGapMin       time.Duration
	SpawnGapMax       time.Duration
	CountdownFrom     int
	CountdownInterval time.Duration
	ReadyPoll         time.Duration
}

func DefaultConfig() Config {
	return Config{
		TickRate:          30,
		RoundDuration:     300 * time.Second,
		SpawnGapMin:       600 * time.Millisecond,
		SpawnGapMax:       1200 * time.Millisecond,
		CountdownFrom:     3,
		CountdownInterval: time.Second,
		ReadyPoll:         50 * time.Millisecond,
	}
}

// Word is one falling typing target. Typed+Remaining always equals Text.
// Status only ever moves forward: falling -> locked -> completed, or
// falling|locked -> missed.
type Word struct {
	Id        string     `json:"id"`
	Text      string     `json:"text"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Speed     float64    `json:"speed"`
	Status    WordStatus `json:"status"`
	OwnerId   string     `json:"owner_id,omitempty"`
	Typed     string     `json:"typed"`
	Remaining string     `json:"remaining"`
}

// Position implements trie.PositionedRef so live words can be indexed.
func (w *Word) Position() (float64, float64) {
	return w.X, w.Y
}

type WordView struct {
	Id           string     `json:"id"`
	Text         string     `json:"text"`
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Typed        string     `json:"typed"`
	Remaining    string     `json:"remaining"`
	Status       WordStatus `json:"status"`
	ClaimedBy    string     `json:"claimed_by,omitempty"`
	TypingPlayer string     `json:"typing_player,omitempty"`
	OwnerColor   string     `json:"owner_color,omitempty"`
}

// ToPublic builds the wire view of a word. ClaimedBy is only exposed once the
// word is completed, TypingPlayer while it is locked or completed.
func (w *Word) ToPublic(players map[string]*Player) WordView {
	v := WordView{
		Id:        w.Id,
		Text:      w.Text,
		X:         w.X,
		Y:         w.Y,
		Typed:     w.Typed,
		Remaining: w.Remaining,
		Status:    w.Status,
	}
	if w.Status == WordCompleted {
		v.ClaimedBy = w.OwnerId
	}
	if w.Status == WordLocked || w.Status == WordCompleted {
		v.TypingPlayer = w.OwnerId
	}
	if owner, ok := players[w.OwnerId]; ok {
		v.OwnerColor = owner.Color
	}
	return v
}

type Player struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Color    string `json:"color"`
	Score    int    `json:"score"`
	Lives    int    `json:"lives"`
	Streak   int    `json:"streak"`

	CurrentWordId string    `json:"-"`
	IsReady       bool      `json:"is_ready"`
	IsConnected   bool      `json:"is_connected"`
	JoinedAt      time.Time `json:"joined_at"`
}

// PlayerView is the per-recipient score panel: each player gets their own
// canonical numbers plus the opponent's public score.
type PlayerView struct {
	Username      string `json:"username"`
	Score         int    `json:"score"`
	Lives         int    `json:"lives"`
	MyScore       int    `json:"my_score"`
	OpponentScore int    `json:"opponent_score"`
}

type Room struct {
	Id      string
	Players map[string]*Player

	// Falling-word state
	Words       map[string]*Word
	Bank        []string
	ActiveTexts map[string]struct{}
	UsedTexts   map[string]struct{}
	NextSpawnAt time.Time
	WordSeq     uint64

	// Prefix index over the active word set, maintained on spawn/despawn.
	Index *trie.Trie

	Phase     GamePhase
	StartedAt time.Time
	Running   bool

	Cfg    Config
	Caster Broadcaster
	Rng    *rand.Rand

	// Concurrency control
	Mu sync.RWMutex `json:"-"`

	// Context for cleanup
	Context context.Context    `json:"-"`
	Cancel  context.CancelFunc `json:"-"`
}
