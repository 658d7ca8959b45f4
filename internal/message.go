package internal

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

type WaitingData struct {
	WaitingCount int `json:"waiting_count"`
}

type GameFoundData struct {
	Room    string            `json:"room"`
	Players map[string]string `json:"players"`
}

type CountdownData struct {
	Count int `json:"count"`
}

type GameStartData struct {
	Players  map[string]PlayerView `json:"players"`
	Duration int                   `json:"duration"`
}

type WordSpawnData struct {
	Words []WordView `json:"words"`
}

type StateUpdateData struct {
	Players  map[string]PlayerView `json:"players"`
	Words    []WordView            `json:"words"`
	TimeLeft int                   `json:"time_left"`
}

type WordMissedData struct {
	WordIds []string `json:"wordIds"`
}

type WordUpdateData struct {
	Word    WordView              `json:"word"`
	Players map[string]PlayerView `json:"players"`
}

type WordCompletedData struct {
	Word        WordView              `json:"word"`
	CompletedBy string                `json:"completed_by"`
	Players     map[string]PlayerView `json:"players"`
}

type GameOverData struct {
	Players map[string]PlayerView `json:"players"`
	Winner  string                `json:"winner"`
	Score   int                   `json:"score"`
}

type HintResultData struct {
	Word *WordView `json:"word"`
}
