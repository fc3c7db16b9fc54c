package model

// Player is a participant waiting in the matchmaking queue or seated in a
// game.
type Player struct {
	ID    string
	Color Color
}

// ClientPlayer is the seat as shown to clients. TimeLeft is in tenths of a
// second.
type ClientPlayer struct {
	ID       string `json:"name"`
	Color    Color  `json:"color"`
	TimeLeft int    `json:"timeLeft"`
}
