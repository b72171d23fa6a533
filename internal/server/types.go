package server

import "time"

// Point categories. The wire value is the integer, not the name.
const (
	PointMilitary = 1
	PointCoins    = 2
	PointWonders  = 3
	PointCulture  = 4
	PointTrade    = 5
	PointGuild    = 6
	PointScience  = 7
	PointCities   = 8
	PointLeaders  = 9
)

type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type Game struct {
	ID         uint       `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Players    []User     `json:"players"`
}

// Finished reports whether the game has been closed for good.
func (g *Game) Finished() bool {
	return g != nil && g.FinishedAt != nil
}

type Point struct {
	Type   int  `json:"type"`
	Game   uint `json:"game"`
	Player uint `json:"player"`
	Value  int  `json:"value"`
}
