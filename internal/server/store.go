package server

import (
	"errors"
	"slices"
	"sync"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrUserNotFound = errors.New("user not found")
)

// Subscriber receives mutation notifications from a Store. Callbacks
// run synchronously after the mutation commits, on the mutating
// goroutine, and carry a snapshot of the affected record.
type Subscriber interface {
	PlayersChanged(game *Game)
	GameSaved(game *Game)
	PointSaved(point *Point)
}

// Store is the gateway to persisted users, games and points. Mutations
// are atomic per record; concurrent point upserts on the same
// (game, player, type) tuple serialize to last-writer-wins. The current
// game is the most-recently-created one that has not finished; nothing
// stops a second game from being created while one is active.
type Store interface {
	CreateUser(username, avatar string) (*User, error)
	GetUser(id uint) (*User, error)
	ListUsers() ([]User, error)

	CreateGame() (*Game, error)
	GetGame(id uint) (*Game, error)
	CurrentGame() (*Game, error)
	AddPlayer(gameID, userID uint) (*Game, error)
	RemovePlayer(gameID, userID uint) (*Game, error)
	FinishGame(id uint) (*Game, error)

	UpsertPoint(gameID, playerID uint, pointType, value int) (*Point, error)
	ListPoints(gameID, playerID uint) ([]Point, error)

	Subscribe(sub Subscriber)
}

// publisher is the shared subscriber registry embedded by both store
// implementations. Stores must publish after releasing their own locks:
// subscribers query the store from inside the callback.
type publisher struct {
	subsMu sync.Mutex
	subs   []Subscriber
}

func (p *publisher) Subscribe(sub Subscriber) {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	p.subs = append(p.subs, sub)
}

func (p *publisher) subscribers() []Subscriber {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	return slices.Clone(p.subs)
}

func (p *publisher) playersChanged(game *Game) {
	for _, sub := range p.subscribers() {
		sub.PlayersChanged(game)
	}
}

func (p *publisher) gameSaved(game *Game) {
	for _, sub := range p.subscribers() {
		sub.GameSaved(game)
	}
}

func (p *publisher) pointSaved(point *Point) {
	for _, sub := range p.subscribers() {
		sub.PointSaved(point)
	}
}
