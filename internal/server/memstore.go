package server

import (
	"slices"
	"sync"
	"time"
)

// memStore keeps everything in maps behind one mutex. It backs tests
// and runs the server when no DATABASE_URL is configured.
type memStore struct {
	publisher
	mu        sync.Mutex
	nextUser  uint
	nextGame  uint
	users     map[uint]User
	games     map[uint]*memGame
	points    map[pointKey]int
	pointSeen []pointKey
	clock     func() time.Time
}

type memGame struct {
	id         uint
	createdAt  time.Time
	finishedAt *time.Time
	players    []uint
}

type pointKey struct {
	game      uint
	player    uint
	pointType int
}

func NewMemStore() Store {
	return &memStore{
		nextUser: 1,
		nextGame: 1,
		users:    make(map[uint]User),
		games:    make(map[uint]*memGame),
		points:   make(map[pointKey]int),
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *memStore) CreateUser(username, avatar string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := User{ID: s.nextUser, Username: username, Avatar: avatar}
	s.nextUser++
	s.users[user.ID] = user
	return &user, nil
}

func (s *memStore) GetUser(id uint) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *memStore) ListUsers() ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]User, 0, len(s.users))
	for _, user := range s.users {
		list = append(list, user)
	}
	slices.SortFunc(list, func(a, b User) int {
		return int(a.ID) - int(b.ID)
	})
	return list, nil
}

func (s *memStore) CreateGame() (*Game, error) {
	s.mu.Lock()
	game := &memGame{id: s.nextGame, createdAt: s.clock()}
	s.nextGame++
	s.games[game.id] = game
	snap := s.snapshotLocked(game)
	s.mu.Unlock()

	s.gameSaved(snap)
	return snap, nil
}

func (s *memStore) GetGame(id uint) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return s.snapshotLocked(game), nil
}

func (s *memStore) CurrentGame() (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.currentLocked()
	if current == nil {
		return nil, nil
	}
	return s.snapshotLocked(current), nil
}

// currentLocked picks the most-recently-created unfinished game, id
// breaking creation-time ties.
func (s *memStore) currentLocked() *memGame {
	var current *memGame
	for _, game := range s.games {
		if game.finishedAt != nil {
			continue
		}
		if current == nil ||
			game.createdAt.After(current.createdAt) ||
			(game.createdAt.Equal(current.createdAt) && game.id > current.id) {
			current = game
		}
	}
	return current
}

func (s *memStore) AddPlayer(gameID, userID uint) (*Game, error) {
	snap, err := func() (*Game, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		game, ok := s.games[gameID]
		if !ok {
			return nil, ErrGameNotFound
		}
		if _, ok := s.users[userID]; !ok {
			return nil, ErrUserNotFound
		}
		if !slices.Contains(game.players, userID) {
			game.players = append(game.players, userID)
		}
		return s.snapshotLocked(game), nil
	}()
	if err != nil {
		return nil, err
	}
	s.playersChanged(snap)
	return snap, nil
}

func (s *memStore) RemovePlayer(gameID, userID uint) (*Game, error) {
	snap, err := func() (*Game, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		game, ok := s.games[gameID]
		if !ok {
			return nil, ErrGameNotFound
		}
		if _, ok := s.users[userID]; !ok {
			return nil, ErrUserNotFound
		}
		game.players = slices.DeleteFunc(game.players, func(id uint) bool {
			return id == userID
		})
		return s.snapshotLocked(game), nil
	}()
	if err != nil {
		return nil, err
	}
	s.playersChanged(snap)
	return snap, nil
}

func (s *memStore) FinishGame(id uint) (*Game, error) {
	snap, err := func() (*Game, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		game, ok := s.games[id]
		if !ok {
			return nil, ErrGameNotFound
		}
		if game.finishedAt == nil {
			now := s.clock()
			game.finishedAt = &now
		}
		return s.snapshotLocked(game), nil
	}()
	if err != nil {
		return nil, err
	}
	s.gameSaved(snap)
	return snap, nil
}

func (s *memStore) UpsertPoint(gameID, playerID uint, pointType, value int) (*Point, error) {
	point, err := func() (*Point, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.games[gameID]; !ok {
			return nil, ErrGameNotFound
		}
		key := pointKey{game: gameID, player: playerID, pointType: pointType}
		if _, ok := s.points[key]; !ok {
			s.pointSeen = append(s.pointSeen, key)
		}
		s.points[key] = value
		return &Point{Type: pointType, Game: gameID, Player: playerID, Value: value}, nil
	}()
	if err != nil {
		return nil, err
	}
	s.pointSaved(point)
	return point, nil
}

func (s *memStore) ListPoints(gameID, playerID uint) ([]Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Point, 0)
	for _, key := range s.pointSeen {
		if key.game != gameID || key.player != playerID {
			continue
		}
		list = append(list, Point{
			Type:   key.pointType,
			Game:   key.game,
			Player: key.player,
			Value:  s.points[key],
		})
	}
	slices.SortFunc(list, func(a, b Point) int {
		return a.Type - b.Type
	})
	return list, nil
}

func (s *memStore) snapshotLocked(game *memGame) *Game {
	players := make([]User, 0, len(game.players))
	for _, id := range game.players {
		if user, ok := s.users[id]; ok {
			players = append(players, user)
		}
	}
	snap := &Game{
		ID:        game.id,
		CreatedAt: game.createdAt,
		Players:   players,
	}
	if game.finishedAt != nil {
		finished := *game.finishedAt
		snap.FinishedAt = &finished
	}
	return snap
}
