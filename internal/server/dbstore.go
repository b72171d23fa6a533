package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"wonder-stats/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// dbStore is the Postgres-backed gateway. Every mutation commits first
// and publishes to subscribers afterwards; each mutation also leaves an
// audit event row behind.
type dbStore struct {
	publisher
	conn   *gorm.DB
	logger *slog.Logger
}

func NewDBStore(conn *gorm.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &dbStore{conn: conn, logger: logger}
}

func (s *dbStore) CreateUser(username, avatar string) (*User, error) {
	record := db.User{Username: username, Avatar: avatar}
	if err := s.conn.Create(&record).Error; err != nil {
		return nil, err
	}
	return toUser(record), nil
}

func (s *dbStore) GetUser(id uint) (*User, error) {
	var record db.User
	if err := s.conn.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUser(record), nil
}

func (s *dbStore) ListUsers() ([]User, error) {
	var records []db.User
	if err := s.conn.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]User, 0, len(records))
	for _, record := range records {
		list = append(list, *toUser(record))
	}
	return list, nil
}

func (s *dbStore) CreateGame() (*Game, error) {
	record := db.Game{}
	if err := s.conn.Create(&record).Error; err != nil {
		return nil, err
	}
	game := toGame(record)
	s.recordEvent(record.ID, nil, "game_created", EventPayload{GameID: record.ID})
	s.gameSaved(game)
	return game, nil
}

func (s *dbStore) GetGame(id uint) (*Game, error) {
	record, err := s.loadGame(id)
	if err != nil {
		return nil, err
	}
	return toGame(*record), nil
}

func (s *dbStore) CurrentGame() (*Game, error) {
	var record db.Game
	err := s.conn.Preload("Players").
		Where("finished_at IS NULL").
		Order("created_at DESC, id DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toGame(record), nil
}

func (s *dbStore) AddPlayer(gameID, userID uint) (*Game, error) {
	gameRecord, err := s.loadGame(gameID)
	if err != nil {
		return nil, err
	}
	var userRecord db.User
	if err := s.conn.First(&userRecord, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	err = s.conn.Model(gameRecord).Association("Players").Append(&userRecord)
	if err != nil && !isUniqueViolation(err) {
		return nil, err
	}
	updated, err := s.loadGame(gameID)
	if err != nil {
		return nil, err
	}
	game := toGame(*updated)
	s.recordEvent(gameID, &userID, "player_joined", EventPayload{GameID: gameID, PlayerID: userID})
	s.playersChanged(game)
	return game, nil
}

func (s *dbStore) RemovePlayer(gameID, userID uint) (*Game, error) {
	gameRecord, err := s.loadGame(gameID)
	if err != nil {
		return nil, err
	}
	var userRecord db.User
	if err := s.conn.First(&userRecord, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.conn.Model(gameRecord).Association("Players").Delete(&userRecord); err != nil {
		return nil, err
	}
	updated, err := s.loadGame(gameID)
	if err != nil {
		return nil, err
	}
	game := toGame(*updated)
	s.recordEvent(gameID, &userID, "player_left", EventPayload{GameID: gameID, PlayerID: userID})
	s.playersChanged(game)
	return game, nil
}

func (s *dbStore) FinishGame(id uint) (*Game, error) {
	err := s.conn.Transaction(func(tx *gorm.DB) error {
		var record db.Game
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGameNotFound
			}
			return err
		}
		if record.FinishedAt != nil {
			return nil
		}
		now := time.Now().UTC()
		record.FinishedAt = &now
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}
	updated, err := s.loadGame(id)
	if err != nil {
		return nil, err
	}
	game := toGame(*updated)
	s.recordEvent(id, nil, "game_finished", EventPayload{GameID: id, Finished: true})
	s.gameSaved(game)
	return game, nil
}

func (s *dbStore) UpsertPoint(gameID, playerID uint, pointType, value int) (*Point, error) {
	if _, err := s.GetGame(gameID); err != nil {
		return nil, err
	}
	record := db.Point{GameID: gameID, PlayerID: playerID, Type: pointType, Value: value}
	err := s.conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}, {Name: "player_id"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return nil, err
	}
	point := &Point{Type: pointType, Game: gameID, Player: playerID, Value: value}
	s.recordEvent(gameID, &playerID, "point_updated", EventPayload{
		GameID:    gameID,
		PlayerID:  playerID,
		PointType: pointType,
		Value:     value,
	})
	s.pointSaved(point)
	return point, nil
}

func (s *dbStore) ListPoints(gameID, playerID uint) ([]Point, error) {
	var records []db.Point
	err := s.conn.
		Where("game_id = ? AND player_id = ?", gameID, playerID).
		Order("type").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	list := make([]Point, 0, len(records))
	for _, record := range records {
		list = append(list, Point{
			Type:   record.Type,
			Game:   record.GameID,
			Player: record.PlayerID,
			Value:  record.Value,
		})
	}
	return list, nil
}

func (s *dbStore) loadGame(id uint) (*db.Game, error) {
	var record db.Game
	if err := s.conn.Preload("Players").First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &record, nil
}

// recordEvent writes an audit row. Audit failures are logged, not
// surfaced; they must not fail the mutation that already committed.
func (s *dbStore) recordEvent(gameID uint, playerID *uint, eventType string, payload EventPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal event payload", "type", eventType, "error", err)
		return
	}
	event := db.Event{
		GameID:   gameID,
		PlayerID: playerID,
		Type:     eventType,
		Payload:  datatypes.JSON(data),
	}
	if err := s.conn.Create(&event).Error; err != nil {
		s.logger.Error("record event", "type", eventType, "game_id", gameID, "error", err)
	}
}

func toUser(record db.User) *User {
	return &User{ID: record.ID, Username: record.Username, Avatar: record.Avatar}
}

func toGame(record db.Game) *Game {
	players := make([]User, 0, len(record.Players))
	for _, player := range record.Players {
		players = append(players, *toUser(player))
	}
	return &Game{
		ID:         record.ID,
		CreatedAt:  record.CreatedAt,
		FinishedAt: record.FinishedAt,
		Players:    players,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
