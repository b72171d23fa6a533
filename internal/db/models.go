package db

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"size:64;uniqueIndex;not null"`
	Avatar    string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Game struct {
	ID         uint       `gorm:"primaryKey"`
	CreatedAt  time.Time  `gorm:"not null;index"`
	UpdatedAt  time.Time  `gorm:"not null"`
	FinishedAt *time.Time `gorm:"index"`
	Players    []User     `gorm:"many2many:game_players"`
}

type Point struct {
	ID        uint      `gorm:"primaryKey"`
	GameID    uint      `gorm:"index;not null;uniqueIndex:idx_points_game_player_type"`
	PlayerID  uint      `gorm:"not null;uniqueIndex:idx_points_game_player_type"`
	Type      int       `gorm:"not null;uniqueIndex:idx_points_game_player_type"`
	Value     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	GameID    uint           `gorm:"index;not null"`
	PlayerID  *uint          `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
