// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormMatchRecord is the immutable record of one finished game. In-flight
// game state is never persisted; only the outcome is.
type GormMatchRecord struct {
	gorm.Model
	SessionID       string                 `gorm:"uniqueIndex;not null"`
	Rounds          int                    `gorm:"not null"`
	Turns           int                    `gorm:"not null"`
	DurationSeconds int                    `gorm:"default:0"`
	Standings       map[string]interface{} `gorm:"type:jsonb;not null"`
}

// PlayerStanding aggregates one named player's results across matches.
type PlayerStanding struct {
	Name       string `json:"name"`
	TotalGames int    `json:"total_games"`
	Wins       int    `json:"wins"`
	Finishes   int    `json:"finishes"`
}
