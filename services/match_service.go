// services/match_service.go
package services

import (
	"encoding/json"

	"github.com/wfunc/crossroads/game"
	"github.com/wfunc/crossroads/models"
	"github.com/wfunc/crossroads/persistence"
)

// MatchService turns finished games into stored match records and answers
// standings queries over them.
type MatchService struct {
	db persistence.Database
}

func NewMatchService(db persistence.Database) *MatchService {
	return &MatchService{db: db}
}

// RecordMatch persists one game summary. The rankings are stored as a jsonb
// document so standings queries work across driver implementations.
func (s *MatchService) RecordMatch(summary game.Summary) error {
	raw, err := json.Marshal(summary.Rankings)
	if err != nil {
		return err
	}
	var rankings []interface{}
	if err := json.Unmarshal(raw, &rankings); err != nil {
		return err
	}

	record := &models.GormMatchRecord{
		SessionID:       summary.SessionID,
		Rounds:          summary.Rounds,
		Turns:           summary.Turns,
		DurationSeconds: int(summary.Duration.Seconds()),
		Standings: map[string]interface{}{
			"rankings": rankings,
		},
	}
	return s.db.SaveMatchRecord(record)
}

func (s *MatchService) RecentMatches(limit int) ([]models.GormMatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.db.RecentMatches(limit)
}

func (s *MatchService) Standing(name string) (*models.PlayerStanding, error) {
	return s.db.PlayerStanding(name)
}
