// persistence/memory.go
package persistence

import (
	"fmt"
	"sync"

	"github.com/wfunc/crossroads/models"
)

// Memory keeps match records in process memory. It backs tests and servers
// running with the database disabled.
type Memory struct {
	records []models.GormMatchRecord
	mutex   sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SaveMatchRecord(record *models.GormMatchRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, r := range m.records {
		if r.SessionID == record.SessionID {
			return fmt.Errorf("persistence: match %s already recorded", record.SessionID)
		}
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *Memory) RecentMatches(limit int) ([]models.GormMatchRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	// Newest first.
	var out []models.GormMatchRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *Memory) PlayerStanding(name string) (*models.PlayerStanding, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	standing := models.PlayerStanding{Name: name}
	for _, record := range m.records {
		rankings, ok := record.Standings["rankings"].([]interface{})
		if !ok {
			continue
		}
		for i, raw := range rankings {
			row, ok := raw.(map[string]interface{})
			if !ok || row["name"] != name {
				continue
			}
			standing.TotalGames++
			if i == 0 {
				standing.Wins++
			}
			if finished, _ := row["finished"].(bool); finished {
				standing.Finishes++
			}
			break
		}
	}

	if standing.TotalGames == 0 {
		return nil, ErrRecordNotFound
	}
	return &standing, nil
}

func (m *Memory) Close() error {
	return nil
}
