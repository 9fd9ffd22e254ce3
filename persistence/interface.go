// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/crossroads/models"
)

// Database stores finished-match records. Implementations decide their own
// transaction strategy, so the interface stays driver-neutral.
type Database interface {
	SaveMatchRecord(record *models.GormMatchRecord) error
	RecentMatches(limit int) ([]models.GormMatchRecord, error)
	PlayerStanding(name string) (*models.PlayerStanding, error)
	Close() error
}

var ErrRecordNotFound = fmt.Errorf("record not found")
