// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/crossroads/models"
)

// GormPostgreSQL is the GORM-backed match record store.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormMatchRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveMatchRecord persists one finished game. The session id is unique, so
// a retried save of the same match is a no-op failure rather than a dup.
func (p *GormPostgreSQL) SaveMatchRecord(record *models.GormMatchRecord) error {
	return p.db.Create(record).Error
}

func (p *GormPostgreSQL) RecentMatches(limit int) ([]models.GormMatchRecord, error) {
	var records []models.GormMatchRecord
	err := p.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// PlayerStanding aggregates the named player's results with a raw jsonb
// query over the standings column.
func (p *GormPostgreSQL) PlayerStanding(name string) (*models.PlayerStanding, error) {
	var standing models.PlayerStanding
	standing.Name = name

	err := p.db.Raw(`
        SELECT
            COUNT(*) AS total_games,
            SUM(CASE WHEN standings->'rankings'->0->>'name' = ? THEN 1 ELSE 0 END) AS wins,
            SUM(CASE WHEN EXISTS (
                SELECT 1 FROM jsonb_array_elements(standings->'rankings') r
                WHERE r->>'name' = ? AND (r->>'finished')::boolean
            ) THEN 1 ELSE 0 END) AS finishes
        FROM gorm_match_records
        WHERE standings->'rankings' @> ?`,
		name, name, fmt.Sprintf(`[{"name": %q}]`, name),
	).Scan(&standing).Error
	if err != nil {
		return nil, err
	}
	if standing.TotalGames == 0 {
		return nil, ErrRecordNotFound
	}
	return &standing, nil
}

// Transaction runs fn atomically. It is not part of the Database interface;
// callers that need it hold the concrete type.
func (p *GormPostgreSQL) Transaction(fn func(tx *gorm.DB) error) error {
	return p.db.Transaction(fn)
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
