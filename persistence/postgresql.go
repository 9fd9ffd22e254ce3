// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/wfunc/crossroads/models"
)

// PostgreSQL is the plain database/sql match record store. It writes to the
// same table layout as the GORM implementation, so the two are
// interchangeable behind the Database interface.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS gorm_match_records (
            id SERIAL PRIMARY KEY,
            session_id VARCHAR(255) UNIQUE NOT NULL,
            rounds INT NOT NULL,
            turns INT NOT NULL,
            duration_seconds INT DEFAULT 0,
            standings JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_match_records_session_id ON gorm_match_records(session_id);
        CREATE INDEX IF NOT EXISTS idx_match_records_created_at ON gorm_match_records(created_at);
    `)
	return err
}

func (p *PostgreSQL) SaveMatchRecord(record *models.GormMatchRecord) error {
	standings, err := json.Marshal(record.Standings)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO gorm_match_records (session_id, rounds, turns, duration_seconds, standings)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err = p.db.ExecContext(ctx, query,
		record.SessionID, record.Rounds, record.Turns, record.DurationSeconds, standings)
	return err
}

func (p *PostgreSQL) RecentMatches(limit int) ([]models.GormMatchRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
        SELECT session_id, rounds, turns, duration_seconds, standings
        FROM gorm_match_records
        ORDER BY created_at DESC
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GormMatchRecord
	for rows.Next() {
		var record models.GormMatchRecord
		var standings []byte
		if err := rows.Scan(&record.SessionID, &record.Rounds, &record.Turns,
			&record.DurationSeconds, &standings); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(standings, &record.Standings); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (p *PostgreSQL) PlayerStanding(name string) (*models.PlayerStanding, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	standing := models.PlayerStanding{Name: name}
	query := `
        SELECT
            COUNT(*),
            SUM(CASE WHEN standings->'rankings'->0->>'name' = $1 THEN 1 ELSE 0 END),
            SUM(CASE WHEN EXISTS (
                SELECT 1 FROM jsonb_array_elements(standings->'rankings') r
                WHERE r->>'name' = $1 AND (r->>'finished')::boolean
            ) THEN 1 ELSE 0 END)
        FROM gorm_match_records
        WHERE standings->'rankings' @> $2
    `
	err := p.db.QueryRowContext(ctx, query, name, fmt.Sprintf(`[{"name": %q}]`, name)).
		Scan(&standing.TotalGames, &standing.Wins, &standing.Finishes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	if standing.TotalGames == 0 {
		return nil, ErrRecordNotFound
	}
	return &standing, nil
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
