package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Rob-Negrete/dura-gas/internal/core/domain"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists tank state in a single-row table plus a refill
// history table. The whole state is written transactionally on every
// save, which is fine at this write rate.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
    CREATE TABLE IF NOT EXISTS tank_state (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        current_level REAL NOT NULL,
        solar_roi_accumulated REAL NOT NULL DEFAULT 0,
        heating_mode TEXT NOT NULL,
        refill_strategy TEXT NOT NULL,
        custom_strategy_amount REAL NOT NULL DEFAULT 0,
        price_per_liter REAL NOT NULL DEFAULT 0,
        last_solar_update DATETIME
    );

    CREATE TABLE IF NOT EXISTS refill_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        date DATETIME NOT NULL,
        liters REAL NOT NULL,
        price_per_liter REAL NOT NULL,
        total_cost REAL NOT NULL,
        level_before REAL NOT NULL,
        level_after REAL NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_refill_history_date ON refill_history(date);
    `

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Load() (*domain.TankData, error) {
	var data domain.TankData
	var heatingMode, refillStrategy string
	var lastSolarUpdate sql.NullTime

	row := s.db.QueryRow(`SELECT current_level, solar_roi_accumulated, heating_mode,
        refill_strategy, custom_strategy_amount, price_per_liter, last_solar_update
        FROM tank_state WHERE id = 1`)
	err := row.Scan(&data.CurrentLevel, &data.SolarROIAccumulated, &heatingMode,
		&refillStrategy, &data.CustomStrategyAmount, &data.PricePerLiter, &lastSolarUpdate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data.HeatingMode = domain.HeatingMode(heatingMode)
	data.RefillStrategy = domain.RefillStrategy(refillStrategy)
	if lastSolarUpdate.Valid {
		t := lastSolarUpdate.Time
		data.LastSolarUpdate = &t
	}

	history, err := s.loadHistory()
	if err != nil {
		return nil, err
	}
	data.RefillHistory = history

	return &data, nil
}

func (s *SQLiteStore) loadHistory() ([]domain.RefillRecord, error) {
	rows, err := s.db.Query(`SELECT date, liters, price_per_liter, total_cost,
        level_before, level_after FROM refill_history ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.RefillRecord
	for rows.Next() {
		var r domain.RefillRecord
		if err := rows.Scan(&r.Date, &r.Liters, &r.PricePerLiter, &r.TotalCost,
			&r.LevelBefore, &r.LevelAfter); err != nil {
			return nil, err
		}
		history = append(history, r)
	}
	return history, rows.Err()
}

func (s *SQLiteStore) Save(data domain.TankData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var lastSolarUpdate *time.Time
	if data.LastSolarUpdate != nil {
		lastSolarUpdate = data.LastSolarUpdate
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO tank_state
        (id, current_level, solar_roi_accumulated, heating_mode, refill_strategy,
         custom_strategy_amount, price_per_liter, last_solar_update)
        VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
		data.CurrentLevel, data.SolarROIAccumulated, string(data.HeatingMode),
		string(data.RefillStrategy), data.CustomStrategyAmount, data.PricePerLiter,
		lastSolarUpdate)
	if err != nil {
		return err
	}

	// history is small (capped), rewrite it wholesale
	if _, err := tx.Exec(`DELETE FROM refill_history`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO refill_history
        (date, liters, price_per_liter, total_cost, level_before, level_after)
        VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range data.RefillHistory {
		if _, err := stmt.Exec(r.Date, r.Liters, r.PricePerLiter, r.TotalCost,
			r.LevelBefore, r.LevelAfter); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
