package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/forgelab/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetUserBodyweight returns the most recent logged bodyweight. No entries
// yields 0 without error; downstream scoring treats that as "bodyweight
// unknown".
func (db *DB) GetUserBodyweight(ctx context.Context) (float64, error) {
	var kg float64
	err := db.Pool.QueryRow(ctx,
		`SELECT weight_kg FROM weight_history ORDER BY date DESC LIMIT 1`,
	).Scan(&kg)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying bodyweight: %w", err)
	}
	return kg, nil
}

// GetUserWeightHistory returns all bodyweight entries, oldest first.
func (db *DB) GetUserWeightHistory(ctx context.Context) ([]models.WeightEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT to_char(date, 'YYYY-MM-DD'), weight_kg FROM weight_history ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying weight history: %w", err)
	}
	defer rows.Close()

	var entries []models.WeightEntry
	for rows.Next() {
		var e models.WeightEntry
		if err := rows.Scan(&e.Date, &e.WeightKg); err != nil {
			return nil, fmt.Errorf("scanning weight entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpsertWeightEntry records a bodyweight measurement, replacing any existing
// entry for the same date.
func (db *DB) UpsertWeightEntry(ctx context.Context, entry models.WeightEntry) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO weight_history (date, weight_kg) VALUES ($1, $2)
		 ON CONFLICT (date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg`,
		entry.Date, entry.WeightKg)
	if err != nil {
		return fmt.Errorf("upserting weight entry: %w", err)
	}
	return nil
}
