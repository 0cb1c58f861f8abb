package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/songshift/internal/models"
)

// MappingRepository stores source id to external id mappings in the mappings table.
//
// Rows are insert-only: saving a table never overwrites an existing source id.
type MappingRepository struct {
	db *sql.DB
}

// NewMappingRepository creates a new MappingRepository with the given database connection
func NewMappingRepository(db *sql.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Load reads every mapping in insertion order.
func (r *MappingRepository) Load(ctx context.Context) (*models.MappingTable, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT source_id, external_id FROM mappings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer rows.Close()

	table := models.NewMappingTable()
	for rows.Next() {
		var sourceID, externalID string
		if err := rows.Scan(&sourceID, &externalID); err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		if err := table.Put(sourceID, externalID); err != nil {
			return nil, fmt.Errorf("corrupt mapping row: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return table, nil
}

// Save inserts every entry of table not already stored, in one transaction.
func (r *MappingRepository) Save(ctx context.Context, table *models.MappingTable) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO mappings (source_id, external_id) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sourceID := range table.Keys() {
		externalID, _ := table.Get(sourceID)
		if _, err := stmt.ExecContext(ctx, sourceID, externalID); err != nil {
			return fmt.Errorf("failed to insert mapping %s: %w", sourceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mappings: %w", err)
	}
	return nil
}

func (r *MappingRepository) String() string {
	return "sqlite:mappings"
}
