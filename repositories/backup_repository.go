package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// backupTables is the fixed dump order. Parents come before children so a
// restore can replay inserts top to bottom.
var backupTables = []string{
	"tournaments",
	"notices",
	"teams",
	"players",
	"events",
	"group_tables",
	"group_entries",
	"draws",
	"matches",
	"scores",
	"ratings",
}

type BackupRepository interface {
	// Dump reads every row of every table into a map keyed by table name.
	// Column values come back as the driver produced them.
	Dump(ctx context.Context) (map[string][]map[string]interface{}, error)
}

type postgresBackupRepository struct {
	db *sql.DB
}

func NewPostgresBackupRepository(db *sql.DB) BackupRepository {
	return &postgresBackupRepository{db: db}
}

func (r *postgresBackupRepository) Dump(ctx context.Context) (map[string][]map[string]interface{}, error) {
	out := make(map[string][]map[string]interface{}, len(backupTables))
	for _, table := range backupTables {
		rows, err := r.dumpTable(ctx, table)
		if err != nil {
			return nil, err
		}
		out[table] = rows
	}
	return out, nil
}

func (r *postgresBackupRepository) dumpTable(ctx context.Context, table string) ([]map[string]interface{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT * FROM `+table+` ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to dump table %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	out := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		record := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			// Byte slices JSON-encode as base64, so surface text columns
			// as strings.
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
