package loader

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"mapcheck/internal/mapping"
)

// SQLiteSource reads mapping documents from the metadata database. Records
// live in a flat mapping_records table mirroring the spreadsheet columns,
// ordered by a stable position column so the engine sees the same sequence
// the spreadsheet had.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLiteSource opens the metadata database read-side. WAL and a busy
// timeout keep concurrent readers from tripping over the importer.
func OpenSQLiteSource(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal_mode: %w", err)
	}

	src := &SQLiteSource{db: db}
	if err := src.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return src, nil
}

// NewSQLiteSource wraps an existing handle, e.g. one shared with the
// importer in tests.
func NewSQLiteSource(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

func (s *SQLiteSource) ensureSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS mapping_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mapping_name TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		type TEXT NOT NULL,
		alias TEXT NOT NULL DEFAULT '',
		definition TEXT NOT NULL DEFAULT '',
		join_type TEXT NOT NULL DEFAULT '',
		left_alias TEXT NOT NULL DEFAULT '',
		right_alias TEXT NOT NULL DEFAULT '',
		join_condition TEXT NOT NULL DEFAULT '',
		load_strategy TEXT NOT NULL DEFAULT '',
		target_field_name TEXT NOT NULL DEFAULT '',
		transformation_logic TEXT NOT NULL DEFAULT '',
		source_alias TEXT NOT NULL DEFAULT '',
		source_field TEXT NOT NULL DEFAULT '',
		default_value TEXT NOT NULL DEFAULT '',
		is_active INTEGER,
		target_pk INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_mapping_records_name
		ON mapping_records(mapping_name, position);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize mapping_records schema: %w", err)
	}
	return nil
}

// Load yields the ordered record sequence for mappingName.
func (s *SQLiteSource) Load(ctx context.Context, mappingName string) ([]mapping.RawRecord, error) {
	const query = `
	SELECT type, alias, definition, join_type, left_alias, right_alias,
	       join_condition, load_strategy, target_field_name,
	       transformation_logic, source_alias, source_field, default_value,
	       is_active, target_pk
	FROM mapping_records
	WHERE mapping_name = ?
	ORDER BY position, id`

	rows, err := s.db.QueryContext(ctx, query, mappingName)
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping records: %w", err)
	}
	defer rows.Close()

	var records []mapping.RawRecord
	for rows.Next() {
		var rec mapping.RawRecord
		var isActive sql.NullBool
		var targetPK sql.NullBool
		if err := rows.Scan(
			&rec.Type, &rec.Alias, &rec.Definition, &rec.JoinType,
			&rec.LeftAlias, &rec.RightAlias, &rec.JoinCondition,
			&rec.LoadStrategy, &rec.TargetFieldName, &rec.TransformationLogic,
			&rec.SourceAlias, &rec.SourceField, &rec.DefaultValue,
			&isActive, &targetPK,
		); err != nil {
			return nil, fmt.Errorf("failed to scan mapping record: %w", err)
		}
		rec.MappingName = mappingName
		if isActive.Valid {
			v := isActive.Bool
			rec.IsActive = &v
		}
		rec.TargetPK = targetPK.Valid && targetPK.Bool
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mapping records: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMappingNotFound, mappingName)
	}
	return records, nil
}

// Mappings lists the known mapping names alphabetically.
func (s *SQLiteSource) Mappings(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT mapping_name FROM mapping_records ORDER BY mapping_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan mapping name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Insert appends records for a mapping, assigning positions after the
// current maximum. Used by the importer and by tests.
func (s *SQLiteSource) Insert(ctx context.Context, mappingName string, records []mapping.RawRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM mapping_records WHERE mapping_name = ?`,
		mappingName).Scan(&next); err != nil {
		return fmt.Errorf("failed to find next position: %w", err)
	}

	const insert = `
	INSERT INTO mapping_records (
		mapping_name, position, type, alias, definition, join_type,
		left_alias, right_alias, join_condition, load_strategy,
		target_field_name, transformation_logic, source_alias, source_field,
		default_value, is_active, target_pk
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i, rec := range records {
		var isActive any
		if rec.IsActive != nil {
			isActive = *rec.IsActive
		}
		if _, err := tx.ExecContext(ctx, insert,
			mappingName, next+i, rec.Type, rec.Alias, rec.Definition,
			rec.JoinType, rec.LeftAlias, rec.RightAlias, rec.JoinCondition,
			rec.LoadStrategy, rec.TargetFieldName, rec.TransformationLogic,
			rec.SourceAlias, rec.SourceField, rec.DefaultValue,
			isActive, rec.TargetPK,
		); err != nil {
			return fmt.Errorf("failed to insert mapping record: %w", err)
		}
	}

	return tx.Commit()
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error { return s.db.Close() }
