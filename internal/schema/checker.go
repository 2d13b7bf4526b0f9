// Package schema checks mapping documents against a live SQLite
// database: every physical table a table record names must exist, and
// every source field a field mapping reads must be a column of the
// aliased table. Findings are advisory warnings in the same shape the
// validation engine emits, so callers can merge both reports. Checks
// against a missing or stale database must not block validation, which
// is why nothing here ever escalates to an error severity.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mapcheck/internal/mapping"
	"mapcheck/internal/validation"
)

// Checker inspects a SQLite database for the objects a mapping references.
type Checker struct {
	db  *sql.DB
	log *zap.Logger
}

// NewChecker wraps an open database handle. The checker does not own the
// handle and never closes it.
func NewChecker(db *sql.DB, log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{db: db, log: log}
}

// Check scans the document's table records against the database. Subquery
// records are skipped: their definition is SQL text, not a table name.
// Field mappings whose source alias resolves to a checked table also get
// their source field checked against that table's columns.
func (c *Checker) Check(ctx context.Context, doc *mapping.Document) ([]validation.Issue, error) {
	var issues []validation.Issue

	// alias -> physical table, for the source-field pass below.
	tables := make(map[string]string)

	for _, tbl := range doc.Tables {
		if tbl.Subquery {
			continue
		}
		name := strings.TrimSpace(tbl.Definition)
		if name == "" {
			continue
		}

		exists, err := c.tableExists(ctx, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			issues = append(issues, warning(
				fmt.Sprintf("Table %q (alias %s) not found in database", name, tbl.Alias),
				map[string]any{"table": name, "alias": tbl.Alias},
			))
			continue
		}
		tables[tbl.Alias] = name
	}

	for _, fm := range doc.FieldMappings {
		if !fm.Active || fm.SourceAlias == "" || fm.SourceField == "" {
			continue
		}
		table, ok := tables[fm.SourceAlias]
		if !ok {
			continue
		}
		hasCol, err := c.columnExists(ctx, table, fm.SourceField)
		if err != nil {
			return nil, err
		}
		if !hasCol {
			issues = append(issues, warning(
				fmt.Sprintf("Column %s.%s not found in table %q", fm.SourceAlias, fm.SourceField, table),
				map[string]any{"table": table, "column": fm.SourceField, "alias": fm.SourceAlias},
			))
		}
	}

	c.log.Debug("schema check complete",
		zap.String("mapping", doc.Name),
		zap.Int("issues", len(issues)))
	return issues, nil
}

func (c *Checker) tableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`,
		name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query sqlite_master: %w", err)
	}
	return count > 0, nil
}

func (c *Checker) columnExists(ctx context.Context, table, column string) (bool, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("failed to read table info for %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("failed to scan column name: %w", err)
		}
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func warning(message string, details map[string]any) validation.Issue {
	return validation.Issue{
		Severity:  validation.SeverityWarning,
		Message:   message,
		Component: validation.ComponentSchema,
		Details:   details,
	}
}
