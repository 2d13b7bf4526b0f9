package main

import (
	"database/sql"
	"fmt"

	"mapcheck/internal/config"
	"mapcheck/internal/loader"
	"mapcheck/internal/store"
	"mapcheck/internal/tools/builtin"
	"mapcheck/internal/validation"
)

// openSource builds the record source from configuration. The CSV path
// wins when both are set. The returned closer is a no-op for CSV.
func openSource(cfg *config.Config) (builtin.Source, func() error, error) {
	if cfg.Source.CSVPath != "" {
		return loader.NewCSVSource(cfg.Source.CSVPath), func() error { return nil }, nil
	}
	src, err := loader.OpenSQLiteSource(cfg.Source.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open mapping source: %w", err)
	}
	return src, src.Close, nil
}

// openStore opens the audit store, or returns nil when none is
// configured. A broken store is reported but never blocks validation.
func openStore(cfg *config.Config) *store.Store {
	if cfg.Store.Path == "" {
		return nil
	}
	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		logger.Warn("audit store unavailable: " + err.Error())
		return nil
	}
	return st
}

// openSchemaDB opens the physical database for schema checks, if one is
// configured.
func openSchemaDB(cfg *config.Config) (*sql.DB, error) {
	if cfg.Schema.DatabasePath == "" {
		return nil, nil
	}
	db, err := sql.Open("sqlite", cfg.Schema.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema database: %w", err)
	}
	return db, nil
}

// newValidator builds the engine from configuration.
func newValidator(cfg *config.Config) *validation.Validator {
	opts := []validation.Option{validation.WithLogger(logger)}
	if cfg.Validation.LegacyExpressionScan {
		opts = append(opts, validation.WithLegacyExpressionScan())
	}
	return validation.New(opts...)
}
