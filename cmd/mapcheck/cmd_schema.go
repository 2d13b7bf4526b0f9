package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mapcheck/internal/mapping"
	"mapcheck/internal/schema"
	"mapcheck/internal/validation"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <mapping>",
	Short: "Check a mapping's tables and columns against the physical database",
	Long: `Schema loads the mapping and verifies every referenced table exists in
the configured database, and every source field is a column of its
aliased table. Findings are advisory warnings; the command fails only
when the check itself cannot run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		issues, err := runSchemaCheck(ctx, args[0])
		if err != nil {
			return err
		}

		if len(issues) == 0 {
			fmt.Fprintln(os.Stdout, okStyle.Render("SCHEMA OK"))
			return nil
		}
		for _, issue := range issues {
			fmt.Fprintf(os.Stdout, "  %s %s\n", warnStyle.Render("! WARN"), issue.Message)
		}
		return nil
	},
}

// runSchemaCheck loads a mapping and checks it against the configured
// physical database.
func runSchemaCheck(ctx context.Context, name string) ([]validation.Issue, error) {
	if cfg.Schema.DatabasePath == "" {
		return nil, fmt.Errorf("no schema database configured, set schema.database_path")
	}

	src, closeSrc, err := openSource(cfg)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	records, err := src.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping %q: %w", name, err)
	}

	db, err := openSchemaDB(cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	doc := mapping.Classify(name, records)
	return schema.NewChecker(db, logger.Named("schema")).Check(ctx, doc)
}
