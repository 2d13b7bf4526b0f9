package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mapcheck/internal/validation"
)

var (
	validateJSON   bool
	validateSchema bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [mapping...]",
	Short: "Validate one or more mapping documents",
	Long: `Validate runs the full check sequence over each named mapping and
prints a report. With no names, every mapping in the source is
validated. Exit status is 1 when any mapping has errors and 2 when
validation itself could not run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		src, closeSrc, err := openSource(cfg)
		if err != nil {
			return fmt.Errorf("%w: %v", errProcessingError, err)
		}
		defer closeSrc()

		names := args
		if len(names) == 0 {
			names, err = src.Mappings(ctx)
			if err != nil {
				return fmt.Errorf("%w: %v", errProcessingError, err)
			}
		}

		st := openStore(cfg)
		if st != nil {
			defer st.Close()
		}

		validator := newValidator(cfg)

		var anyInvalid, anyFailed bool
		for _, name := range names {
			result := validator.ValidateSource(ctx, src, name)

			if st != nil {
				if _, err := st.RecordRun(name, result); err != nil {
					logger.Warn("failed to record run",
						zap.String("mapping", name), zap.Error(err))
				}
			}

			if validateSchema && result.Success {
				attachSchemaIssues(ctx, name, &result)
			}

			if err := printResult(name, result); err != nil {
				return fmt.Errorf("%w: %v", errProcessingError, err)
			}

			if !result.Success {
				anyFailed = true
			} else if !result.Valid {
				anyInvalid = true
			}
		}

		switch {
		case anyFailed:
			return errProcessingError
		case anyInvalid:
			return errInvalidMapping
		default:
			return nil
		}
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "emit the raw JSON report")
	validateCmd.Flags().BoolVar(&validateSchema, "schema", false, "also check tables and columns against the configured database")
}

// attachSchemaIssues appends advisory schema findings to the report.
// Schema problems never change validity.
func attachSchemaIssues(ctx context.Context, name string, result *validation.Result) {
	issues, err := runSchemaCheck(ctx, name)
	if err != nil {
		logger.Warn("schema check skipped",
			zap.String("mapping", name), zap.Error(err))
		return
	}
	result.Issues = append(result.Issues, issues...)
	result.Warnings = append(result.Warnings, issues...)
	result.Summary.TotalIssues += len(issues)
	result.Summary.WarningCount += len(issues)
}

func printResult(name string, result validation.Result) error {
	if validateJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Fprint(os.Stdout, renderReport(name, result))
	return nil
}
