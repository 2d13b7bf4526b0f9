package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mapcheck/internal/validation"
	"mapcheck/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [mapping...]",
	Short: "Revalidate the mapping file whenever it changes",
	Long: `Watch validates the named mappings (or all of them) and then keeps
watching the CSV file, rerunning validation after each save. Meant to
run next to the spreadsheet while someone edits it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Source.CSVPath == "" {
			return fmt.Errorf("watch needs a CSV source, set --csv or source.csv_path")
		}

		ctx, cancel := signalContext()
		defer cancel()

		src, closeSrc, err := openSource(cfg)
		if err != nil {
			return err
		}
		defer closeSrc()

		names := args
		if len(names) == 0 {
			names, err = src.Mappings(ctx)
			if err != nil {
				return err
			}
		}

		handler := func(name string, result validation.Result) {
			fmt.Fprint(os.Stdout, renderReport(name, result))
		}

		w := watch.New(cfg.Source.CSVPath, names, src, newValidator(cfg),
			cfg.Debounce(), handler, logger.Named("watch"))
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}
