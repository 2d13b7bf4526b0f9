package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mapcheck/internal/store"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record or list verdicts on validated mappings",
}

var feedbackLimit int

var feedbackRecordCmd = &cobra.Command{
	Use:   "record <mapping> <up|down> [comment]",
	Short: "Record a verdict on a mapping",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		st := openStore(cfg)
		if st == nil {
			return fmt.Errorf("no store configured, set store.path")
		}
		defer st.Close()

		comment := ""
		if len(args) == 3 {
			comment = args[2]
		}

		id, err := st.RecordFeedback(args[0], args[1], comment)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "recorded %s\n", id)
		return nil
	},
}

var feedbackListCmd = &cobra.Command{
	Use:   "list [mapping]",
	Short: "List recorded feedback, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st := openStore(cfg)
		if st == nil {
			return fmt.Errorf("no store configured, set store.path")
		}
		defer st.Close()

		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		entries, err := st.ListFeedback(name, feedbackLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stdout, "no feedback recorded")
			return nil
		}
		for _, fb := range entries {
			fmt.Fprint(os.Stdout, renderFeedback(fb))
		}
		return nil
	},
}

func renderFeedback(fb store.Feedback) string {
	mark := okStyle.Render("▲")
	if fb.Verdict == store.VerdictDown {
		mark = errorStyle.Render("▼")
	}
	line := fmt.Sprintf("%s %s  %s", mark, fb.MappingName, fb.CreatedAt.Format("2006-01-02 15:04"))
	if fb.Comment != "" {
		line += subtleStyle.Render("  " + fb.Comment)
	}
	return line + "\n"
}

func init() {
	feedbackListCmd.Flags().IntVar(&feedbackLimit, "limit", 20, "maximum entries to list")
	feedbackCmd.AddCommand(feedbackRecordCmd)
	feedbackCmd.AddCommand(feedbackListCmd)
}
