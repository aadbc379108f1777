package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/neilberkman/proofa/internal/core/export"
	"github.com/neilberkman/proofa/internal/core/loader"
	"github.com/neilberkman/proofa/internal/core/score"
)

var (
	historyFormat string
	historySince  string
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history <workspace-id>",
	Short: "Print a workspace transcript",
	Long: `Print the transcript of a workspace, oldest message first, with the
score the judge gave along the way.

--since accepts natural language ("yesterday", "2 hours ago", "last monday")
or a date (2025-01-31).

Examples:
  proofa history 5f2a
  proofa history 5f2a --since "yesterday"
  proofa history 5f2a --format yaml -o poster.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "Output format (text, md, json, yaml)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Only messages after this time")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "Write to a file instead of stdout")
}

func runHistory(cmd *cobra.Command, args []string) error {
	exporter, err := export.NewExporter(historyFormat)
	if err != nil {
		return err
	}

	var since time.Time
	if historySince != "" {
		t := parseDate(historySince, time.Now())
		if t == nil {
			return fmt.Errorf("could not understand --since %q", historySince)
		}
		since = *t
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout)
	defer cancel()

	res, err := loader.New(a.api, a.logger).Load(ctx, args[0])
	if err != nil {
		return err
	}

	// The score is computed over the whole history, not the filtered part
	snap, _ := score.NewAggregator(res.Session.CurrentScore).Recompute(res.History)
	transcript := export.NewTranscript(res.Session, snap, export.Since(res.History, since))

	out := os.Stdout
	if historyOutput != "" {
		f, err := os.Create(historyOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if err := exporter.Export(transcript, out); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if historyOutput != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d message(s) to %s\n", len(transcript.Messages), historyOutput)
	}
	return nil
}

// parseDate tries a few fixed layouts first, then natural language
func parseDate(s string, now time.Time) *time.Time {
	formats := []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, time.Local); err == nil {
			return &t
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	if r, err := w.Parse(s, now); err == nil && r != nil {
		return &r.Time
	}
	return nil
}
