package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"netbox-reconciler/core/journal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	journalKind   string
	journalKey    string
	journalLimit  int
	journalOutput string
)

// journalCmd is the parent command for run journal operations.
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect recorded reconciliation runs",
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		j, l, err := openJournalFromConfig(ctx)
		if err != nil {
			return &ExitError{Code: ExitCommand, Err: err}
		}
		defer l.Sync()

		limit := journalLimit
		if limit <= 0 {
			limit = 20
		}
		runs, err := j.Recent(ctx, journal.Filter{Kind: journalKind, Key: journalKey, Limit: limit})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if journalOutput == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tRUN\tKIND\tKEY\tACTION\tCHANGED\tCHECK\tSTAGE\tERROR")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\t%t\t%s\t%s\n",
				r.StartedAt.Format(time.RFC3339), r.ID, r.Kind, r.Key, r.Action, r.Changed, r.CheckMode, r.Stage, r.ErrorCode)
		}
		return w.Flush()
	},
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run id>",
	Short: "Show one run and its archived report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		j, l, err := openJournalFromConfig(ctx)
		if err != nil {
			return &ExitError{Code: ExitCommand, Err: err}
		}
		defer l.Sync()

		run, err := j.Get(ctx, args[0])
		if errors.Is(err, journal.ErrNotFound) {
			return &ExitError{Code: ExitFailed, Err: err}
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(run); err != nil {
			return err
		}

		if run.ReportKey == "" {
			return nil
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Storage.Enabled {
			l.Info("Report archive disabled, not fetching report", zap.String("report_key", run.ReportKey))
			return nil
		}
		arc, err := openArchive(ctx, cfg.Storage, l)
		if err != nil {
			return err
		}
		report, err := arc.Fetch(ctx, run.ReportKey)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", report)
		return err
	},
}

func openJournalFromConfig(ctx context.Context) (*journal.Journal, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	l, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	j, err := openJournal(ctx, cfg.Database, l)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if journalLimit == 0 {
		journalLimit = cfg.Journal.ListLimit
	}
	return j, l, nil
}

func init() {
	journalListCmd.Flags().StringVar(&journalKind, "kind", "", "Only runs of this kind")
	journalListCmd.Flags().StringVar(&journalKey, "key", "", "Only runs for this natural key")
	journalListCmd.Flags().IntVar(&journalLimit, "limit", 0, "Maximum number of runs (default from JOURNAL_LIST_LIMIT)")
	journalListCmd.Flags().StringVarP(&journalOutput, "output", "o", "text", "Output format: text or json")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)
	RootCmd.AddCommand(journalCmd)
}
