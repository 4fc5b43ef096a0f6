package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var errNoOutbox = errors.New("outbox commands need --store spanner")

func newOutboxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and prune Spanner outbox events",
	}
	cmd.AddCommand(newOutboxListCmd(a), newOutboxPurgeCmd(a))
	return cmd
}

func newOutboxListCmd(a *app) *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the newest outbox events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.svc.Spanner == nil {
				return errNoOutbox
			}
			events, err := a.svc.Spanner.ListEvents(a.ctx(cmd), limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				printf(cmd, "no events\n")
				return nil
			}
			for i, e := range events {
				printf(cmd, "%d. %s %s (aggregate: %s, status: %s, at: %s)\n",
					i+1, e.EventType, e.EventID, e.AggregateID, e.Status, e.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&limit, "limit", 10, "number of events to show")
	return cmd
}

func newOutboxPurgeCmd(a *app) *cobra.Command {
	var (
		retention time.Duration
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete outbox events older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.svc.Spanner == nil {
				return errNoOutbox
			}
			if retention <= 0 {
				return fmt.Errorf("retention must be positive, got %s", retention)
			}
			cutoff := a.svc.Clock.Now().UTC().Add(-retention)
			n, err := a.svc.Spanner.PurgeEvents(a.ctx(cmd), cutoff, dryRun)
			if err != nil {
				return err
			}
			if dryRun {
				printf(cmd, "would delete %d events older than %s\n", n, cutoff.Format(time.RFC3339))
				return nil
			}
			printf(cmd, "deleted %d events\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&retention, "retention", 30*24*time.Hour, "keep events newer than this")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count matching events without deleting")
	return cmd
}
