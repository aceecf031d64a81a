package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbatisse/calsat/app"
	"github.com/kbatisse/calsat/config"
	"github.com/kbatisse/calsat/infra/history"
	"github.com/kbatisse/calsat/internal/timeutil"
)

var (
	historySince   string
	historyUntil   string
	historyMeeting string
	historyOutcome string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past scheduling runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historySince, "since", "", "only runs at or after this date")
	historyCmd.Flags().StringVar(&historyUntil, "until", "", "only runs at or before this date")
	historyCmd.Flags().StringVar(&historyMeeting, "meeting", "", "only runs involving this meeting")
	historyCmd.Flags().StringVar(&historyOutcome, "outcome", "", "only runs with this outcome (scheduled, infeasible, empty)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	q := history.Query{Meeting: historyMeeting, Outcome: historyOutcome}
	if historySince != "" {
		if q.Start, err = timeutil.ParseBound(historySince, svc.Location(), true); err != nil {
			return err
		}
	}
	if historyUntil != "" {
		if q.End, err = timeutil.ParseBound(historyUntil, svc.Location(), false); err != nil {
			return err
		}
	}

	recs, err := svc.History(ctx, q)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("No matching runs.")
		return nil
	}
	for _, r := range recs {
		fmt.Printf("%s  week %s to %s  %s",
			r.Timestamp.Format(time.RFC3339),
			r.WeekStart.Format("2006-01-02"), r.WeekEnd.Format("2006-01-02"),
			r.Outcome)
		if r.Report != nil {
			fmt.Printf("  meetings=%d cost=%d", len(r.Report.Meetings), r.Cost)
		}
		fmt.Println()
	}
	return nil
}
