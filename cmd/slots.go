package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbatisse/calsat/app"
	"github.com/kbatisse/calsat/config"
	"github.com/kbatisse/calsat/internal/timeutil"
)

var slotsCmd = &cobra.Command{
	Use:   "slots <week-start> <week-end>",
	Short: "List the candidate slots for one week without solving",
	Args:  cobra.ExactArgs(2),
	RunE:  runSlots,
}

func init() {
	rootCmd.AddCommand(slotsCmd)
}

func runSlots(cmd *cobra.Command, args []string) error {
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

	weekStart, err := timeutil.ParseBound(args[0], svc.Location(), true)
	if err != nil {
		return err
	}
	weekEnd, err := timeutil.ParseBound(args[1], svc.Location(), false)
	if err != nil {
		return err
	}

	slots, err := svc.Slots(ctx, weekStart, weekEnd)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Println("No candidate slots this week.")
		return nil
	}
	for _, sl := range slots {
		fmt.Printf("%s  %s to %s", sl.ID,
			sl.Start.Format("Mon 2006-01-02 15:04"), sl.End.Format("15:04"))
		if sl.Location != "" {
			fmt.Printf("  (%s)", sl.Location)
		}
		fmt.Println()
	}
	return nil
}
