package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbatisse/calsat/app"
	"github.com/kbatisse/calsat/config"
	"github.com/kbatisse/calsat/core/schedule"
	"github.com/kbatisse/calsat/infra/ical"
	"github.com/kbatisse/calsat/infra/logger"
	"github.com/kbatisse/calsat/infra/metrics"
	"github.com/kbatisse/calsat/internal/timeutil"
)

var (
	savePath           string
	penaltyKeyAttendee int
	penaltyKeyMeeting  int
	penaltyOrdinary    int
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <week-start> <week-end>",
	Short: "Solve the meeting schedule for one week",
	Long: "Reads the member and window calendars, places every active meeting in a slot " +
		"and prints who attends and who is missed. Week bounds are dates (YYYY-MM-DD) " +
		"or RFC 3339 timestamps.",
	Args: cobra.ExactArgs(2),
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&savePath, "save", "", "write the schedule to this .ics file")
	scheduleCmd.Flags().IntVar(&penaltyKeyAttendee, "penalty-key-attendee-absence", -1, "override the key attendee absence weight")
	scheduleCmd.Flags().IntVar(&penaltyKeyMeeting, "penalty-key-meeting-absence", -1, "override the key meeting absence weight")
	scheduleCmd.Flags().IntVar(&penaltyOrdinary, "penalty-required-member-absence", -1, "override the ordinary absence weight")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
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
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	if addr := cfg.Metrics.PrometheusListen; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				logger.New("main").Errorf("prom server: %v", err)
			}
		}()
	}

	weekStart, err := timeutil.ParseBound(args[0], svc.Location(), true)
	if err != nil {
		return err
	}
	weekEnd, err := timeutil.ParseBound(args[1], svc.Location(), false)
	if err != nil {
		return err
	}

	pens := cfg.Penalties()
	if penaltyKeyAttendee >= 0 {
		pens.KeyAttendeeAbsence = penaltyKeyAttendee
	}
	if penaltyKeyMeeting >= 0 {
		pens.KeyMeetingAbsence = penaltyKeyMeeting
	}
	if penaltyOrdinary >= 0 {
		pens.RequiredMemberAbsence = penaltyOrdinary
	}

	rep, err := svc.Schedule(ctx, weekStart, weekEnd, pens)
	if err != nil {
		var infErr *schedule.InfeasibleError
		switch {
		case errors.Is(err, schedule.ErrEmptyProblem):
			fmt.Println("Nothing to schedule: no active meetings or no usable slots this week.")
			return nil
		case errors.As(err, &infErr):
			fmt.Println("No feasible schedule exists for this week.")
			for _, c := range infErr.Conflicts {
				fmt.Printf("  conflict: %s\n", c)
			}
			return fmt.Errorf("infeasible hard constraints")
		default:
			return err
		}
	}

	printReport(rep)

	if savePath != "" {
		f, err := os.Create(savePath)
		if err != nil {
			return fmt.Errorf("create %s: %w", savePath, err)
		}
		defer func() { _ = f.Close() }()
		if err := ical.WriteSchedule(f, rep); err != nil {
			return fmt.Errorf("write %s: %w", savePath, err)
		}
		fmt.Printf("\nSchedule written to %s\n", savePath)
	}
	return nil
}

func printReport(rep *schedule.Report) {
	fmt.Printf("Schedule for %s to %s\n\n",
		rep.WeekStart.Format("Mon 2006-01-02"), rep.WeekEnd.Format("Mon 2006-01-02"))

	meetings := make([]schedule.MeetingSchedule, len(rep.Meetings))
	copy(meetings, rep.Meetings)
	sort.Slice(meetings, func(i, j int) bool {
		if meetings[i].Slot.Start.Equal(meetings[j].Slot.Start) {
			return meetings[i].Meeting < meetings[j].Meeting
		}
		return meetings[i].Slot.Start.Before(meetings[j].Slot.Start)
	})
	for _, ms := range meetings {
		fmt.Printf("%s  %s to %s", ms.Meeting,
			ms.Slot.Start.Format("Mon 15:04"), ms.Slot.End.Format("15:04"))
		if ms.Slot.Location != "" {
			fmt.Printf("  (%s)", ms.Slot.Location)
		}
		fmt.Println()
		for _, name := range ms.Attending {
			fmt.Printf("    + %s\n", name)
		}
		for _, a := range ms.Missing {
			fmt.Printf("    - %s (%s, penalty %d)\n", a.Member, a.Tier(), a.Penalty)
		}
	}

	if len(rep.DoubleBookings) > 0 {
		fmt.Println("\nDouble bookings:")
		for _, db := range rep.DoubleBookings {
			fmt.Printf("  %s: %s and %s overlap\n", db.Member, db.Meetings[0], db.Meetings[1])
		}
	}

	fmt.Printf("\nTotal penalty: %d\n", rep.TotalPenalty)
	fmt.Printf("Attendance: %d/%d (%.1f%%)\n", rep.Attended, rep.Required, rep.AttendanceRate()*100)
}
