package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/competency"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show competency progress per area",
	RunE:  runProgress,
}

var progressTargetCmd = &cobra.Command{
	Use:   "target area=level [area=level...]",
	Short: "Set target levels for one or more areas",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProgressTarget,
}

func init() {
	progressCmd.Flags().Int("upcoming", 30, "Also list assessments due within this many days (0 to skip)")
	progressCmd.AddCommand(progressTargetCmd)
}

func runProgress(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Tracker.Load(cmd.Context()); err != nil {
		return fmt.Errorf("load progress: %w", err)
	}

	rows := a.Tracker.Rows()
	if len(rows) == 0 {
		fmt.Println("No progress recorded yet. Take an assessment first.")
		return nil
	}

	fmt.Printf("%-20s  %5s  %6s  %8s  %-12s  %-12s\n",
		"Area", "Level", "Target", "Progress", "Last", "Next")
	fmt.Println(strings.Repeat("─", 74))
	for _, row := range rows {
		area, _ := competency.FindArea(a.Catalog, row.Area)
		name := area.Name
		if name == "" {
			name = row.Area
		}
		fmt.Printf("%-20s  %5d  %6d  %7d%%  %-12s  %-12s\n",
			name, row.CurrentLevel, row.TargetLevel, row.Percentage,
			formatDate(row.LastAssessment), formatDate(row.NextAssessment))
	}

	overall := a.Tracker.Overall()
	fmt.Printf("\nOverall: %.0f%% across %d areas\n", overall.Average, overall.Areas)

	withinDays, _ := cmd.Flags().GetInt("upcoming")
	if withinDays <= 0 {
		return nil
	}
	upcoming := a.Tracker.Upcoming(withinDays)
	if len(upcoming) == 0 {
		return nil
	}
	fmt.Printf("\nDue within %d days:\n", withinDays)
	for _, u := range upcoming {
		area, _ := competency.FindArea(a.Catalog, u.Area)
		name := area.Name
		if name == "" {
			name = u.Area
		}
		switch {
		case u.DaysUntilDue < 0:
			fmt.Printf("  %s: overdue by %d days\n", name, -u.DaysUntilDue)
		case u.DaysUntilDue == 0:
			fmt.Printf("  %s: due today\n", name)
		default:
			fmt.Printf("  %s: in %d days (%s)\n", name, u.DaysUntilDue, formatDate(u.NextAssessment))
		}
	}
	return nil
}

func runProgressTarget(cmd *cobra.Command, args []string) error {
	targets := make(map[string]int, len(args))
	for _, arg := range args {
		areaID, levelStr, found := strings.Cut(arg, "=")
		if !found {
			return fmt.Errorf("expected area=level, got %q", arg)
		}
		level, err := strconv.Atoi(levelStr)
		if err != nil || level < 1 {
			return fmt.Errorf("invalid level %q for area %q", levelStr, areaID)
		}
		targets[areaID] = level
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	for areaID, level := range targets {
		area, ok := competency.FindArea(a.Catalog, areaID)
		if !ok {
			return fmt.Errorf("unknown area %q", areaID)
		}
		if level > area.MaxLevel() {
			return fmt.Errorf("area %q tops out at level %d", areaID, area.MaxLevel())
		}
	}

	if err := a.Tracker.SetTargets(cmd.Context(), targets); err != nil {
		return fmt.Errorf("set targets: %w", err)
	}
	fmt.Printf("Updated %d target(s).\n", len(targets))
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
