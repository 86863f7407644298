package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List past assessment results",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.Results.History(cmd.Context(), a.User.ID)
		if err != nil {
			return fmt.Errorf("load results: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("No results yet.")
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		if limit > 0 && len(results) > limit {
			results = results[:limit]
		}

		fmt.Printf("%-16s  %-18s  %9s  %5s  %9s  %-9s\n",
			"Date", "Quiz", "Score", "Pct", "Duration", "Status")
		fmt.Println(strings.Repeat("─", 76))
		for _, r := range results {
			fmt.Printf("%-16s  %-18s  %4d/%-4d  %4d%%  %9s  %-9s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04"),
				r.QuizType,
				r.Score, r.TotalPossible, r.Percentage,
				time.Duration(r.Duration)*time.Second,
				r.Status)
		}
		fmt.Printf("\n%d result(s)\n", len(results))
		return nil
	},
}

func init() {
	resultsCmd.Flags().Int("limit", 20, "Show at most this many results (0 for all)")
}
