package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/quiz"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage the question banks",
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active questions for a quiz type",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		quizType := quiz.TypeAssessment
		if t, _ := cmd.Flags().GetString("type"); t != "" {
			quizType = quiz.Type(t)
		}

		questions, err := a.Loader.Load(cmd.Context(), quizType)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		if len(questions) == 0 {
			fmt.Printf("No %s questions. Import a bank with 'questions import'.\n", quizType)
			return nil
		}

		fmt.Printf("%-12s  %-40s  %-16s  %6s  %s\n", "ID", "Title", "Category", "Points", "Answers")
		fmt.Println(strings.Repeat("─", 90))
		for _, q := range questions {
			title := q.Title
			if len(title) > 40 {
				title = title[:37] + "..."
			}
			fmt.Printf("%-12s  %-40s  %-16s  %6d  %s\n",
				q.ID, title, q.Category, q.Points, strings.Join(q.CorrectLabels, ","))
		}
		fmt.Printf("\n%d questions\n", len(questions))
		return nil
	},
}

var questionsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a question-bank file without importing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read bank file: %w", err)
		}
		bank, err := quiz.ParseBank(raw)
		if err != nil {
			return err
		}
		fmt.Printf("OK: %d %s question(s)\n", len(bank.Questions), bank.QuizType)
		return nil
	},
}

var questionsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a question-bank file, replacing the stored set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read bank file: %w", err)
		}
		bank, err := quiz.ParseBank(raw)
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Repo.ReplaceQuestions(cmd.Context(), bank.QuizType, bank.Questions); err != nil {
			return fmt.Errorf("store questions: %w", err)
		}
		a.Loader.Invalidate(bank.QuizType)

		fmt.Printf("Imported %d %s question(s).\n", len(bank.Questions), bank.QuizType)
		return nil
	},
}

func init() {
	questionsListCmd.Flags().String("type", "", "Quiz type (default primary-assessment)")

	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsValidateCmd)
	questionsCmd.AddCommand(questionsImportCmd)
}
