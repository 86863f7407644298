package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/app"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/quiz"
)

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Take the competency assessment or opinion survey",
	RunE:  runTake,
}

func init() {
	takeCmd.Flags().Bool("survey", false, "Take the opinion survey instead of the scored assessment")
	takeCmd.Flags().Bool("untimed", false, "Disable the time limit")
	takeCmd.Flags().Bool("fresh", false, "Discard any saved attempt and start over")
}

func runTake(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	quizType := quiz.TypeAssessment
	if survey, _ := cmd.Flags().GetBool("survey"); survey {
		quizType = quiz.TypeSurvey
	}

	questions, err := a.Loader.Load(ctx, quizType)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return fmt.Errorf("no %s questions available; import a question bank first", quizType)
	}

	timeLimit := a.Config.TimeLimit()
	if untimed, _ := cmd.Flags().GetBool("untimed"); untimed || quizType == quiz.TypeSurvey {
		timeLimit = 0
	}

	done := make(chan quiz.Result, 1)
	sessCfg := quiz.SessionConfig{
		UserID:    a.User.ID,
		QuizType:  quizType,
		TimeLimit: timeLimit,
		OnComplete: func(r quiz.Result) {
			done <- r
		},
		OnChange: func(snap quiz.Snapshot) {
			if snap.State != quiz.StateInProgress.String() {
				return
			}
			if err := a.Snapshots.Save(ctx, snap); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not save progress: %v\n", err)
			}
		},
	}

	sess, err := resumeOrStart(a, sessCfg, questions, cmd)
	if err != nil {
		return err
	}

	promptLoop(sess, len(questions))

	result := <-done
	printResultSummary(result, questions)

	if _, err := a.Results.Save(ctx, result); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	if err := a.Snapshots.Clear(ctx, a.User.ID, quizType); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not clear saved attempt: %v\n", err)
	}
	return nil
}

// resumeOrStart restores a saved attempt when one exists and matches the
// current question set, otherwise starts a new session. --fresh discards
// any saved attempt.
func resumeOrStart(a *app.App, cfg quiz.SessionConfig, questions []quiz.Question, cmd *cobra.Command) (*quiz.Session, error) {
	ctx := cmd.Context()

	if fresh, _ := cmd.Flags().GetBool("fresh"); fresh {
		if err := a.Snapshots.Clear(ctx, cfg.UserID, cfg.QuizType); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not discard saved attempt: %v\n", err)
		}
	} else {
		snap, ok, err := a.Snapshots.Load(ctx, cfg.UserID, cfg.QuizType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read saved attempt: %v\n", err)
		} else if ok {
			sess, err := quiz.RestoreSession(cfg, questions, snap)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: saved attempt unusable, starting over: %v\n", err)
			} else {
				fmt.Printf("Resuming saved attempt (%d of %d answered).\n\n",
					sess.Answered(), len(questions))
				return sess, nil
			}
		}
	}

	sess := quiz.NewSession(cfg)
	if err := sess.Start(questions); err != nil {
		return nil, err
	}
	return sess, nil
}

// promptLoop reads answers from stdin until the session reaches a
// terminal state. "quit" abandons the attempt.
func promptLoop(sess *quiz.Session, total int) {
	scanner := bufio.NewScanner(os.Stdin)

	for sess.State() == quiz.StateInProgress {
		q, ok := sess.CurrentQuestion()
		if !ok {
			return
		}
		printQuestion(sess, q, total)

		fmt.Print("> ")
		if !scanner.Scan() {
			_ = sess.Abandon()
			return
		}
		input := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(input) {
		case "quit", "q":
			_ = sess.Abandon()
			return
		case "":
			fmt.Println("Enter option labels, e.g. A or A,C. Type 'quit' to abandon.")
			continue
		}

		if err := sess.Answer(q.ID, parseLabels(input)); err != nil {
			if errors.Is(err, quiz.ErrInvalidState) {
				// Timed out while waiting for input.
				return
			}
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			continue
		}
		if err := sess.Advance(); err != nil && !errors.Is(err, quiz.ErrInvalidState) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		fmt.Println()
	}
}

func printQuestion(sess *quiz.Session, q quiz.Question, total int) {
	header := fmt.Sprintf("Question %d/%d", sess.Index()+1, total)
	if remaining, ok := sess.Remaining(); ok {
		header += fmt.Sprintf("  (%s left)", remaining.Round(time.Second))
	}
	fmt.Println(header)
	fmt.Println(q.Title)
	if q.Prompt != "" && q.Prompt != q.Title {
		fmt.Println(q.Prompt)
	}
	for _, opt := range q.Options {
		fmt.Printf("  %s) %s\n", opt.Label, opt.Text)
	}
	if q.MultiSelect() {
		fmt.Println("  (select all that apply, e.g. A,C)")
	}
}

func printResultSummary(result quiz.Result, questions []quiz.Question) {
	fmt.Println()
	if result.Status == quiz.StatusAbandoned {
		fmt.Printf("Attempt abandoned after %d of %d questions.\n",
			len(result.Responses), len(questions))
	}

	if result.QuizType == quiz.TypeSurvey {
		fmt.Println("Survey complete. Thanks for your feedback.")
		return
	}

	fmt.Printf("Score: %d/%d (%d%%) in %s\n",
		result.Score, result.TotalPossible, result.Percentage,
		(time.Duration(result.Duration) * time.Second))

	correct := 0
	for _, r := range result.Responses {
		if r.Correct {
			correct++
		}
	}
	fmt.Printf("%d of %d answered questions correct.\n", correct, len(result.Responses))
}

// parseLabels splits "a, c" or "A C" into deduplicated uppercase labels.
func parseLabels(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	seen := make(map[string]bool, len(fields))
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		label := strings.ToUpper(strings.TrimSpace(f))
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}
