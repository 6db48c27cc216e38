package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/amcprep/internal/level"
	"github.com/abhisek/amcprep/internal/session"
)

var progressCmd = &cobra.Command{
	Use:   "progress <username>",
	Short: "Show level, category accuracy and recent attempts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recent, _ := cmd.Flags().GetInt("recent")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		username := args[0]
		records, err := e.store.Progress().UserProgress(cmd.Context(), username)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "User:  %s\n", username)
		fmt.Fprintf(out, "Level: %d\n", level.Calculate(records, e.cfg.Level))
		if len(records) == 0 {
			fmt.Fprintln(out, "\nNo attempts yet.")
			return nil
		}

		correct := 0
		for _, r := range records {
			if r.Correct() {
				correct++
			}
		}
		fmt.Fprintf(out, "Attempts: %d, correct: %d (%.0f%%)\n",
			len(records), correct, 100*float64(correct)/float64(len(records)))

		fmt.Fprintln(out, "\nLevels:")
		for _, st := range level.Assess(records, e.cfg.Level) {
			state := "in progress"
			if st.Passed {
				state = "passed"
			}
			fmt.Fprintf(out, "  %d  %-12s  %d/%d correct of the last %d, %d attempts\n",
				st.Level, state, st.Correct, st.Scored, e.cfg.Level.QuestionsForAssessment, st.Attempts)
		}

		fmt.Fprintln(out, "\nCategories:")
		for _, c := range session.CategoryAccuracy(records) {
			fmt.Fprintf(out, "  %-24s %3d/%-3d %5.1f%%\n", c.Category, c.Correct, c.Attempted, 100*c.Accuracy())
		}

		fmt.Fprintf(out, "\nRecent attempts:\n")
		fmt.Fprintf(out, "  %-16s  %-20s  %4s  %6s  %6s  %5s\n", "When", "Contest", "#", "Choice", "Answer", "Secs")
		for i, r := range records {
			if recent > 0 && i >= recent {
				break
			}
			mark := " "
			if r.Correct() {
				mark = "✓"
			}
			fmt.Fprintf(out, "  %-16s  %-20s  %4d  %5s%s  %6s  %5d\n",
				r.AttemptDate.Local().Format("2006-01-02 15:04"),
				truncate(r.FolderName, 20), r.QuestionNumber,
				r.UserChoice, mark, r.CorrectChoice, r.AnswerTime)
		}
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset <username>",
	Short: "Delete every recorded attempt of a learner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.store.Progress().ResetProgress(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}
		e.log.WithField("user", args[0]).WithField("deleted", n).Info("progress reset")
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d attempts of %s.\n", n, args[0])
		return nil
	},
}

func init() {
	progressCmd.Flags().Int("recent", 20, "Number of recent attempts to list (0 for all)")

	progressCmd.AddCommand(progressResetCmd)
}
