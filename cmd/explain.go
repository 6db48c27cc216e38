package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/amcprep/internal/latex"
	"github.com/abhisek/amcprep/internal/problems"
	"github.com/abhisek/amcprep/internal/tutor"
)

var explainCmd = &cobra.Command{
	Use:   "explain <image>",
	Short: "Ask the AI tutor to explain a problem image",
	Long: `Sends a problem image and its correct answer to the configured model and
prints the step-by-step explanation. With --render the math in the
explanation is also rendered to PNG files.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		answer, _ := cmd.Flags().GetString("answer")
		renderDir, _ := cmd.Flags().GetString("render")

		answer = strings.ToUpper(strings.TrimSpace(answer))
		if !validChoice(answer) {
			return fmt.Errorf("--answer must be one of %s", strings.Join(problems.Choices, ", "))
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		t := newTutor(cmd, e)
		text, err := t.Explain(cmd.Context(), args[0], answer)
		if err != nil {
			e.log.WithError(err).WithField("image", args[0]).Warn("explain failed")
			return errors.New(tutor.UserMessage(err))
		}

		if renderDir == "" {
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}
		return renderLatex(cmd.Context(), cmd.OutOrStdout(), latex.NewFetcher(e.cfg.Latex, nil, e.log), text, renderDir, e.log)
	},
}

func validChoice(s string) bool {
	for _, c := range problems.Choices {
		if s == c {
			return true
		}
	}
	return false
}

func init() {
	explainCmd.Flags().String("answer", "", "Correct answer letter (A-E)")
	explainCmd.Flags().String("render", "", "Render the math in the explanation to this directory")
	explainCmd.MarkFlagRequired("answer")
}
