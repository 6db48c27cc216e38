package cmd

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/amcprep/internal/problems"
	"github.com/abhisek/amcprep/internal/tutor"
)

var problemsCmd = &cobra.Command{
	Use:   "problems",
	Short: "Inspect and maintain the problem bank",
}

var problemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contests and problems in the bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		bank, err := problems.Load(e.cfg.ProblemsDir)
		if err != nil {
			return fmt.Errorf("load problem bank %s: %w", e.cfg.ProblemsDir, err)
		}

		out := cmd.OutOrStdout()
		all := bank.Problems()
		fmt.Fprintf(out, "%s: %d problems in %d contests\n\n", bank.Root(), len(all), len(bank.Contests()))

		byFolder := make(map[string][]problems.Problem)
		for _, p := range all {
			byFolder[p.Folder] = append(byFolder[p.Folder], p)
		}
		for _, folder := range bank.Contests() {
			ps := byFolder[folder]
			uncategorized := 0
			for _, p := range ps {
				if p.Category == "" {
					uncategorized++
				}
			}
			fmt.Fprintf(out, "%-24s %3d problems, %d uncategorized\n", folder, len(ps), uncategorized)
			if !verbose {
				continue
			}
			for _, p := range ps {
				cat := p.Category
				if cat == "" {
					cat = "-"
				}
				fmt.Fprintf(out, "    #%-3d %s  level %d  %s\n", p.Number, p.Answer, e.cfg.Level.LevelOf(p.Number), cat)
			}
		}
		return nil
	},
}

var problemsClassifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Fill in missing categories with the AI tutor",
	Long: `Asks the configured model for the topic of every problem without a
category and writes the result back to the contest's answers.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		bank, err := problems.Load(e.cfg.ProblemsDir)
		if err != nil {
			return fmt.Errorf("load problem bank %s: %w", e.cfg.ProblemsDir, err)
		}

		t := newTutor(cmd, e)
		if !t.Enabled() {
			return errors.New(tutor.UserMessage(tutor.ErrDisabled))
		}

		out := cmd.OutOrStdout()
		var done, failed int
		for _, p := range bank.Problems() {
			if p.Category != "" && !all {
				continue
			}
			if err := cmd.Context().Err(); err != nil {
				return err
			}

			category, err := t.Classify(cmd.Context(), p.ImagePath)
			if err != nil {
				failed++
				e.log.WithError(err).WithFields(logrus.Fields{
					"folder":   p.Folder,
					"question": p.Number,
				}).Warn("classify failed")
				fmt.Fprintf(out, "%-28s %s\n", p.Label(), tutor.UserMessage(err))
				continue
			}

			fmt.Fprintf(out, "%-28s %s\n", p.Label(), category)
			if dryRun {
				continue
			}
			if err := bank.SetCategory(p.Folder, p.Number, category); err != nil {
				return err
			}
			done++
		}

		fmt.Fprintf(out, "\nClassified %d problems, %d failed.\n", done, failed)
		return nil
	},
}

func init() {
	problemsListCmd.Flags().BoolP("verbose", "v", false, "List every problem")
	problemsClassifyCmd.Flags().Bool("all", false, "Reclassify problems that already have a category")
	problemsClassifyCmd.Flags().Bool("dry-run", false, "Print categories without saving them")

	problemsCmd.AddCommand(problemsListCmd)
	problemsCmd.AddCommand(problemsClassifyCmd)
}
