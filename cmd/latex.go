package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/amcprep/internal/latex"
)

var latexCmd = &cobra.Command{
	Use:   "latex",
	Short: "Work with the LaTeX in explanations",
}

var latexSegmentsCmd = &cobra.Command{
	Use:   "segments <text>",
	Short: "Show the math segments found in text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readTextArg(cmd, args[0])
		if err != nil {
			return err
		}

		processed, segments := latex.FindSegments(text)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, processed)
		fmt.Fprintln(out)
		r := &latex.Rendered{Segments: segments}
		for _, key := range segmentKeys(r) {
			seg := segments[key]
			fmt.Fprintf(out, "%s  %s\n    %s\n", key, seg.Source(), seg.URL())
		}
		return nil
	},
}

var latexRenderCmd = &cobra.Command{
	Use:   "render <text>",
	Short: "Render the math in text to PNG files",
	Long: `Extracts the math segments in text, downloads one PNG per segment and
writes them to the output directory. Pass - to read the text from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("out")

		text, err := readTextArg(cmd, args[0])
		if err != nil {
			return err
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		return renderLatex(cmd.Context(), cmd.OutOrStdout(), latex.NewFetcher(e.cfg.Latex, nil, e.log), text, outDir, e.log)
	},
}

// renderLatex writes the PNG of every rendered segment to dir and prints
// the text with its placeholders.
func renderLatex(ctx context.Context, out io.Writer, f *latex.Fetcher, text, dir string, log logrus.FieldLogger) error {
	r, err := f.Render(ctx, text)
	if err != nil {
		return fmt.Errorf("render latex: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	fmt.Fprintln(out, r.Text)
	fmt.Fprintln(out)
	for _, key := range r.Keys() {
		path := filepath.Join(dir, strings.ToLower(strings.Trim(key, "_"))+".png")
		if err := os.WriteFile(path, r.Images[key], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(out, "%s -> %s\n", key, path)
	}

	if failed := len(r.Segments) - len(r.Images); failed > 0 {
		log.WithField("failed", failed).Warn("some segments were not rendered")
		fmt.Fprintf(out, "%d segments could not be rendered and were kept as source.\n", failed)
	}
	return nil
}

// segmentKeys orders all segment placeholders, rendered or not.
func segmentKeys(r *latex.Rendered) []string {
	all := &latex.Rendered{Images: make(map[string][]byte, len(r.Segments))}
	for k := range r.Segments {
		all.Images[k] = nil
	}
	return all.Keys()
}

func readTextArg(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func init() {
	latexRenderCmd.Flags().String("out", "latex", "Directory for the rendered images")

	latexCmd.AddCommand(latexSegmentsCmd)
	latexCmd.AddCommand(latexRenderCmd)
}
