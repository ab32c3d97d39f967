package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/franckalain/nutrisnap/internal/analysis"
	"github.com/franckalain/nutrisnap/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyse a single food photo",
		Example: `  nutrisnap analyze lunch.jpg
  nutrisnap analyze lunch.jpg --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (want json or yaml)", format)
			}

			image, err := readImageFile(args[0])
			if err != nil {
				return err
			}

			p, err := newPipeline(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			ctx := cmd.Context()
			if timeout := opts.cfg.Server.RequestTimeout.Duration; timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			result, err := p.Perform(ctx, image)
			if err != nil {
				return fmt.Errorf("%s error: %w", analysis.Kind(err), err)
			}
			return writeResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")

	return cmd
}

func writeResult(w io.Writer, result *models.FullAnalysisResult, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
