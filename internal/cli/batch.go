package cli

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/franckalain/nutrisnap/internal/analysis"
	"github.com/franckalain/nutrisnap/internal/report"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newBatchCmd(opts *options) *cobra.Command {
	var (
		out         string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Analyse every image in a directory into a Parquet report",
		Long: `Analyses every image found under <dir> and writes one row per image
to a Parquet file. Failed analyses are recorded with their error rather than
stopping the batch.`,
		Example: `  nutrisnap batch ./photos --out results.parquet --concurrency 4`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := findImages(args[0])
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no images found in %s", args[0])
			}

			p, err := newPipeline(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			rows := runBatch(cmd.Context(), p, files, concurrency, opts.cfg.Server.RequestTimeout.Duration)
			if err := report.Write(out, rows); err != nil {
				return err
			}

			summary := report.Summary(rows)
			slog.Info("Batch complete", "out", out, "summary", summary)
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "results.parquet", "path of the Parquet report")
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "number of images analysed at once")

	return cmd
}

// findImages lists image files under dir in a stable order.
func findImages(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// runBatch analyses files with bounded concurrency. Rows keep the order of
// files; a failure only affects its own row.
func runBatch(ctx context.Context, perf analysis.Performer, files []string, concurrency int, timeout time.Duration) []report.Row {
	rows := make([]report.Row, len(files))

	var g errgroup.Group
	g.SetLimit(max(concurrency, 1))
	for i, file := range files {
		g.Go(func() error {
			start := time.Now()
			image, err := readImageFile(file)
			if err != nil {
				rows[i] = report.NewRow(file, nil, err, time.Since(start))
				return nil
			}

			fctx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			res, err := perf.Perform(fctx, image)
			rows[i] = report.NewRow(file, res, err, time.Since(start))
			if err != nil {
				slog.Warn("Analysis failed", "file", file, "kind", analysis.Kind(err), "err", err)
			} else {
				slog.Info("Analysed image", "file", file, "dish", res.Analysis.DishIdentification, "score", res.Rating.HealthScore)
			}
			return nil
		})
	}
	g.Wait()
	return rows
}
