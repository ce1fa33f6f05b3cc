package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/JonMunkholm/borelog/internal/borelog"
	"github.com/JonMunkholm/borelog/internal/core"
	"github.com/JonMunkholm/borelog/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// parseResult is the outcome for one file. Exactly one of Record and Error
// is set.
type parseResult struct {
	File   string          `json:"file"`
	Record *borelog.Record `json:"record,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   string          `json:"code,omitempty"`
}

func newParseCmd() *cobra.Command {
	var (
		jobs    int
		maxSize int64
	)

	cmd := &cobra.Command{
		Use:   "parse FILE...",
		Short: "Parse exports (CSV, text or .xlsx) and print the records as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := parseFiles(cmd.Context(), args, jobs, maxSize)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to parse", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "files parsed in parallel")
	cmd.Flags().Int64Var(&maxSize, "max-size", 20<<20, "largest accepted file in bytes (0 for no limit)")
	return cmd
}

// parseFiles parses every path with at most jobs running at once. A file
// that fails is reported in its result; only cancellation aborts the batch.
// Results keep the order of paths.
func parseFiles(ctx context.Context, paths []string, jobs int, maxSize int64) ([]parseResult, error) {
	if jobs < 1 {
		jobs = 1
	}

	results := make([]parseResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = parseFile(gctx, path, maxSize)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseFile(ctx context.Context, path string, maxSize int64) parseResult {
	res := parseResult{File: path}
	logger := logging.WithFields(ctx, "file", path)

	rec, err := readAndParse(path, maxSize)
	if err != nil {
		msg := core.MapError(err)
		res.Error = core.FormatUserError(err)
		res.Code = msg.Code
		level := slog.LevelError
		if core.IsUserFacing(err) {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "parse failed", "error", err, "code", msg.Code)
		return res
	}
	logger.Debug("parsed", "layers", len(rec.Layers))
	res.Record = rec
	return res
}

func readAndParse(path string, maxSize int64) (*borelog.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	text, err := core.Decode(filepath.Base(path), f, maxSize)
	if err != nil {
		return nil, err
	}
	return borelog.Parse(text)
}
