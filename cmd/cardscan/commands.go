package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/async"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/export"
	"github.com/joseph-ayodele/cardscan/internal/ingest"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <image>",
		Short: "OCR one card image and print its contact record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.processor(ctx)
			if err != nil {
				return err
			}
			image, err := os.ReadFile(args[0])
			if err != nil {
				return common.WrapError(err, "read image")
			}
			res, err := p.Process(common.WithSourceName(ctx, args[0]), image)
			if err != nil {
				return err
			}
			return a.printJSON(cmd.OutOrStdout(), a.render(res, ""))
		},
	}
}

func newTextCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "text <file|->",
		Short: "Restructure already extracted card text (\"-\" reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.processor(ctx)
			if err != nil {
				return err
			}
			var raw []byte
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return common.WrapError(err, "read text")
			}
			res, err := p.ProcessText(ctx, string(raw))
			if err != nil {
				return err
			}
			return a.printJSON(cmd.OutOrStdout(), a.render(res, ""))
		},
	}
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		dir     string
		out     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch --dir <dir>",
		Short: "Process every card image under a directory and export an XLSX sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = filepath.Join(filepath.Dir(filepath.Clean(dir)), "contacts.xlsx")
			}
			if workers <= 0 {
				workers = a.cfg.Batch.Workers
			}
			return a.runBatch(cmd.Context(), dir, out, workers)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of card images (required)")
	cmd.Flags().StringVar(&out, "out", "", "output XLSX path (default <parent of dir>/contacts.xlsx)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default $BATCH_WORKERS or 4)")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func (a *app) runBatch(ctx context.Context, dir, out string, workers int) error {
	p, err := a.processor(ctx)
	if err != nil {
		return err
	}

	files, stats, err := ingest.ScanDirectory(ctx, dir, ingest.ScanOptions{SkipHidden: true, Logger: a.logger})
	if err != nil {
		return err
	}

	rows := make([]export.Row, len(files))
	index := make(map[string]int, len(files))
	q := async.NewQueue(func(ctx context.Context, job async.Job) error {
		i := index[job.Path]
		res, err := a.processFile(ctx, p, job.Path)
		if err != nil {
			rows[i].Err = err.Error()
			return err
		}
		rows[i].Record = res.Record
		return nil
	}, a.logger,
		async.WithWorkers(workers),
		async.WithQueueSize(a.cfg.Batch.QueueSize),
		async.WithProcessTimeout(a.cfg.Batch.JobTimeout),
	)

	for i, f := range files {
		rows[i].SourceFile = f.Path
		switch {
		case f.Err != "":
			rows[i].Err = f.Err
		case f.DuplicateOf != "":
			rows[i].Status = constants.JobStatusDuplicate
			rows[i].Err = "duplicate of " + f.DuplicateOf
		default:
			index[f.Path] = i
		}
	}
	for _, f := range files {
		if _, ok := index[f.Path]; !ok {
			continue
		}
		if err := q.Enqueue(ctx, async.NewJob(f.Path)); err != nil {
			_ = q.Shutdown(context.Background())
			return err
		}
	}
	if err := q.Shutdown(ctx); err != nil {
		return err
	}

	xlsx, err := export.ContactsXLSX(rows, a.logger)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, xlsx, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	failed := 0
	for _, r := range rows {
		if r.Err != "" {
			failed++
		}
	}
	a.logger.Info("batch.ok",
		"dir", dir,
		"out", out,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
		"failed", failed,
	)
	_, err = fmt.Fprintf(a.stdout, "wrote %d rows to %s (%d failed)\n", len(rows), out, failed)
	return err
}

// processFile reads one card image from disk and runs it through p.
func (a *app) processFile(ctx context.Context, p *pipeline.Processor, path string) (pipeline.Result, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Result{}, common.WrapError(err, "read image")
	}
	return p.Process(common.WithSourceName(ctx, path), image)
}

// watchError is the JSON line printed for a card that failed in watch mode.
type watchError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
	Code   string `json:"code"`
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		dir     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "watch --dir <dir>",
		Short: "Process card images as they land in a directory, one JSON line each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if workers <= 0 {
				workers = a.cfg.Batch.Workers
			}
			return a.runWatch(cmd.Context(), dir, workers)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to watch (required)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default $BATCH_WORKERS or 4)")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

// watchHandler prints one compact JSON line per card to w, a watchError when the
// card could not be read or processed.
func (a *app) watchHandler(p *pipeline.Processor, w io.Writer) async.Handler {
	var mu sync.Mutex
	emit := func(v any) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewEncoder(w).Encode(v)
	}
	return func(ctx context.Context, job async.Job) error {
		res, err := a.processFile(ctx, p, job.Path)
		if err != nil {
			emit(watchError{Source: job.Path, Error: err.Error(), Code: common.ErrorCode(err)})
			return err
		}
		emit(a.render(res, job.Path))
		return nil
	}
}

func (a *app) runWatch(ctx context.Context, dir string, workers int) error {
	p, err := a.processor(ctx)
	if err != nil {
		return err
	}
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:      []string{dir},
		SkipHidden: true,
		Debounce:   500 * time.Millisecond,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}

	q := async.NewQueue(a.watchHandler(p, a.stdout), a.logger,
		async.WithWorkers(workers),
		async.WithQueueSize(a.cfg.Batch.QueueSize),
		async.WithProcessTimeout(a.cfg.Batch.JobTimeout),
	)

	for {
		select {
		case path, ok := <-events:
			if !ok {
				return q.Shutdown(context.Background())
			}
			if err := q.Enqueue(ctx, async.NewJob(path)); err != nil {
				_ = q.Shutdown(context.Background())
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		case err, ok := <-errs:
			if ok {
				a.logger.Warn("watch.error", "error", err)
			} else {
				errs = nil
			}
		}
	}
}
