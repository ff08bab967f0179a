package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Summary counts the outcome of a batch run.
type Summary struct {
	Files     int `json:"files"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	Arrows    int `json:"arrows"`
	Matched   int `json:"matched"`
	Rewritten int `json:"rewritten"`
	Relations int `json:"relations"`

	// Errors maps failed annotation files to their error message.
	Errors map[string]string `json:"errors,omitempty"`

	Duration time.Duration `json:"duration"`
}

// Batch runs a simulator over every annotation file of a directory.
type Batch struct {
	Simulator     *Simulator
	AnnotationDir string

	// Workers bounds the number of files processed at once. Values below
	// one mean one.
	Workers int
}

// AnnotationFiles lists the .json files of dir in name order.
func AnnotationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.ToLower(filepath.Ext(e.Name())) != ".json" {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// Run processes every annotation file. A failing file is counted and
// logged but never stops the batch; Run only fails when the directory
// cannot be listed or ctx is cancelled.
func (b *Batch) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	files, err := AnnotationFiles(b.AnnotationDir)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Files: len(files)}
	var mu sync.Mutex

	workers := b.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	logger := b.Simulator.Logger
	for _, path := range files {
		path := path
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := b.Simulator.ProcessFile(path)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrSkip):
				sum.Skipped++
				var empty *EmptyResultError
				if errors.As(err, &empty) {
					sum.Arrows += empty.Stats.Arrows
				}
			case err != nil:
				sum.Failed++
				if sum.Errors == nil {
					sum.Errors = make(map[string]string)
				}
				sum.Errors[filepath.Base(path)] = err.Error()
				logger.Error().Err(err).Str("annotation", filepath.Base(path)).Msg("failed to simulate")
			default:
				sum.Processed++
				sum.Arrows += res.Stats.Arrows
				sum.Matched += res.Stats.Accepted
				sum.Rewritten += res.Rewrite.Arrows
				sum.Relations += res.Rewrite.Relations
			}
			return nil
		})
	}

	err = g.Wait()
	sum.Duration = time.Since(start)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return sum, fmt.Errorf("batch interrupted: %w", err)
	}

	logger.Info().
		Int("files", sum.Files).
		Int("processed", sum.Processed).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Int("rewritten", sum.Rewritten).
		Dur("duration", sum.Duration).
		Msg("batch complete")
	return sum, nil
}
