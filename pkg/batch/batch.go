// Package batch converts many library files concurrently
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/james-see/traktor2rekordbox/pkg/converter"
	"github.com/james-see/traktor2rekordbox/pkg/metrics"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

type Options struct {
	Workers int

	// OutDir receives the converted files; empty writes next to each input
	OutDir string

	// Progress receives a progress bar; nil disables it
	Progress io.Writer

	Converter converter.Options
}

// Result is the outcome of converting one input file
type Result struct {
	Input      string
	Output     string
	Conversion *converter.ConversionResult
	Err        error
}

// OutputPath names the converted file for input: same base name with
// the target format's extension, in outDir when set.
func OutputPath(input string, target converter.Format, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	dir := filepath.Dir(input)
	if outDir != "" {
		dir = outDir
	}
	return filepath.Join(dir, base+target.Extension())
}

// Run converts every input with at most opts.Workers in flight. A failing
// file is reported in its Result and does not stop the others; the
// returned error is only set when ctx is cancelled.
func Run(ctx context.Context, inputs []string, opts Options) ([]Result, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	opts.Converter = converter.New(opts.Converter).Options()
	logger := opts.Converter.Logger

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	bar := newProgressBar(len(inputs), opts.Progress)
	defer func() { _ = bar.Finish() }()

	results := make([]Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, input := range inputs {
		g.Go(func() error {
			defer func() { _ = bar.Add(1) }()
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i] = convertOne(input, opts)
			if results[i].Err != nil {
				logger.Warn("batch conversion failed", "input", input, "error", results[i].Err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// convertOne uses its own Converter so no state is shared between workers
func convertOne(input string, opts Options) Result {
	res := Result{Input: input}

	data, err := os.ReadFile(input)
	if err != nil {
		res.Err = fmt.Errorf("failed to read input file: %w", err)
		return res
	}

	d, err := converter.DetectDirection(input, data)
	if err != nil {
		res.Err = err
		return res
	}
	res.Output = OutputPath(input, d.Target, opts.OutDir)

	start := time.Now()
	conv, err := converter.New(opts.Converter).Run(data, d)
	tracks := 0
	if conv != nil {
		tracks = conv.Tracks
	}
	metrics.ObserveConversion(d.String(), tracks, time.Since(start), err)
	if err != nil {
		res.Err = err
		return res
	}
	res.Conversion = conv

	if err := os.WriteFile(res.Output, conv.Output, 0644); err != nil {
		res.Err = fmt.Errorf("failed to write output file: %w", err)
	}
	return res
}

func newProgressBar(total int, w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Converting libraries...[reset]"),
	)
}

// Failed returns the results that carry an error
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
