// Package main is the entry point for traktor2rekordbox CLI
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/james-see/traktor2rekordbox/pkg/analysis"
	"github.com/james-see/traktor2rekordbox/pkg/api"
	"github.com/james-see/traktor2rekordbox/pkg/batch"
	"github.com/james-see/traktor2rekordbox/pkg/config"
	"github.com/james-see/traktor2rekordbox/pkg/converter"
	"github.com/james-see/traktor2rekordbox/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	verbose    bool
	outputFile string
	outDir     string
	workers    int
	serverPort int
	jsonOutput bool

	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "traktor2rekordbox",
	Short: "Convert DJ libraries between Traktor NML and Rekordbox XML",
	Long: `traktor2rekordbox converts DJ library exports between Native Instruments
Traktor (.nml) and Pioneer Rekordbox (.xml), keeping track metadata,
hotcues, loops, beatgrids and playlists.

Examples:
  traktor2rekordbox convert collection.nml -o rekordbox.xml
  traktor2rekordbox nml2xml collection.nml
  traktor2rekordbox xml2nml rekordbox.xml -o collection.nml
  traktor2rekordbox analyze collection.nml
  traktor2rekordbox batch exports/ --out-dir converted
  traktor2rekordbox tui
  traktor2rekordbox serve --port 8080`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Auto-detect and convert between formats",
	Long:  `Detects the input format from its extension or content and converts it to the other format.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var nml2xmlCmd = &cobra.Command{
	Use:   "nml2xml <input.nml>",
	Short: "Convert Traktor NML to Rekordbox XML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDirection(args[0], converter.NMLToRekordbox)
	},
}

var xml2nmlCmd = &cobra.Command{
	Use:   "xml2nml <input.xml>",
	Short: "Convert Rekordbox XML to Traktor NML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDirection(args[0], converter.RekordboxToNML)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <input>",
	Short: "List every track's cues, tracks without cues first",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var batchCmd = &cobra.Command{
	Use:   "batch <input>...",
	Short: "Convert many files or directories concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")
	nml2xmlCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .xml file path")
	xml2nmlCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .nml file path")

	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")

	batchCmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for converted files (default: next to each input)")
	batchCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent conversions (default from config)")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default from config)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(nml2xmlCmd)
	rootCmd.AddCommand(xml2nmlCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	cfg = config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func converterOptions() converter.Options {
	return cfg.ConverterOptions(logger)
}

func getOutputPath(input string, target converter.Format) string {
	if outputFile != "" {
		return outputFile
	}
	return batch.OutputPath(input, target, "")
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	d, err := converter.DetectDirection(input, data)
	if err != nil {
		return err
	}

	output := getOutputPath(input, d.Target)
	if err := converter.CheckOutput(d, output); err != nil {
		return err
	}

	fmt.Printf("Converting %s -> %s\n", input, output)
	result, err := converter.New(converterOptions()).Run(data, d)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, result.Output, 0644); err != nil {
		return err
	}
	printSummary(result)
	return nil
}

func runDirection(input string, d converter.Direction) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	result, err := converter.New(converterOptions()).Run(data, d)
	if err != nil {
		return err
	}

	output := getOutputPath(input, d.Target)
	if err := os.WriteFile(output, result.Output, 0644); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", input, output)
	printSummary(result)
	return nil
}

func printSummary(result *converter.ConversionResult) {
	fmt.Printf("Conversion complete! %d tracks, %d playlists\n", result.Tracks, result.Playlists)
	if result.SkippedReferences > 0 {
		fmt.Printf("Warning: %d playlist entries had no matching track\n", result.SkippedReferences)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	report, err := analysis.Analyze(data)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ARTIST\tTITLE\tDURATION\tCUES\tLOOPS")
	for _, t := range report.Tracks {
		loops := 0
		for _, c := range t.Cues {
			if c.IsLoop {
				loops++
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%.0fs\t%d\t%d\n", t.Artist, t.Title, t.Duration, len(t.Cues), loops)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d tracks, %d without cues (%s)\n", len(report.Tracks), report.WithoutCues, report.Format)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no .nml or .xml files found")
	}

	n := workers
	if n == 0 {
		n = cfg.Batch.Workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := batch.Run(ctx, inputs, batch.Options{
		Workers:   n,
		OutDir:    outDir,
		Progress:  os.Stderr,
		Converter: converterOptions(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("FAIL %s: %v\n", r.Input, r.Err)
			continue
		}
		fmt.Printf("OK   %s -> %s (%d tracks)\n", r.Input, r.Output, r.Conversion.Tracks)
	}

	if failed := batch.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d conversions failed", len(failed), len(results))
	}
	return nil
}

// expandInputs replaces each directory argument with the library files it holds
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}
		for _, pattern := range []string{"*.nml", "*.xml"} {
			matches, err := filepath.Glob(filepath.Join(arg, pattern))
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, matches...)
		}
	}
	return inputs, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	// keep log lines off the alternate screen
	opts := converterOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return tui.Run(opts)
}

func runServe(cmd *cobra.Command, args []string) error {
	port := serverPort
	if port == 0 {
		port = cfg.Server.Port
	}
	fmt.Printf("Starting API server on port %d...\n", port)
	return api.StartServer(port, converterOptions())
}
