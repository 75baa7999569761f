package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harconv/harconv/internal/config"
	"github.com/harconv/harconv/pkg/convert"
	"github.com/harconv/harconv/pkg/logger"
)

var (
	// Input handling
	format     string
	configPath string

	// Output
	passthrough bool
	gzipOutput  bool

	// Reporting
	quiet     bool
	verbose   bool
	maxErrors int
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "harconv [flags] <input> [output]",
		Short: "harconv - capture export to HAR 1.2 converter",
		Long: `harconv converts captured HTTP transaction exports into the HAR 1.2
JSON format consumed by HAR viewers and analysis tools.

Two input formats are supported: proxy CSV exports (streamed row by row, so
inputs of any size convert in bounded memory) and Burp Suite XML history
exports. Records that cannot be minimally parsed are skipped and counted;
conversion always favors producing as many entries as possible.

Examples:
  # Convert a proxy CSV export; output defaults to capture.har
  harconv capture.csv

  # Convert a Burp Suite history export to a chosen path
  harconv burp_export.xml traffic.har

  # Force the input format when the extension is misleading
  harconv --format xml export.dat

  # Drop the lossless passthrough fields for a smaller document
  harconv --passthrough=false capture.csv

  # Gzip-compress the output for very large captures
  harconv --gzip capture.csv`,
		Version: convert.Version,
		Args:    cobra.RangeArgs(1, 2),
		RunE:    runConvert,
	}

	// Input handling
	rootCmd.Flags().StringVar(&format, "format", string(config.DefaultFormat), "Input format: auto, csv, xml")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Configuration file path (default: XDG config dir)")

	// Output
	rootCmd.Flags().BoolVar(&passthrough, "passthrough", true, "Carry every original source field into each entry")
	rootCmd.Flags().BoolVarP(&gzipOutput, "gzip", "z", false, "Gzip-compress the output document")

	// Reporting
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress console output")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().IntVar(&maxErrors, "max-errors", config.DefaultMaxErrorDetail, "How many per-record errors to report individually")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := validateFlags(); err != nil {
		return err
	}

	input := args[0]
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("input file %s: %w", input, err)
	}

	cfg := &config.Config{
		Format:         config.Format(format),
		Passthrough:    passthrough,
		GzipOutput:     gzipOutput,
		Quiet:          quiet,
		Verbose:        verbose,
		MaxErrorDetail: maxErrors,
	}

	effectiveConfigPath := configPath
	if effectiveConfigPath == "" {
		effectiveConfigPath = config.GetDefaultConfigPath()
	}
	fileConfig, err := config.LoadConfigFile(effectiveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", effectiveConfigPath, err)
	}
	cfg.MergeWithFileConfig(fileConfig)

	output := deriveOutputPath(input, cfg.GzipOutput)
	if len(args) == 2 {
		output = args[1]
	}

	log := logger.New(cfg.Verbose, cfg.Quiet)
	log.Info("converting %s -> %s", input, output)

	converter := convert.New(cfg, log)
	stats, err := converter.Convert(input, output)
	if err != nil {
		return err
	}

	if !cfg.Quiet {
		printSummary(stats, output)
	}
	return nil
}

// validateFlags validates command line flags.
func validateFlags() error {
	validFormats := []string{string(config.FormatAuto), string(config.FormatCSV), string(config.FormatXML)}
	valid := false
	for _, f := range validFormats {
		if format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid format '%s', must be one of: %s", format, strings.Join(validFormats, ", "))
	}

	if maxErrors < 0 {
		return fmt.Errorf("max-errors must be >= 0")
	}

	return nil
}

// deriveOutputPath builds the default output filename from the input stem.
func deriveOutputPath(input string, compressed bool) string {
	stem := strings.TrimSuffix(input, filepath.Ext(input))
	if compressed {
		return stem + ".har.gz"
	}
	return stem + ".har"
}

// printSummary reports the run outcome on stdout.
func printSummary(stats *convert.Stats, output string) {
	color.Green("Conversion completed successfully")
	fmt.Printf("Records processed: %d\n", stats.Processed)
	if stats.Skipped > 0 {
		color.Yellow("Records skipped: %d", stats.Skipped)
	}

	size := "unknown"
	if info, err := os.Stat(output); err == nil {
		size = humanSize(info.Size())
	}
	fmt.Printf("Output file: %s (%s)\n", output, size)
}

// humanSize formats a byte count with KB/MB/GB thresholds.
func humanSize(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.2f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	default:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	}
}
