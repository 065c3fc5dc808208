package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"secureentity/extractor/extractor"
	"secureentity/extractor/ner"
)

type cliOptions struct {
	configPath string
	inputPath  string
	backend    bool
	outputPath string
	outputDir  string
	query      string
	stdout     bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract-cli: %v\n", err)
		os.Exit(1)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "extract-cli: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	flag.StringVar(&opts.inputPath, "input", "", "Plain-text file to analyze")
	flag.BoolVar(&opts.backend, "backend", false, "Use the remote extraction server instead of the local model")
	flag.StringVar(&opts.outputPath, "output", "", "CSV file to write the report (default uses --output-dir/entities_*.csv)")
	flag.StringVar(&opts.outputDir, "output-dir", "csv", "Directory where report CSVs are written when --output is omitted")
	flag.StringVar(&opts.query, "filter", "", "Case-insensitive substring filter over class, description and entity")
	flag.BoolVar(&opts.stdout, "stdout", false, "Print the report to STDOUT")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --input FILE [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.inputPath = strings.TrimSpace(opts.inputPath)
	opts.outputPath = strings.TrimSpace(opts.outputPath)
	opts.outputDir = strings.TrimSpace(opts.outputDir)

	if opts.inputPath == "" {
		flag.Usage()
		return opts, errors.New("missing required --input file")
	}
	return opts, nil
}

func run(opts cliOptions) error {
	cfg, err := extractor.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	provider, closeProvider, err := buildProvider(cfg, opts.backend)
	if err != nil {
		return err
	}
	defer closeProvider()

	service, err := extractor.NewService(provider, extractor.DefaultRegistry(), cfg, logger)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}

	text, err := extractor.ReadDocument(opts.inputPath)
	if err != nil {
		return err
	}
	if text == "" {
		return errors.New("input file is empty")
	}

	report := service.Analyze(context.Background(), text, func(current, total int) {
		fmt.Fprintf(os.Stderr, "\rExtracting entities... chunk %d/%d", current, total)
		if current == total {
			fmt.Fprintln(os.Stderr)
		}
	})
	report = report.Filter(opts.query)

	outputPath, err := resolveOutputPath(opts.outputPath, opts.outputDir, opts.inputPath)
	if err != nil {
		return err
	}
	if err := extractor.WriteReportCSV(outputPath, report); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", outputPath)

	if opts.stdout {
		printReport(report)
	}
	return nil
}

func buildProvider(cfg extractor.Config, useBackend bool) (extractor.Provider, func(), error) {
	if useBackend {
		return ner.NewRemote(cfg.Backend), func() {}, nil
	}
	local, err := ner.NewLocal(cfg.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("init model: %w", err)
	}
	return local, func() { _ = local.Close() }, nil
}

func resolveOutputPath(path, dir, inputPath string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "csv"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	filename := fmt.Sprintf("entities_%s_%s.csv", base, time.Now().Format("20060102150405"))
	return filepath.Join(absDir, filename), nil
}

func printReport(report *extractor.Report) {
	stats := report.Stats()
	fmt.Println()
	fmt.Printf("Classes: %d  Entities: %d  Mentions: %d\n",
		stats.UniqueClasses, stats.UniqueEntities, stats.TotalMentions)
	if len(report.Records) == 0 {
		fmt.Println("No named entities were detected.")
		return
	}
	for _, rec := range report.Records {
		fmt.Printf("%-8s %-28s %-40s %d\n", rec.EntityClass, rec.Description, rec.Entity, rec.Count)
	}
}
