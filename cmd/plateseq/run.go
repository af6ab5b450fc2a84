package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/plateseq/plateseq/internal/align"
	"github.com/plateseq/plateseq/internal/call"
	"github.com/plateseq/plateseq/internal/demux"
	"github.com/plateseq/plateseq/internal/duckdb"
	"github.com/plateseq/plateseq/internal/output"
	"github.com/plateseq/plateseq/internal/seq"
	"github.com/plateseq/plateseq/internal/well"
)

// runConfig is the resolved, immutable configuration of one run.
type runConfig struct {
	FastqPath     string
	BarcodePath   string
	ReferencePath string
	LayoutPath    string
	OutputDir     string
	DBPath        string

	FrontWindow       int
	RearWindow        int
	MinReadLength     int
	MaxReadLength     int
	ScoreThreshold    int
	EditDistThreshold int
	PositionOffset    int
	CallingThreshold  float64
	MinDepth          int
	Threads           int

	SkipDemultiplexing bool
	SkipVariantCalling bool
	ShowMSA            bool
	Verbose            bool
}

// validate rejects configurations the pipeline cannot run with. These
// errors surface before any input is read.
func (c *runConfig) validate() error {
	if c.FastqPath == "" {
		return fmt.Errorf("--fastq is required")
	}
	if c.ReferencePath == "" {
		return fmt.Errorf("--reference is required")
	}
	if !c.SkipDemultiplexing && c.BarcodePath == "" {
		return fmt.Errorf("--barcodes is required unless --skip-demultiplexing is set")
	}
	if c.FrontWindow <= 0 || c.RearWindow <= 0 {
		return fmt.Errorf("window sizes must be positive (front %d, rear %d)", c.FrontWindow, c.RearWindow)
	}
	if c.MinReadLength < 0 || c.MaxReadLength < c.MinReadLength {
		return fmt.Errorf("invalid read length range [%d, %d]", c.MinReadLength, c.MaxReadLength)
	}
	if c.EditDistThreshold < 0 {
		return fmt.Errorf("edit distance threshold must be non-negative, got %d", c.EditDistThreshold)
	}
	if c.CallingThreshold <= 0 || c.CallingThreshold > 1 {
		return fmt.Errorf("calling threshold must be in (0, 1], got %g", c.CallingThreshold)
	}
	if c.MinDepth < 0 {
		return fmt.Errorf("min depth must be non-negative, got %d", c.MinDepth)
	}
	if c.Threads < 1 {
		return fmt.Errorf("thread count must be at least 1, got %d", c.Threads)
	}
	return nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Demultiplex reads and call per-well variants",
		Example: `  plateseq run --fastq reads.fastq.gz --barcodes barcodes.fasta --reference template.fasta
  plateseq run --fastq - --barcodes barcodes.fasta --reference template.fasta --threads 8
  plateseq run --fastq reads.fastq --reference template.fasta --skip-demultiplexing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromViper()
			if err := cfg.validate(); err != nil {
				return err
			}
			return runPipeline(cfg)
		},
	}

	fl := cmd.Flags()
	fl.String("fastq", "", "Input FASTQ file, gzip supported ('-' for stdin)")
	fl.String("barcodes", "", "Barcode FASTA file (forward NB*, reverse RB* records)")
	fl.String("reference", "", "Reference FASTA file")
	fl.String("layout", "", "Plate layout TSV (default: NB/RB numbering convention)")
	fl.StringP("output-dir", "o", "plateseq_results", "Output directory")
	fl.String("db", "", "Also write results to a DuckDB database at this path")

	fl.Int("front-window", 100, "Bases scanned for the forward barcode at the read start")
	fl.Int("rear-window", 100, "Bases scanned for the reverse barcode at the read end")
	fl.Int("min-length", 800, "Minimum read length")
	fl.Int("max-length", 5000, "Maximum read length")
	fl.Int("score-threshold", 50, "Minimum barcode alignment score")
	fl.Int("edit-distance-threshold", 8, "Maximum barcode edit distance")
	fl.Int("position-offset", 0, "Offset added to reported reference positions")
	fl.Float64("calling-threshold", 0.5, "Minimum non-reference frequency to call a mutant")
	fl.Int("min-depth", 5, "Positions below this depth are no-call")
	fl.IntP("threads", "t", runtime.NumCPU(), "Worker count for per-well processing")

	fl.Bool("skip-demultiplexing", false, "Treat all reads as a single well")
	fl.Bool("skip-variantcalling", false, "Stop after demultiplexing, only write statistics")
	fl.Bool("show-msa", false, "Write the per-well multi-read alignment as FASTA")
	fl.BoolP("verbose", "v", false, "Verbose logging")

	// viper keys follow the config-file naming; the file supplies
	// defaults and explicit flags win.
	for key, flag := range map[string]string{
		"front_window_size":         "front-window",
		"rear_window_size":          "rear-window",
		"min_read_length":           "min-length",
		"max_read_length":           "max-length",
		"alignment_score_threshold": "score-threshold",
		"edit_distance_threshold":   "edit-distance-threshold",
		"position_offset":           "position-offset",
		"calling_threshold":         "calling-threshold",
		"min_depth":                 "min-depth",
		"n_threads":                 "threads",
		"skip_demultiplexing":       "skip-demultiplexing",
		"skip_variantcalling":       "skip-variantcalling",
		"show_msa":                  "show-msa",
	} {
		_ = viper.BindPFlag(key, fl.Lookup(flag))
	}
	_ = viper.BindPFlag("fastq", fl.Lookup("fastq"))
	_ = viper.BindPFlag("barcodes", fl.Lookup("barcodes"))
	_ = viper.BindPFlag("reference", fl.Lookup("reference"))
	_ = viper.BindPFlag("layout", fl.Lookup("layout"))
	_ = viper.BindPFlag("output_dir", fl.Lookup("output-dir"))
	_ = viper.BindPFlag("db", fl.Lookup("db"))
	_ = viper.BindPFlag("verbose", fl.Lookup("verbose"))

	return cmd
}

func configFromViper() *runConfig {
	return &runConfig{
		FastqPath:     viper.GetString("fastq"),
		BarcodePath:   viper.GetString("barcodes"),
		ReferencePath: viper.GetString("reference"),
		LayoutPath:    viper.GetString("layout"),
		OutputDir:     viper.GetString("output_dir"),
		DBPath:        viper.GetString("db"),

		FrontWindow:       viper.GetInt("front_window_size"),
		RearWindow:        viper.GetInt("rear_window_size"),
		MinReadLength:     viper.GetInt("min_read_length"),
		MaxReadLength:     viper.GetInt("max_read_length"),
		ScoreThreshold:    viper.GetInt("alignment_score_threshold"),
		EditDistThreshold: viper.GetInt("edit_distance_threshold"),
		PositionOffset:    viper.GetInt("position_offset"),
		CallingThreshold:  viper.GetFloat64("calling_threshold"),
		MinDepth:          viper.GetInt("min_depth"),
		Threads:           viper.GetInt("n_threads"),

		SkipDemultiplexing: viper.GetBool("skip_demultiplexing"),
		SkipVariantCalling: viper.GetBool("skip_variantcalling"),
		ShowMSA:            viper.GetBool("show_msa"),
		Verbose:            viper.GetBool("verbose"),
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

func runPipeline(cfg *runConfig) error {
	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ref, err := seq.LoadReference(cfg.ReferencePath)
	if err != nil {
		return fmt.Errorf("load reference: %w", err)
	}
	logger.Info("loaded reference",
		zap.String("name", ref.Name),
		zap.Int("length", len(ref.Seq)))

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	stats := demux.NewStats()
	groups, layout, err := demultiplex(cfg, stats, logger)
	if err != nil {
		return err
	}
	stats.Log(logger)

	if cfg.SkipVariantCalling {
		return writeStatsOnly(cfg, stats)
	}

	wells := well.Group(groups, layout)
	caller := call.Caller{
		Threshold: cfg.CallingThreshold,
		MinDepth:  cfg.MinDepth,
		Offset:    cfg.PositionOffset,
	}
	runner := call.NewRunner(ref, align.DefaultScoring, caller)
	runner.KeepMSA = cfg.ShowMSA
	runner.SetLogger(logger)

	results := runner.RunAll(wells, cfg.Threads)
	logger.Info("variant calling finished",
		zap.Int("wells", len(results)),
		zap.Int("failed", call.FailedCount(results)))

	if cfg.ShowMSA {
		if err := writeMSAs(cfg.OutputDir, results); err != nil {
			return err
		}
	}

	if err := writeTables(cfg, results, stats); err != nil {
		return err
	}

	if cfg.DBPath != "" {
		store, err := duckdb.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open results database: %w", err)
		}
		defer store.Close()
		if err := store.WriteResults(results); err != nil {
			return fmt.Errorf("write results database: %w", err)
		}
		logger.Info("wrote results database", zap.String("path", cfg.DBPath))
	}

	return nil
}

// demultiplex streams reads through the matcher/assigner worker pool.
// With --skip-demultiplexing every length-passing read lands in a single
// synthetic well instead.
func demultiplex(cfg *runConfig, stats *demux.Stats, logger *zap.Logger) (map[seq.PlateWell][]*seq.Read, *seq.Layout, error) {
	reader, err := seq.NewFASTQReader(cfg.FastqPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open reads: %w", err)
	}
	defer reader.Close()

	if cfg.SkipDemultiplexing {
		groups, layout := singleWell(cfg, reader, stats)
		return groups, layout, nil
	}

	forward, reverse, skipped, err := seq.LoadBarcodes(cfg.BarcodePath, "NB", "RB")
	if err != nil {
		return nil, nil, fmt.Errorf("load barcodes: %w", err)
	}
	stats.RecordSkipped(skipped)
	logger.Info("loaded barcodes",
		zap.Int("forward", len(forward)),
		zap.Int("reverse", len(reverse)))

	var layout *seq.Layout
	if cfg.LayoutPath != "" {
		l, skippedLines, err := seq.LoadLayout(cfg.LayoutPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load layout: %w", err)
		}
		if skippedLines > 0 {
			logger.Warn("skipped malformed layout lines", zap.Int("lines", skippedLines))
		}
		layout = l
	} else {
		layout = seq.DefaultLayout(forward, reverse)
	}

	matcher := demux.NewMatcher(forward, reverse, cfg.FrontWindow, cfg.RearWindow, align.DefaultScoring)
	assigner := &demux.Assigner{
		MinReadLength:     cfg.MinReadLength,
		MaxReadLength:     cfg.MaxReadLength,
		ScoreThreshold:    cfg.ScoreThreshold,
		EditDistThreshold: cfg.EditDistThreshold,
		Layout:            layout,
	}

	reads := make(chan *seq.Read, 2*cfg.Threads)
	var readErr error
	go func() {
		defer close(reads)
		for {
			r, err := reader.Next()
			if err != nil {
				readErr = err
				return
			}
			if r == nil {
				return
			}
			reads <- r
		}
	}()

	groups := demux.Demultiplex(reads, matcher, assigner, stats, cfg.Threads)
	stats.RecordSkipped(reader.Skipped())
	if readErr != nil {
		return nil, nil, fmt.Errorf("read input: %w", readErr)
	}
	return groups, layout, nil
}

// singleWell collects every length-passing read into plate 0 well A1.
func singleWell(cfg *runConfig, reader *seq.FASTQReader, stats *demux.Stats) (map[seq.PlateWell][]*seq.Read, *seq.Layout) {
	target := seq.PlateWell{Plate: 0, Well: seq.WellCoord{Row: 'A', Col: 1}}
	groups := make(map[seq.PlateWell][]*seq.Read)
	for {
		r, err := reader.Next()
		if err != nil || r == nil {
			break
		}
		if r.Len() < cfg.MinReadLength || r.Len() > cfg.MaxReadLength {
			stats.Record(demux.Assignment{ReadID: r.ID, Rejected: true, Reason: demux.ReasonLengthOutOfRange})
			continue
		}
		stats.Record(demux.Assignment{ReadID: r.ID, Target: target})
		groups[target] = append(groups[target], r)
	}
	stats.RecordSkipped(reader.Skipped())
	layout := seq.SingleWellLayout(target)
	return groups, layout
}

func writeMSAs(outputDir string, results []*call.WellResult) error {
	msaDir := filepath.Join(outputDir, "msa")
	if err := os.MkdirAll(msaDir, 0755); err != nil {
		return fmt.Errorf("create msa directory: %w", err)
	}
	for _, res := range results {
		if res.Pileup == nil || len(res.Pileup.Rows) == 0 {
			continue
		}
		path := filepath.Join(msaDir, fmt.Sprintf("plate%d_%s.fa", res.Well.Plate, res.Well.Well))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create msa file: %w", err)
		}
		if err := well.WriteMSA(f, res.Pileup); err != nil {
			f.Close()
			return fmt.Errorf("write msa: %w", err)
		}
		f.Close()
	}
	return nil
}

func writeTables(cfg *runConfig, results []*call.WellResult, stats *demux.Stats) error {
	callsFile, err := os.Create(filepath.Join(cfg.OutputDir, "calls.tsv"))
	if err != nil {
		return fmt.Errorf("create calls table: %w", err)
	}
	defer callsFile.Close()

	cw := output.NewCallWriter(callsFile)
	if err := cw.WriteHeader(); err != nil {
		return fmt.Errorf("write calls header: %w", err)
	}
	if err := cw.WriteAll(results); err != nil {
		return err
	}
	if err := cw.Flush(); err != nil {
		return fmt.Errorf("flush calls table: %w", err)
	}

	summaryFile, err := os.Create(filepath.Join(cfg.OutputDir, "summary.tsv"))
	if err != nil {
		return fmt.Errorf("create summary table: %w", err)
	}
	defer summaryFile.Close()

	sw := output.NewSummaryWriter(summaryFile)
	if err := sw.WriteHeader(); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	if err := sw.WriteAll(results); err != nil {
		return err
	}
	if err := sw.WriteStats(stats); err != nil {
		return fmt.Errorf("write rejection statistics: %w", err)
	}
	return sw.Flush()
}

func writeStatsOnly(cfg *runConfig, stats *demux.Stats) error {
	summaryFile, err := os.Create(filepath.Join(cfg.OutputDir, "summary.tsv"))
	if err != nil {
		return fmt.Errorf("create summary table: %w", err)
	}
	defer summaryFile.Close()

	sw := output.NewSummaryWriter(summaryFile)
	if err := sw.WriteStats(stats); err != nil {
		return fmt.Errorf("write rejection statistics: %w", err)
	}
	return sw.Flush()
}
