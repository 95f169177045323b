package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/siohaza/mapmaker/internal/fetch"
	"github.com/siohaza/mapmaker/internal/output"
	"github.com/siohaza/mapmaker/internal/pipeline"
	"github.com/siohaza/mapmaker/internal/report"
	"github.com/siohaza/mapmaker/pkg/config"
)

var (
	logLevel  string
	logFile   string
	outputDir string
	cacheDir  string
	lang      string
	version   = "0.1.0"

	seaLevel      float64
	unitSize      int
	buildingSize  int
	unitTalus     float64
	buildingTalus float64
	intermediates bool
	stagesPath    string
)

var rootCmd = &cobra.Command{
	Use:   "mapmaker",
	Short: "Mapmaker - procedural heightmap generator",
	Long: `Mapmaker generates heightmaps from a pipeline document, erodes and reshapes
them, and scores how playable the resulting terrain is.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run <document>",
	Short: "Run a pipeline document (yaml or toml, local or remote)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipeline,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <heightmap>",
	Short: "Score an existing heightmap (pgm, png, tiff or vxl)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Mapmaker v%s\n", version)
		fmt.Println("Procedural heightmap generator")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also append logs to this file")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", ".", "directory for generated files")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache", "", "directory for downloaded documents and scripts")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "en", "language of the printed report")

	analyzeCmd.Flags().StringVarP(&stagesPath, "config", "c", "", "document whose modifiers and finalizer are applied instead of the flags below")
	analyzeCmd.Flags().Float64Var(&seaLevel, "sea-level", 0.5, "height below which cells are sea")
	analyzeCmd.Flags().IntVar(&unitSize, "unit-size", 1, "unit footprint in cells")
	analyzeCmd.Flags().IntVar(&buildingSize, "building-size", 2, "building footprint in cells")
	analyzeCmd.Flags().Float64Var(&unitTalus, "unit-talus", 8, "steepest slope a unit can walk, per map size")
	analyzeCmd.Flags().Float64Var(&buildingTalus, "building-talus", 4, "steepest slope a building can stand on, per map size")
	analyzeCmd.Flags().BoolVar(&intermediates, "intermediates", false, "write the intermediate masks as pbm files")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the text logger, tee'd to --log-file when given. The
// returned closer must be called on exit.
func newLogger() (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var logWriter io.Writer = os.Stderr
	closer := func() {}

	if logFile != "" {
		if dir := filepath.Dir(logFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logWriter = io.MultiWriter(os.Stderr, file)
		closer = func() { file.Close() }
	}

	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger, closer, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// downloadDir keeps fetched inputs in --cache, or in a temporary directory
// removed by the returned cleanup.
func downloadDir() (string, func(), error) {
	if cacheDir != "" {
		return cacheDir, func() {}, nil
	}
	dir, err := os.MkdirTemp("", "mapmaker-")
	if err != nil {
		return "", nil, err
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

// loadDocument fetches and decodes a document. Validation is left to the
// pipeline, which only checks the stages an analysis uses.
func loadDocument(ctx context.Context, src, dir string) (*config.Document, string, error) {
	path, err := fetch.File(ctx, src, dir)
	if err != nil {
		return nil, "", err
	}
	format, err := config.FormatOf(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	doc, err := config.Decode(data, format)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load %s: %w", src, err)
	}
	return doc, filepath.Dir(path), nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	tag, err := report.ParseLanguage(lang)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	dir, cleanup, err := downloadDir()
	if err != nil {
		return err
	}
	defer cleanup()

	doc, base, err := loadDocument(ctx, args[0], dir)
	if err != nil {
		return err
	}

	logger.Info("running pipeline", "document", args[0], "output", outputDir, "version", version)

	p := pipeline.New(pipeline.Options{OutputDir: outputDir, BaseDir: base, CacheDir: dir}, logger)
	res, err := p.Run(ctx, doc)
	if err != nil {
		return err
	}

	return report.Write(os.Stdout, tag, res.Summary(args[0], true))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	tag, err := report.ParseLanguage(lang)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	dir, cleanup, err := downloadDir()
	if err != nil {
		return err
	}
	defer cleanup()

	path, err := fetch.File(ctx, args[0], dir)
	if err != nil {
		return err
	}
	h, err := output.LoadFile(path)
	if err != nil {
		return err
	}
	logger.Info("loaded heightmap", "path", args[0], "width", h.Width(), "height", h.Height())

	var modifiers []config.Stage
	finalizer := &config.Stage{
		Name: "playability",
		Parameters: config.Parameters{
			"sea_level":            seaLevel,
			"unit_size":            unitSize,
			"building_size":        buildingSize,
			"unit_talus":           unitTalus,
			"building_talus":       buildingTalus,
			"output_intermediates": intermediates,
		},
	}

	base := ""
	if stagesPath != "" {
		doc, docDir, err := loadDocument(ctx, stagesPath, dir)
		if err != nil {
			return err
		}
		modifiers, finalizer, base = doc.Modifiers, doc.Finalizer, docDir
	}

	p := pipeline.New(pipeline.Options{OutputDir: outputDir, BaseDir: base, CacheDir: dir}, logger)
	res, err := p.Analyze(ctx, h, modifiers, finalizer)
	if err != nil {
		return err
	}

	return report.Write(os.Stdout, tag, res.Summary(args[0], false))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
