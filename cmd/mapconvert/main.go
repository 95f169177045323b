package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siohaza/mapmaker/pkg/config"
)

var (
	inputDir  string
	outputDir string
	reverse   bool
)

var rootCmd = &cobra.Command{
	Use:   "mapconvert [files...]",
	Short: "convert mapmaker pipeline documents from yaml to toml",
	Run:   runConvert,
}

func init() {
	rootCmd.Flags().StringVarP(&inputDir, "input", "i", "configs", "Input directory with pipeline documents")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "configs", "Output directory for converted documents")
	rootCmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "Convert toml documents to yaml instead")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runConvert(cmd *cobra.Command, args []string) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	from, to := config.FormatYAML, config.FormatTOML
	if reverse {
		from, to = to, from
	}

	files, err := getInputFiles(args, from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get input files: %v\n", err)
		os.Exit(1)
	}

	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "No input files found")
		os.Exit(1)
	}

	converted := 0
	skipped := 0
	failed := 0

	for _, file := range files {
		doc, err := convertDocument(file)
		if err != nil {
			fmt.Printf("SKIP %s: %v\n", filepath.Base(file), err)
			skipped++
			continue
		}

		baseName := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		outputPath := filepath.Join(outputDir, baseName+"."+to.String())

		if err := writeDocument(outputPath, doc, to); err != nil {
			fmt.Printf("FAIL %s: %v\n", baseName, err)
			failed++
			continue
		}

		fmt.Printf("OK   %s -> %s\n", filepath.Base(file), filepath.Base(outputPath))
		converted++
	}

	fmt.Printf("\nSummary: %d converted, %d skipped, %d failed\n", converted, skipped, failed)
}

func extensions(format config.Format) []string {
	if format == config.FormatTOML {
		return []string{"*.toml"}
	}
	return []string{"*.yaml", "*.yml"}
}

func getInputFiles(args []string, format config.Format) ([]string, error) {
	var files []string

	glob := func(dir string) error {
		for _, pattern := range extensions(format) {
			dirFiles, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list files in %s: %w", dir, err)
			}
			files = append(files, dirFiles...)
		}
		return nil
	}

	if len(args) == 0 {
		if err := glob(inputDir); err != nil {
			return nil, err
		}
		return files, nil
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			if err := glob(arg); err != nil {
				return nil, err
			}
		} else {
			files = append(files, arg)
		}
	}

	return files, nil
}

// convertDocument decodes a document. Validation problems are reported as
// warnings; only unreadable documents are skipped.
func convertDocument(filename string) (*config.Document, error) {
	format, err := config.FormatOf(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	doc, err := config.Decode(data, format)
	if err != nil {
		return nil, err
	}

	if err := doc.Validate(); err != nil {
		fmt.Printf("WARN %s: %v\n", filepath.Base(filename), err)
		if !errors.Is(err, config.ErrBadConfig) {
			return nil, err
		}
	}

	return doc, nil
}

func writeDocument(filename string, doc *config.Document, format config.Format) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return doc.Encode(file, format)
}
