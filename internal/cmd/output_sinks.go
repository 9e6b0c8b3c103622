package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genelens/genelens/internal/output"
)

type outputSink struct {
	writer io.Writer
	close  func() error
	path   string
}

var nonFilename = regexp.MustCompile(`[^a-z0-9._-]+`)

func sanitizeFilename(value string) string {
	clean := strings.ToLower(strings.TrimSpace(value))
	clean = nonFilename.ReplaceAllString(clean, "-")
	clean = strings.Trim(clean, "-.")
	if clean == "" {
		return "output"
	}
	return clean
}

// resolveOutPath returns the --out target. A directory target (trailing
// slash or existing directory) gets a file named after the command.
func resolveOutPath(cmd *cobra.Command, name string, format output.Format) (string, error) {
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return "", err
	}
	outPath = strings.TrimSpace(outPath)
	if outPath == "" || outPath == "-" {
		return outPath, nil
	}

	isDir := strings.HasSuffix(outPath, "/") || strings.HasSuffix(outPath, string(os.PathSeparator))
	if info, statErr := os.Stat(outPath); statErr == nil && info.IsDir() {
		isDir = true
	}
	if isDir {
		return filepath.Join(outPath, sanitizeFilename(name)+format.Extension()), nil
	}
	return outPath, nil
}

func openSink(path string, stdout io.Writer) (*outputSink, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		return &outputSink{writer: stdout, close: func() error { return nil }, path: "-"}, nil
	}

	// #nosec G301 -- output directories are user-chosen
	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(trimmed)
	if err != nil {
		return nil, err
	}
	return &outputSink{writer: file, close: file.Close, path: trimmed}, nil
}

// writeOutput renders value and writes it to the sink selected by --out.
func writeOutput(cmd *cobra.Command, name string, format output.Format, value any) error {
	rendered, err := output.Render(format, value)
	if err != nil {
		return err
	}

	path, err := resolveOutPath(cmd, name, format)
	if err != nil {
		return err
	}
	sink, err := openSink(path, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = sink.close() }()

	_, err = fmt.Fprintln(sink.writer, rendered)
	return err
}

// writeText writes preformatted text to the sink selected by --out.
func writeText(cmd *cobra.Command, name string, format output.Format, text string) error {
	path, err := resolveOutPath(cmd, name, format)
	if err != nil {
		return err
	}
	sink, err := openSink(path, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = sink.close() }()

	_, err = fmt.Fprint(sink.writer, text)
	return err
}
