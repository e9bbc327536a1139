package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"specfetch/internal/archive"
	"specfetch/internal/export"
	"specfetch/internal/spectrum"
)

var gzipMagic = []byte{0x1f, 0x8b}

type decodeJSON struct {
	Source  string            `json:"source"`
	Summary spectrum.Summary  `json:"summary"`
	Header  []string          `json:"header,omitempty"`
	Samples []spectrum.Sample `json:"samples,omitempty"`
	Path    string            `json:"path,omitempty"`
}

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	var strict bool
	var showSamples bool
	var showHeader bool
	var exportFormat string
	var datasetID string

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a local preview record (gzip or plain text)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			data, err := os.ReadFile(source)
			if err != nil {
				return fmt.Errorf("read %s: %w", source, err)
			}
			lines, err := recordLines(source, data)
			if err != nil {
				return err
			}
			table, err := decodeLines(lines, strict)
			if err != nil {
				return fmt.Errorf("decode %s: %w", source, err)
			}

			var written string
			if exportFormat = strings.TrimSpace(exportFormat); exportFormat != "" {
				format, err := export.ParseFormat(exportFormat)
				if err != nil {
					return err
				}
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				writer, err := export.NewWriter(cfg.Paths.OutputDir, logger)
				if err != nil {
					return err
				}
				id := strings.TrimSpace(datasetID)
				if id == "" {
					id = datasetIDFromPath(source)
				}
				written, err = writer.Write(cmd.Context(), id, table, format)
				if err != nil {
					return err
				}
			}

			summary := table.Summarize()
			if ctx.JSONMode() {
				payload := decodeJSON{Source: source, Summary: summary, Path: written}
				if showHeader {
					payload.Header = table.Header
				}
				if showSamples {
					payload.Samples = table.Samples()
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if showHeader {
				for _, line := range table.Header {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out)
			}
			if showSamples {
				headers := []string{"Wavelength", "Flux", "Uncertainty"}
				rows := make([][]string, 0, table.Len())
				for _, s := range table.Samples() {
					rows = append(rows, []string{formatFloat(s.Wavelength), formatFloat(s.Flux), formatFloat(s.Uncertainty)})
				}
				if shouldColorize(out) {
					fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignRight, alignRight}))
				} else {
					fmt.Fprint(out, renderTSV(headers, rows))
				}
				return nil
			}

			fmt.Fprintln(out, renderSummary(source, summary))
			if written != "" {
				fmt.Fprintf(out, "Wrote %s\n", written)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Reject records whose layout marker is not recognized")
	cmd.Flags().BoolVar(&showSamples, "samples", false, "Print every sample instead of a summary")
	cmd.Flags().BoolVar(&showHeader, "header", false, "Print the record header lines")
	cmd.Flags().StringVarP(&exportFormat, "export", "e", "", "Also write the table to paths.output_dir (csv or json)")
	cmd.Flags().StringVar(&datasetID, "dataset", "", "Dataset id used for the export file name (defaults to the file name)")
	return cmd
}

// recordLines returns the record text, decompressing gzip payloads detected
// by their magic bytes.
func recordLines(source string, data []byte) ([]string, error) {
	if bytes.HasPrefix(data, gzipMagic) {
		return archive.Decompress(source, data)
	}
	return archive.SplitLines(string(data)), nil
}

func decodeLines(lines []string, strict bool) (spectrum.SampleTable, error) {
	if !strict {
		return spectrum.Decode(lines)
	}
	layout, err := spectrum.ClassifyStrict(lines)
	if err != nil {
		return spectrum.SampleTable{}, err
	}
	return spectrum.DecodeAs(lines, layout)
}

// datasetIDFromPath strips directories and every extension, so
// "swp04420.mxlo.gz" yields "swp04420".
func datasetIDFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

func renderSummary(source string, summary spectrum.Summary) string {
	rows := [][]string{
		{"Source", source},
		{"Layout", displayLabel(summary.Layout.String())},
		{"Samples", fmt.Sprintf("%d", summary.Samples)},
	}
	if summary.Samples > 0 {
		rows = append(rows,
			[]string{"Wavelength", fmt.Sprintf("%s - %s", formatFloat(summary.WavelengthMin), formatFloat(summary.WavelengthMax))},
			[]string{"Flux range", fmt.Sprintf("%s - %s", formatFloat(summary.FluxMin), formatFloat(summary.FluxMax))},
			[]string{"Flux mean", formatFloat(summary.FluxMean)},
		)
	}
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
}
