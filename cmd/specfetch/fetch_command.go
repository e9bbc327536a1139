package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"specfetch/internal/archive"
	"specfetch/internal/export"
	"specfetch/internal/logging"
	"specfetch/internal/mast"
	"specfetch/internal/pipeline"
	"specfetch/internal/services"
	"specfetch/internal/spectrum"
)

type fetchResultJSON struct {
	DatasetID string            `json:"dataset_id"`
	Tier      string            `json:"tier"`
	RequestID string            `json:"request_id,omitempty"`
	URL       string            `json:"url,omitempty"`
	Summary   *spectrum.Summary `json:"summary,omitempty"`
	Path      string            `json:"path,omitempty"`
	Duration  string            `json:"duration"`
	Error     string            `json:"error,omitempty"`
	ErrorKind string            `json:"error_kind,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var tier string
	var outFormat string
	var noExport bool
	var strict bool
	var target string
	var parallelism int

	cmd := &cobra.Command{
		Use:   "fetch [dataset-id...]",
		Short: "Fetch and decode IUE preview records",
		Long: "Fetch one or more IUE preview records from the archive, decode them into\n" +
			"wavelength, flux, and uncertainty columns, and export the result.\n\n" +
			"Dataset identifiers can be listed directly or resolved from MAST with --target.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			jobs := make([]pipeline.Job, 0, len(args))
			for _, arg := range args {
				id := strings.TrimSpace(arg)
				if id == "" {
					continue
				}
				jobs = append(jobs, pipeline.Job{DatasetID: id, Tier: tier})
			}
			if target = strings.TrimSpace(target); target != "" {
				client, err := ctx.mastClient()
				if err != nil {
					return err
				}
				rows, err := client.IUESearch(cmd.Context(), mast.IUESearchOptions{Target: target})
				if err != nil {
					return fmt.Errorf("resolve %s: %w", target, err)
				}
				found := pipeline.JobsFromRows(rows)
				if len(found) == 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "No IUE datasets found for %s\n", target)
				}
				jobs = append(jobs, found...)
			}
			if len(jobs) == 0 {
				if target != "" {
					return nil
				}
				return fmt.Errorf("provide at least one dataset id or --target")
			}

			fetcher, err := ctx.archiveClient()
			if err != nil {
				return err
			}

			if parallelism <= 0 {
				parallelism = cfg.Pipeline.Parallelism
			}
			opts := []pipeline.Option{
				pipeline.WithLogger(logger),
				pipeline.WithParallelism(parallelism),
				pipeline.WithStrictLayout(strict),
			}
			if !noExport {
				format, err := export.ParseFormat(outFormat)
				if err != nil {
					return err
				}
				writer, err := export.NewWriter(cfg.Paths.OutputDir, logger)
				if err != nil {
					return err
				}
				opts = append(opts, pipeline.WithExporter(writer, format))
			}
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				opts = append(opts, pipeline.WithRecorder(store))
			}

			runner := pipeline.New(fetcher, opts...)
			results := runner.RunBatch(cmd.Context(), jobs)

			if ctx.JSONMode() {
				payload := make([]fetchResultJSON, 0, len(results))
				for _, result := range results {
					payload = append(payload, fetchResultToJSON(result))
				}
				if err := writeJSON(cmd, payload); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderFetchResults(results))
			}

			if err := pipeline.Errors(results); err != nil {
				failed := countFailed(results)
				logging.ErrorWithContext(logger, "fetch failed", "batch_failed",
					logging.Error(err),
					logging.Int("failed", failed),
					logging.Int("jobs", len(results)),
				)
				return fmt.Errorf("%d of %d datasets failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tier, "tier", archive.TierSmall, "Storage tier for listed datasets (SMALL or LARGE)")
	cmd.Flags().StringVarP(&outFormat, "out", "o", string(export.FormatCSV), "Export format (csv or json)")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "Decode without writing files to paths.output_dir")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject records whose layout marker is not recognized")
	cmd.Flags().StringVar(&target, "target", "", "Resolve datasets for a target name through MAST")
	cmd.Flags().IntVar(&parallelism, "parallel", 0, "Concurrent fetches (defaults to pipeline.parallelism)")
	return cmd
}

func renderFetchResults(results []pipeline.Result) string {
	headers := []string{"Dataset", "Tier", "Layout", "Samples", "Wavelength", "Duration", "Output"}
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		row := []string{result.Job.DatasetID, result.Job.Tier}
		if result.Err != nil {
			row = append(row, "-", "-", "-", formatDuration(result.Duration), "error: "+result.Err.Error())
			rows = append(rows, row)
			continue
		}
		summary := result.Table.Summarize()
		span := "-"
		if summary.Samples > 0 {
			span = fmt.Sprintf("%s-%s", formatFloat(summary.WavelengthMin), formatFloat(summary.WavelengthMax))
		}
		output := result.Path
		if output == "" {
			output = "-"
		}
		row = append(row,
			displayLabel(summary.Layout.String()),
			fmt.Sprintf("%d", summary.Samples),
			span,
			formatDuration(result.Duration),
			output,
		)
		rows = append(rows, row)
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft})
}

func fetchResultToJSON(result pipeline.Result) fetchResultJSON {
	payload := fetchResultJSON{
		DatasetID: result.Job.DatasetID,
		Tier:      result.Job.Tier,
		RequestID: result.RequestID,
		URL:       result.URL,
		Path:      result.Path,
		Duration:  result.Duration.String(),
	}
	if result.Err != nil {
		payload.Error = result.Err.Error()
		payload.ErrorKind = services.Kind(result.Err)
		payload.Retryable = services.Retryable(result.Err)
		return payload
	}
	summary := result.Table.Summarize()
	payload.Summary = &summary
	return payload
}

func countFailed(results []pipeline.Result) int {
	n := 0
	for _, result := range results {
		if result.Err != nil {
			n++
		}
	}
	return n
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
