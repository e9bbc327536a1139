package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"specfetch/internal/archive"
	"specfetch/internal/export"
	"specfetch/internal/history"
	"specfetch/internal/logging"
	"specfetch/internal/mast"
	"specfetch/internal/services"
	"specfetch/internal/spectrum"
)

const defaultParallelism = 4

// Job identifies one record to fetch.
type Job struct {
	DatasetID string `json:"dataset_id"`
	Tier      string `json:"tier"`
}

// JobsFromRows converts IUE search rows into jobs, skipping rows without a
// dataset identifier.
func JobsFromRows(rows []mast.IUERow) []Job {
	jobs := make([]Job, 0, len(rows))
	for _, row := range rows {
		id := row.DatasetID()
		if id == "" {
			continue
		}
		jobs = append(jobs, Job{DatasetID: id, Tier: row.Tier()})
	}
	return jobs
}

// Result is the outcome of one job.
type Result struct {
	Job       Job
	RequestID string
	URL       string
	Table     spectrum.SampleTable
	Path      string
	Duration  time.Duration
	Err       error
}

// Recorder persists job outcomes.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (history.Entry, error)
}

// Exporter writes decoded tables.
type Exporter interface {
	Write(ctx context.Context, datasetID string, table spectrum.SampleTable, format export.Format) (string, error)
}

// Runner executes jobs against a Fetcher.
type Runner struct {
	fetcher     archive.Fetcher
	recorder    Recorder
	exporter    Exporter
	format      export.Format
	strict      bool
	parallelism int
	logger      *slog.Logger
	newID       func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder appends every outcome to recorder.
func WithRecorder(recorder Recorder) Option {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

// WithExporter writes every decoded table with exporter in format.
func WithExporter(exporter Exporter, format export.Format) Option {
	return func(r *Runner) {
		r.exporter = exporter
		r.format = format
	}
}

// WithStrictLayout rejects records whose layout marker is neither the high
// dispersion grid line nor a numeric sample.
func WithStrictLayout(strict bool) Option {
	return func(r *Runner) {
		r.strict = strict
	}
}

// WithParallelism bounds the number of concurrent jobs in RunBatch.
func WithParallelism(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.parallelism = n
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIDGenerator overrides correlation identifier generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// New creates a Runner.
func New(fetcher archive.Fetcher, opts ...Option) *Runner {
	runner := &Runner{
		fetcher:     fetcher,
		parallelism: defaultParallelism,
		logger:      logging.NewNop(),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(runner)
	}
	runner.logger = logging.NewComponentLogger(runner.logger, "pipeline")
	return runner
}

// Run fetches, decodes, and optionally exports one record. The returned
// Result carries any failure in Err.
func (r *Runner) Run(ctx context.Context, job Job) Result {
	job.DatasetID = strings.TrimSpace(job.DatasetID)
	result := Result{Job: job, RequestID: r.newID()}
	ctx = services.WithDatasetID(ctx, job.DatasetID)
	ctx = services.WithRequestID(ctx, result.RequestID)
	logger := logging.WithContext(ctx, r.logger)

	start := time.Now()
	result.Err = r.execute(ctx, logger, &result)
	result.Duration = time.Since(start)

	if result.Err != nil {
		logging.WarnWithContext(logger, "dataset failed", "pipeline.job_failed",
			logging.Tier(job.Tier),
			logging.String("error_kind", services.Kind(result.Err)),
			logging.Bool("retryable", services.Retryable(result.Err)),
			logging.Error(result.Err),
			logging.String(logging.FieldErrorHint, hintFor(result.Err)),
			logging.String(logging.FieldImpact, "dataset skipped"),
		)
	} else {
		summary := result.Table.Summarize()
		logger.Info("dataset decoded",
			logging.String("layout", summary.Layout.String()),
			logging.Samples(summary.Samples),
			logging.WavelengthSpan(summary.WavelengthMin, summary.WavelengthMax),
			logging.Duration("duration", result.Duration),
		)
	}
	r.record(ctx, logger, result)
	return result
}

func (r *Runner) execute(ctx context.Context, logger *slog.Logger, result *Result) error {
	if r.fetcher == nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "run", "no fetcher configured", nil)
	}
	record, err := r.fetcher.Fetch(ctx, result.Job.DatasetID, result.Job.Tier)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	result.URL = record.URL
	logger.Debug("record fetched", logging.String("url", record.URL), logging.Int("lines", len(record.Lines())))

	table, err := r.decode(record.Lines())
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	result.Table = table

	if r.exporter != nil {
		path, err := r.exporter.Write(ctx, result.Job.DatasetID, table, r.format)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		result.Path = path
	}
	return nil
}

func (r *Runner) decode(lines []string) (spectrum.SampleTable, error) {
	if !r.strict {
		return spectrum.Decode(lines)
	}
	layout, err := spectrum.ClassifyStrict(lines)
	if err != nil {
		return spectrum.SampleTable{}, err
	}
	return spectrum.DecodeAs(lines, layout)
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, result Result) {
	if r.recorder == nil {
		return
	}
	entry := history.Entry{
		DatasetID: result.Job.DatasetID,
		Tier:      result.Job.Tier,
		URL:       result.URL,
		RequestID: result.RequestID,
		Outcome:   history.OutcomeDecoded,
		Duration:  result.Duration,
	}
	if result.Err != nil {
		entry.Outcome = history.OutcomeFailed
		entry.ErrorKind = services.Kind(result.Err)
		entry.ErrorMessage = result.Err.Error()
	} else {
		entry.Layout = result.Table.Layout.String()
		entry.Samples = result.Table.Len()
	}
	// The ledger write must survive a cancelled job context.
	if _, err := r.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(logger, "history write failed", "pipeline.history_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.data_dir permissions"),
			logging.String(logging.FieldImpact, "outcome missing from history"),
		)
	}
}

// RunBatch runs jobs with bounded concurrency and returns results in job
// order. It waits for every job, even after failures.
func (r *Runner) RunBatch(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	var group errgroup.Group
	group.SetLimit(r.parallelism)
	for i, job := range jobs {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Job: job, Err: fmt.Errorf("skipped: %w", err)}
				return nil
			}
			results[i] = r.Run(ctx, job)
			return nil
		})
	}
	_ = group.Wait()

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}
	r.logger.Info("batch complete",
		logging.Int("jobs", len(jobs)),
		logging.Int("decoded", len(jobs)-failed),
		logging.Int("failed", failed),
	)
	return results
}

// Errors joins the failures in results, or returns nil when every job
// succeeded.
func Errors(results []Result) error {
	var errs []error
	for _, result := range results {
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", result.Job.DatasetID, result.Err))
		}
	}
	return errors.Join(errs...)
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrTransport):
		return "check network access and archive.base_url, then retry"
	case errors.Is(err, services.ErrDecompression):
		return "archive returned a non-gzip payload; verify the dataset tier"
	case errors.Is(err, services.ErrMalformed):
		return "record layout not recognized; inspect it with specfetch decode"
	case errors.Is(err, services.ErrValidation):
		return "check the dataset identifier"
	default:
		return "check logs for details"
	}
}
