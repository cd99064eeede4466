package validation

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cmmc/validator/pkg/records"
	"cmmc/validator/pkg/resolver"
	"cmmc/validator/pkg/retry"
	"cmmc/validator/pkg/telemetry/logging"
	"cmmc/validator/pkg/vocabulary"
)

// Observer receives pipeline events.
type Observer interface {
	ObserveVerdict(column string, kind Kind)
	ObserveRetry(service string, attempt int)
	ObserveRun(rows int, duration time.Duration, err error)
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	Identifier resolver.Resolver
	Structure  resolver.Resolver

	// IdentifierPolicy defaults to retry.DefaultPolicy() when MaxAttempts
	// is zero. A zero StructurePolicy makes a single attempt.
	IdentifierPolicy retry.Policy
	StructurePolicy  retry.Policy

	// Columns defaults to DefaultColumns().
	Columns []Column

	// Concurrency bounds the number of cells validated at once. Zero means 16.
	Concurrency int

	// CacheSize bounds the per-run memo of settled lookups. Zero disables it.
	CacheSize int

	// StructureCacheSize overrides CacheSize for the structure column when
	// positive. A negative value disables that memo alone.
	StructureCacheSize int

	Observer Observer
	Logger   *slog.Logger

	// Progress is called after each validated cell.
	Progress func(done, total int)
}

// Pipeline validates record sets.
type Pipeline struct {
	config PipelineConfig
	logger *slog.Logger
}

// NewPipeline checks cfg and creates a Pipeline.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Columns == nil {
		cfg.Columns = DefaultColumns()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 16
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.IdentifierPolicy.MaxAttempts == 0 {
		def := retry.DefaultPolicy()
		cfg.IdentifierPolicy.MaxAttempts = def.MaxAttempts
		if cfg.IdentifierPolicy.Delay == 0 {
			cfg.IdentifierPolicy.Delay = def.Delay
		}
	}

	outputs := make(map[string]bool, len(cfg.Columns))
	for _, col := range cfg.Columns {
		if outputs[col.Output] {
			return nil, fmt.Errorf("duplicate output column %q", col.Output)
		}
		outputs[col.Output] = true

		switch col.Check {
		case CheckIdentifier:
			if cfg.Identifier == nil {
				return nil, fmt.Errorf("column %q needs an identifier resolver", col.Source)
			}
		case CheckStructure:
			if cfg.Structure == nil {
				return nil, fmt.Errorf("column %q needs a structure resolver", col.Source)
			}
		}
	}

	return &Pipeline{config: cfg, logger: cfg.Logger}, nil
}

// Columns returns the validated columns.
func (p *Pipeline) Columns() []Column {
	return append([]Column(nil), p.config.Columns...)
}

// RequiredColumns returns the vocabulary columns followed by any validated
// source column the vocabulary does not list.
func (p *Pipeline) RequiredColumns(vocab *vocabulary.Set) []string {
	required := vocab.RequiredColumns()
	seen := make(map[string]bool, len(required))
	for _, col := range required {
		seen[col] = true
	}
	for _, col := range p.config.Columns {
		if !seen[col.Source] {
			seen[col.Source] = true
			required = append(required, col.Source)
		}
	}
	return required
}

type cellValidator func(ctx context.Context, raw *string) Verdict

// Run validates every record of set against vocab.
//
// A schema failure returns a *MissingColumnsError before any lookup is made.
// Cancelling ctx stops scheduling new cells and Run returns ctx.Err().
func (p *Pipeline) Run(ctx context.Context, vocab *vocabulary.Set, set *records.RecordSet) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		records:   set,
		columns:   p.Columns(),
	}
	ctx = logging.WithRunID(ctx, result.RunID)
	logger := p.logger.With(logging.ContextFields(ctx)...)

	if err := CheckSchema(set.Columns(), p.RequiredColumns(vocab)); err != nil {
		logger.Warn("table rejected", "error", err)
		p.observeRun(set.Len(), time.Since(result.StartedAt), err)
		return nil, err
	}

	logger.Info("validation started", "rows", set.Len(), "columns", len(result.columns))

	validators := p.validators(vocab)

	result.verdicts = make([][]Verdict, set.Len())
	for i := range result.verdicts {
		result.verdicts[i] = make([]Verdict, len(result.columns))
	}

	total := set.Len() * len(result.columns)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)

schedule:
	for _, rec := range set.Records() {
		for j, col := range result.columns {
			if gctx.Err() != nil {
				break schedule
			}
			validate := validators[j]
			g.Go(func() error {
				cellCtx := logging.WithColumn(logging.WithRow(gctx, rec.Index()), col.Source)
				verdict := validate(cellCtx, rec.Value(col.Source))
				result.verdicts[rec.Index()][j] = verdict
				if p.config.Observer != nil {
					p.config.Observer.ObserveVerdict(col.Output, verdict.Kind)
				}
				n := done.Add(1)
				if p.config.Progress != nil {
					p.config.Progress(int(n), total)
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		logger.Warn("validation cancelled", "completed", done.Load(), "total", total)
		p.observeRun(set.Len(), time.Since(result.StartedAt), err)
		return nil, err
	}

	result.FinishedAt = time.Now()
	summary := result.Summary()
	logger.Info("validation finished",
		"rows", summary.Rows,
		"failed_rows", summary.FailedRows,
		"duration", result.FinishedAt.Sub(result.StartedAt),
	)
	p.observeRun(set.Len(), result.FinishedAt.Sub(result.StartedAt), nil)
	return result, nil
}

func (p *Pipeline) validators(vocab *vocabulary.Set) []cellValidator {
	identifierPolicy := p.withRetryLogging(p.config.IdentifierPolicy, resolver.ServiceIdentifier)
	structurePolicy := p.withRetryLogging(p.config.StructurePolicy, resolver.ServiceStructure)

	out := make([]cellValidator, len(p.config.Columns))
	for j, col := range p.config.Columns {
		switch col.Check {
		case CheckIdentifier:
			out[j] = NewIdentifierValidator(p.config.Identifier, identifierPolicy, p.config.CacheSize).Validate
		case CheckStructure:
			size := p.config.CacheSize
			if p.config.StructureCacheSize != 0 {
				size = max(p.config.StructureCacheSize, 0)
			}
			out[j] = NewStructureValidator(p.config.Structure, structurePolicy, size).Validate
		default:
			field := FieldValidator{
				Column:     col.Source,
				Allowed:    vocab.Allowed(col.Source),
				MultiValue: col.MultiValue,
			}
			out[j] = func(_ context.Context, raw *string) Verdict {
				return field.Validate(raw)
			}
		}
	}
	return out
}

// withRetryLogging logs each retry with the run, request, row and column
// carried by the cell context.
func (p *Pipeline) withRetryLogging(policy retry.Policy, service string) retry.Policy {
	next := policy.OnRetry
	policy.OnRetry = func(ctx context.Context, attempt int, err error, wait time.Duration) {
		p.logger.With(logging.ContextFields(ctx)...).DebugContext(ctx, "retrying lookup",
			"service", service,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
		if p.config.Observer != nil {
			p.config.Observer.ObserveRetry(service, attempt)
		}
		if next != nil {
			next(ctx, attempt, err, wait)
		}
	}
	return policy
}

func (p *Pipeline) observeRun(rows int, d time.Duration, err error) {
	if p.config.Observer != nil {
		p.config.Observer.ObserveRun(rows, d, err)
	}
}
