// Package engine runs the split pipeline.
// It wires boundary location, partitioning, reference analysis, the
// rewriter and the emitter into a single pass per document, and runs
// batches of independent plans with an upfront destination check.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chiselkit/chisel/internal/emit"
	"github.com/chiselkit/chisel/internal/locator"
	"github.com/chiselkit/chisel/internal/partition"
	"github.com/chiselkit/chisel/internal/planfile"
	"github.com/chiselkit/chisel/internal/refs"
	"github.com/chiselkit/chisel/internal/rewrite"
	"github.com/chiselkit/chisel/pkg/core"
)

// Engine orchestrates split runs.
type Engine struct {
	logger   *slog.Logger
	dryRun   bool
	parallel int
	shim     *bool
}

// Config holds engine configuration.
type Config struct {
	// DryRun computes and validates every plan without writing files.
	DryRun bool
	// Parallel caps concurrent documents in a batch. Values below 1
	// mean sequential.
	Parallel int
	// Shim overrides each plan's shim flag when set.
	Shim *bool
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		logger:   logger,
		dryRun:   cfg.DryRun,
		parallel: cfg.Parallel,
		shim:     cfg.Shim,
	}
}

// Split runs the full pipeline for one plan. The document is read,
// partitioned, rewritten and validated before anything is written, so a
// failing plan leaves the filesystem untouched.
func (e *Engine) Split(ctx context.Context, plan *planfile.Plan) (*core.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID, "source", plan.Source)
	logger.Debug("loading source document")

	doc, err := core.ReadDocument(plan.SourcePath())
	if err != nil {
		return nil, err
	}

	result, err := e.plan(doc, plan, logger)
	if err != nil {
		return nil, err
	}

	written, err := emit.Emit(result.Files, emit.Options{DryRun: e.dryRun, Logger: logger})
	if err != nil {
		return nil, err
	}

	report := &core.Report{
		RunID:           runID,
		Source:          doc.Path(),
		SourceHash:      doc.Hash(),
		Files:           written,
		Promotions:      result.Promotions,
		ManualFollowUps: result.ManualFollowUps,
		DryRun:          e.dryRun,
	}
	logger.Info("split complete",
		"files", len(written), "promotions", len(result.Promotions), "dry_run", e.dryRun)
	return report, nil
}

// plan runs every stage up to, but not including, emission.
func (e *Engine) plan(doc *core.Document, plan *planfile.Plan, logger *slog.Logger) (*rewrite.Result, error) {
	a, err := e.analyze(doc, plan, logger)
	if err != nil {
		return nil, err
	}

	shim := core.ShimSpec{Enabled: plan.Shim}
	if e.shim != nil {
		shim.Enabled = *e.shim
	}

	return rewrite.Rewrite(doc, a.segments, a.idx, plan.CoreRenames(), shim)
}

// analysis is the resolved view of one plan against its document.
type analysis struct {
	markers  []core.Marker
	lines    map[string]int
	segments []core.Segment
	idx      *refs.Index
}

// analyze locates boundaries, partitions the document and derives the
// cross-segment reference index. Shared by Split and the read-only
// Inspect entry point.
func (e *Engine) analyze(doc *core.Document, plan *planfile.Plan, logger *slog.Logger) (*analysis, error) {
	markers, err := plan.CoreMarkers()
	if err != nil {
		return nil, err
	}

	lines, err := locator.Locate(doc, markers)
	if err != nil {
		return nil, err
	}
	logger.Debug("boundaries located", "markers", len(lines))

	specs, err := buildSpecs(plan, markers, lines)
	if err != nil {
		return nil, err
	}

	segments, err := partition.Partition(doc, specs)
	if err != nil {
		return nil, err
	}
	logger.Debug("document partitioned", "segments", len(segments))

	idx, err := refs.Build(doc, segments)
	if err != nil {
		return nil, err
	}
	if ok, cycle := idx.Graph.HasCycle(); ok {
		logger.Warn("segment dependency cycle", "cycle", cycle)
	}
	return &analysis{markers: markers, lines: lines, segments: segments, idx: idx}, nil
}

func buildSpecs(plan *planfile.Plan, markers []core.Marker, lines map[string]int) ([]partition.Spec, error) {
	roleOf := make(map[string]core.MarkerRole, len(markers))
	for _, m := range markers {
		roleOf[m.ID] = m.Role
	}

	specs := make([]partition.Spec, 0, len(plan.Segments))
	for _, s := range plan.Segments {
		start, ok := lines[s.Start]
		if !ok {
			return nil, fmt.Errorf("segment %q: marker %q resolved to no line", s.Name, s.Start)
		}
		end := -1
		if s.End != "" {
			resolved, ok := lines[s.End]
			if !ok {
				return nil, fmt.Errorf("segment %q: marker %q resolved to no line", s.Name, s.End)
			}
			end = resolved
			// A closing marker's line stays inside the segment it closes;
			// only a start marker used as an End is exclusive.
			if roleOf[s.End] == core.RoleSegmentEnd {
				end = resolved + 1
			}
		}
		policy, err := core.ParseVisibility(s.Visibility)
		if err != nil {
			return nil, fmt.Errorf("segment %q: %w", s.Name, err)
		}
		trim := true
		if s.Trim != nil {
			trim = *s.Trim
		}
		specs = append(specs, partition.Spec{
			Name:      s.Name,
			Start:     start,
			End:       end,
			Dest:      plan.DestPath(s.Dest),
			Policy:    policy,
			Exports:   plan.Exports[s.Name],
			TrimBlank: trim,
		})
	}
	return specs, nil
}

// Inspection is the read-only view of a plan: resolved boundary lines
// and the segment ranges they imply.
type Inspection struct {
	Doc      *core.Document
	Markers  []core.Marker
	Lines    map[string]int
	Segments []core.Segment
	Edges    []core.ReferenceEdge
}

// Inspect resolves a plan against its source without rewriting or
// writing anything.
func (e *Engine) Inspect(ctx context.Context, plan *planfile.Plan) (*Inspection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := core.ReadDocument(plan.SourcePath())
	if err != nil {
		return nil, err
	}

	a, err := e.analyze(doc, plan, e.logger)
	if err != nil {
		return nil, err
	}

	return &Inspection{
		Doc:      doc,
		Markers:  a.markers,
		Lines:    a.lines,
		Segments: a.segments,
		Edges:    a.idx.Edges,
	}, nil
}

// BatchResult pairs one plan with its outcome.
type BatchResult struct {
	Plan   *planfile.Plan
	Report *core.Report
	Err    error
}

// SplitBatch runs a set of independent plans. Destinations are checked
// for collisions across the whole batch before any document is written;
// after that each plan succeeds or fails on its own. The returned error
// joins the per-plan failures.
func (e *Engine) SplitBatch(ctx context.Context, plans []*planfile.Plan) ([]BatchResult, error) {
	if err := checkCollisions(plans); err != nil {
		return nil, err
	}

	results := make([]BatchResult, len(plans))
	workers := e.parallel
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	var mu sync.Mutex

	for i, plan := range plans {
		g.Go(func() error {
			report, err := e.Split(ctx, plan)
			mu.Lock()
			results[i] = BatchResult{Plan: plan, Report: report, Err: err}
			mu.Unlock()
			// Failures are collected, not fatal to siblings; each
			// document is an independent all-or-nothing unit.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Plan.Source, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

// checkCollisions fails when two documents in the batch target the same
// destination, or one document's destination is another's source.
func checkCollisions(plans []*planfile.Plan) error {
	claims := make(map[string][]string)
	sources := make(map[string]string)
	for _, plan := range plans {
		source := normalize(plan.SourcePath())
		sources[source] = source
		seen := make(map[string]bool)
		for _, seg := range plan.Segments {
			dest := normalize(plan.DestPath(seg.Dest))
			if dest == source || seen[dest] {
				// Writing back into the source (or sharing a dest
				// between segments) is legitimate within one plan.
				continue
			}
			seen[dest] = true
			claims[dest] = append(claims[dest], source)
		}
	}

	paths := make([]string, 0, len(claims))
	for p := range claims {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		owners := claims[p]
		if src, ok := sources[p]; ok {
			owners = append(owners, src)
		}
		if len(owners) > 1 {
			sort.Strings(owners)
			return &core.DestinationCollisionError{Path: p, Sources: owners}
		}
	}
	return nil
}

func normalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
