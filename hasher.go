package matchgrid

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/matchgrid/binner"
	"github.com/hupe1980/matchgrid/geom"
	"github.com/hupe1980/matchgrid/internal/hypercube"
)

// NumHashTables is the number of offset tables a HitHasher keeps: one per
// combination of "shift by half a bin or not" across the six axes.
const NumHashTables = hypercube.NumCorners

type hashTable struct {
	binner *binner.SixDBinner
	hash   *HitHash
}

// HitHasher indexes hits into NumHashTables grids, each shifted by half a
// bin width along a different subset of axes. Two hits closer than half a
// bin width along every axis land in the same bin of at least one table, so
// "same bin in some table" is a cheap proximity test for match enumeration.
// Hits close to each other may share bins in several tables.
//
// Configure with the setters (or Configure), then call Initialize once.
// HitHasher is not safe for concurrent use.
type HitHasher struct {
	grid
	numConstraints int
	tables         []hashTable

	opts options
}

// NewHitHasher creates an uninitialized HitHasher.
func NewHitHasher(optFns ...Option) *HitHasher {
	o := applyOptions(optFns)
	return &HitHasher{
		grid: grid{component: "HitHasher"},
		opts: o,
	}
}

// SetNumConstraints sets how many geometric constraints a match requires.
func (h *HitHasher) SetNumConstraints(n int) {
	mustBeConfigurable(h.component, h.initialized)
	h.numConstraints = n
}

// NumConstraints returns the number of geometric constraints per match.
func (h *HitHasher) NumConstraints() int {
	return h.numConstraints
}

// Configure applies every field of cfg through the setters.
func (h *HitHasher) Configure(cfg GridConfig) {
	h.configure(cfg)
	h.SetNumConstraints(cfg.NumConstraints)
}

// Initialize builds the offset tables. It may only be called once.
func (h *HitHasher) Initialize() error {
	if err := h.begin(); err != nil {
		return err
	}
	if h.numConstraints < 1 {
		return fmt.Errorf("%w: a match needs at least one geometric constraint", ErrInvalidConfig)
	}

	widths := h.binWidths()
	tables := make([]hashTable, 0, NumHashTables)
	for c := range hypercube.All() {
		lower := h.box.Lower
		for i := range 3 {
			if c.Has(i) {
				lower[i] += widths[i] / 2
			}
		}
		offsets := [3]bool{c.Has(geom.AxisPhi), c.Has(geom.AxisPsi), c.Has(geom.AxisTheta)}
		b, err := binner.New(geom.NewBoundingBox(lower, h.box.Upper), offsets, widths)
		if err != nil {
			return fmt.Errorf("%w: table %d: %w", ErrInvalidConfig, c.Index(), err)
		}
		tables = append(tables, hashTable{binner: b, hash: NewHitHash(h.numConstraints)})
	}

	h.tables = tables
	h.initialized = true
	h.opts.logger.Debug("hit hasher initialized",
		"tables", len(tables),
		"box", h.box.String(),
		"bin_widths", widths,
		"constraints", h.numConstraints,
	)
	return nil
}

// NumTables returns NumHashTables.
func (h *HitHasher) NumTables() int {
	return NumHashTables
}

// Table returns hash table which (0-based).
func (h *HitHasher) Table(which int) *HitHash {
	mustBeInitialized(h.component, h.initialized)
	return h.tables[which].hash
}

// Binner returns the grid of table which (0-based).
func (h *HitHasher) Binner(which int) *binner.SixDBinner {
	mustBeInitialized(h.component, h.initialized)
	return h.tables[which].binner
}

// ClearTable drops every hit from table which (0-based).
func (h *HitHasher) ClearTable(which int) {
	mustBeInitialized(h.component, h.initialized)
	h.tables[which].hash.Clear()
}

func (h *HitHasher) check(id ConstraintID, hit *Hit) error {
	if err := checkConstraint(id, h.numConstraints); err != nil {
		return err
	}
	return checkHit(h.box, hit)
}

// insertInto adds hit to one table if the table's grid contains it.
func (h *HitHasher) insertInto(t hashTable, id ConstraintID, hit *Hit) {
	if !t.binner.Contains(hit.Coord) {
		return
	}
	t.hash.Insert(t.binner.Index(hit.Coord), id, hit)
}

// InsertHit adds hit to every table whose grid contains it. A hit outside
// the overall bounding box is rejected with an *ErrOutOfBounds; a hit that
// only misses a shifted table is silently left out of that table.
func (h *HitHasher) InsertHit(id ConstraintID, hit *Hit) error {
	mustBeInitialized(h.component, h.initialized)
	if err := h.check(id, hit); err != nil {
		return err
	}
	for _, t := range h.tables {
		h.insertInto(t, id, hit)
	}
	return nil
}

// InsertHitInto adds hit to table which (0-based) only.
func (h *HitHasher) InsertHitInto(which int, id ConstraintID, hit *Hit) error {
	mustBeInitialized(h.component, h.initialized)
	if err := h.check(id, hit); err != nil {
		h.opts.logger.Warn("hit rejected", "table", which, "error", err)
		return err
	}
	h.insertInto(h.tables[which], id, hit)
	return nil
}

func (h *HitHasher) checkAll(id ConstraintID, hits []*Hit) error {
	for _, hit := range hits {
		if err := h.check(id, hit); err != nil {
			return err
		}
	}
	return nil
}

// InsertHits adds every hit of constraint id. Hits are validated up front:
// if any is rejected, none of them is inserted.
func (h *HitHasher) InsertHits(id ConstraintID, hits []*Hit) error {
	mustBeInitialized(h.component, h.initialized)
	start := time.Now()
	err := h.checkAll(id, hits)
	if err == nil {
		for _, t := range h.tables {
			for _, hit := range hits {
				h.insertInto(t, id, hit)
			}
		}
	}
	h.opts.metricsCollector.RecordInsert("hasher", len(hits), time.Since(start), err)
	h.opts.logger.LogInsert(context.Background(), id, len(hits), err)
	return err
}

// InsertHitsParallel is InsertHits with the tables filled concurrently.
// Every table is owned by a single goroutine, so no locking is needed.
// On cancellation some tables may already hold the hits; callers that need
// consistency should ClearTable every table after an error.
func (h *HitHasher) InsertHitsParallel(ctx context.Context, id ConstraintID, hits []*Hit) error {
	mustBeInitialized(h.component, h.initialized)
	start := time.Now()
	err := h.checkAll(id, hits)
	if err == nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for _, t := range h.tables {
			g.Go(func() error {
				for i, hit := range hits {
					if i%4096 == 0 {
						if err := gctx.Err(); err != nil {
							return err
						}
					}
					h.insertInto(t, id, hit)
				}
				return nil
			})
		}
		err = g.Wait()
	}
	h.opts.metricsCollector.RecordInsert("hasher", len(hits), time.Since(start), err)
	h.opts.logger.LogInsert(ctx, id, len(hits), err)
	return err
}
