package matchgrid

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/matchgrid/binner"
)

// TooManyMatches is what CountMatches returns once the estimate reaches a
// size no caller could enumerate.
const TooManyMatches = 2_000_000_000

// logTooManyMatches is slightly below ln(TooManyMatches). A bin whose log
// product exceeds it saturates the count before the product is formed.
const logTooManyMatches = 21.4

// MatchCounter estimates the number of matches by counting hits per
// constraint in each bin of a single unshifted grid. The estimate is the sum
// over bins of the product of the per-constraint counts, so matches spread
// over neighboring bins are missed: it is a lower bound, and it is meant to
// decide whether full enumeration is affordable.
type MatchCounter struct {
	grid
	numConstraints int
	binner         *binner.SixDBinner
	counts         map[uint64][]uint32

	opts options
}

// NewMatchCounter creates an uninitialized MatchCounter.
func NewMatchCounter(optFns ...Option) *MatchCounter {
	o := applyOptions(optFns)
	return &MatchCounter{
		grid:   grid{component: "MatchCounter"},
		counts: make(map[uint64][]uint32),
		opts:   o,
	}
}

// SetNumConstraints sets how many geometric constraints a match requires.
// It may only be called once.
func (mc *MatchCounter) SetNumConstraints(n int) {
	mustBeConfigurable(mc.component, mc.initialized)
	if mc.numConstraints != 0 {
		panic("matchgrid: MatchCounter constraint count set twice")
	}
	mc.numConstraints = n
}

// NumConstraints returns the number of geometric constraints per match.
func (mc *MatchCounter) NumConstraints() int {
	return mc.numConstraints
}

// Configure applies every field of cfg through the setters.
func (mc *MatchCounter) Configure(cfg GridConfig) {
	mc.configure(cfg)
	mc.SetNumConstraints(cfg.NumConstraints)
}

// Initialize builds the grid. It may only be called once.
func (mc *MatchCounter) Initialize() error {
	if err := mc.begin(); err != nil {
		return err
	}
	if mc.numConstraints < 1 {
		return fmt.Errorf("%w: a match needs at least one geometric constraint", ErrInvalidConfig)
	}
	b, err := binner.New(mc.box, [3]bool{}, mc.binWidths())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	mc.binner = b
	mc.initialized = true
	mc.opts.logger.Debug("match counter initialized",
		"dims", b.Dims(),
		"constraints", mc.numConstraints,
	)
	return nil
}

// AddHits counts hits for constraint id. Hits are validated up front: if
// any is rejected, none is counted.
func (mc *MatchCounter) AddHits(id ConstraintID, hits []*Hit) error {
	mustBeInitialized(mc.component, mc.initialized)
	start := time.Now()
	err := mc.addHits(id, hits)
	mc.opts.metricsCollector.RecordInsert("counter", len(hits), time.Since(start), err)
	mc.opts.logger.LogInsert(context.Background(), id, len(hits), err)
	return err
}

func (mc *MatchCounter) addHits(id ConstraintID, hits []*Hit) error {
	if err := checkConstraint(id, mc.numConstraints); err != nil {
		return err
	}
	for _, h := range hits {
		if err := checkHit(mc.box, h); err != nil {
			return err
		}
	}
	for _, h := range hits {
		bin := mc.binner.Index(h.Coord)
		c, ok := mc.counts[bin]
		if !ok {
			c = make([]uint32, mc.numConstraints)
			mc.counts[bin] = c
		}
		c[id-1]++
	}
	return nil
}

// Len returns the number of occupied bins.
func (mc *MatchCounter) Len() int {
	return len(mc.counts)
}

// CountMatches returns the estimated number of matches, or TooManyMatches
// when the estimate reaches it. The result does not depend on the order in
// which bins are visited.
func (mc *MatchCounter) CountMatches() uint64 {
	mustBeInitialized(mc.component, mc.initialized)
	start := time.Now()

	total := mc.count()

	mc.opts.metricsCollector.RecordMatchCount(total, total == TooManyMatches, time.Since(start))
	mc.opts.logger.LogMatchCount(context.Background(), total, len(mc.counts))
	return total
}

func (mc *MatchCounter) count() uint64 {
	var total uint64
	for _, counts := range mc.counts {
		logProduct := 0.0
		empty := false
		for _, c := range counts {
			if c == 0 {
				empty = true
				break
			}
			logProduct += math.Log(float64(c))
		}
		if empty {
			continue
		}
		if logProduct > logTooManyMatches {
			return TooManyMatches
		}

		product := uint64(1)
		for _, c := range counts {
			product *= uint64(c)
		}
		next := total + product
		if next < total || next >= TooManyMatches {
			return TooManyMatches
		}
		total = next
	}
	return total
}
