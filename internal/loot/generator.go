// Package loot implements the loot-spawn-count generator described in §4.2:
// a Bernoulli-style spawn rate bounded by the number of looters currently
// missing loot.
package loot

import (
	"math"
	"time"
)

// Source yields uniform values. The default source is the constant 1.0,
// which makes Generate deterministic — useful for golden-table tests.
// Callers MUST inject their own *rand.Rand-backed Source for production use;
// this package never reaches for a process-global random source (§5).
type Source func() float64

// DefaultSource is the generator's default Source: always 1.0.
func DefaultSource() float64 { return 1.0 }

// Generator produces spawn counts for a single map's Loot. One Generator is
// owned per session/map — it is not safe for concurrent use, matching the
// single-threaded strand that drives GameSession.Tick.
type Generator struct {
	baseInterval time.Duration
	probability  float64
	source       Source

	timeWithoutLoot time.Duration
}

// New creates a Generator. baseInterval must be > 0. probability is the
// chance of at least one spawn occurring during baseInterval. A nil source
// defaults to DefaultSource.
func New(baseInterval time.Duration, probability float64, source Source) *Generator {
	if source == nil {
		source = DefaultSource
	}
	return &Generator{
		baseInterval: baseInterval,
		probability:  probability,
		source:       source,
	}
}

// Generate returns the number of loot items that should appear after
// timeDelta has elapsed, given lootCount items already on the map and
// looterCount active dogs. The result never exceeds the number of looters
// not currently carrying an available item, i.e. max(0, looterCount-lootCount).
//
// The accumulator (time since the last spawn decision) only resets once a
// non-zero count is produced, matching the "time without loot" semantics
// of the component this is grounded on.
func (g *Generator) Generate(timeDelta time.Duration, lootCount, looterCount uint) uint {
	g.timeWithoutLoot += timeDelta

	shortage := int(looterCount) - int(lootCount)
	if shortage <= 0 {
		return 0
	}

	ratio := float64(g.timeWithoutLoot) / float64(g.baseInterval)
	p := 1 - pow1MinusP(g.probability, ratio)

	u := g.source()
	if u <= 0 {
		u = 1e-9
	}

	n := int(float64(shortage) * p / u)
	if n > shortage {
		n = shortage
	}
	if n < 0 {
		n = 0
	}

	if n > 0 {
		g.timeWithoutLoot = 0
	}

	return uint(n)
}

// pow1MinusP computes (1-p)^ratio, clamping p to [0,1] defensively.
func pow1MinusP(p, ratio float64) float64 {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	base := 1 - p
	if base <= 0 {
		return 0
	}
	return math.Pow(base, ratio)
}
