package trace

import (
	"math/rand/v2"
	"sort"

	"github.com/roach88/slotbench/internal/ir"
)

// Generator draws operation sequences from a Mix.
//
// Thread-safety: Generator is immutable after construction; Sequence may be
// called from any goroutine.
type Generator struct {
	mix  Mix
	cum  []float64 // cum[i] = sum of weights of shapes 0..i
	last int       // last shape with positive weight
	seed uint64
}

// NewGenerator validates mix (without a slot range check) and returns a
// generator for it.
func NewGenerator(mix Mix, seed uint64) (*Generator, error) {
	if err := mix.Validate(-1); err != nil {
		return nil, err
	}

	g := &Generator{
		mix:  append(Mix(nil), mix...),
		cum:  make([]float64, len(mix)),
		seed: seed,
	}
	var total float64
	for i, s := range g.mix {
		total += s.Weight
		g.cum[i] = total
		if s.Weight > 0 {
			g.last = i
		}
	}
	return g, nil
}

// Sequence returns n operations for the given worker.
// The result depends only on (mix, seed, worker, n).
func (g *Generator) Sequence(worker, n int) ir.Sequence {
	if n <= 0 {
		return ir.Sequence{}
	}
	r := rand.New(rand.NewPCG(g.seed, uint64(worker)))
	total := g.cum[len(g.cum)-1]

	seq := make(ir.Sequence, n)
	for i := range seq {
		seq[i] = g.mix[g.pick(r.Float64()*total)].Operation()
	}
	return seq
}

// Sequences returns one sequence of n operations for each of workers
// workers.
func (g *Generator) Sequences(workers, n int) []ir.Sequence {
	seqs := make([]ir.Sequence, workers)
	for w := range seqs {
		seqs[w] = g.Sequence(w, n)
	}
	return seqs
}

// pick returns the first shape whose cumulative weight exceeds x.
// Zero-weight shapes are never chosen.
func (g *Generator) pick(x float64) int {
	i := sort.Search(len(g.cum), func(i int) bool { return x < g.cum[i] })
	if i > g.last {
		// Only reachable through rounding at the top of the range.
		return g.last
	}
	return i
}
