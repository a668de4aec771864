// Package random implements an agent which acts uniformly at random
// and does not learn
package random

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/samuelfneumann/dexterous/environment"
	"github.com/samuelfneumann/dexterous/timestep"
)

// Agent selects actions uniformly at random from within the bounds of
// an action specification. Agent satisfies the agent.Agent interface.
type Agent struct {
	seed uint64
	rng  *distmv.Uniform
	dims int
}

// New returns a new random Agent acting within the bounds of the
// argument action spec. All bounds must be finite.
func New(spec environment.Spec, seed uint64) (*Agent, error) {
	if spec.Type != environment.Action {
		return nil, fmt.Errorf("new: spec should be an action spec")
	}
	if spec.Cardinality != environment.Continuous {
		return nil, fmt.Errorf("new: only continuous actions are supported")
	}

	bounds := make([]r1.Interval, spec.Len())
	for i := range bounds {
		low, high := spec.LowerBound.AtVec(i), spec.UpperBound.AtVec(i)
		if math.IsInf(low, 0) || math.IsInf(high, 0) {
			return nil, fmt.Errorf("new: action dimension %v has infinite "+
				"bounds (%v, %v)", i, low, high)
		}
		bounds[i] = r1.Interval{Min: low, Max: high}
	}

	return &Agent{
		seed: seed,
		rng:  distmv.NewUniform(bounds, rand.NewSource(seed)),
		dims: len(bounds),
	}, nil
}

// SelectAction returns a uniformly random action. The timestep is
// ignored.
func (a *Agent) SelectAction(timestep.TimeStep) *mat.VecDense {
	return mat.NewVecDense(a.dims, a.rng.Rand(nil))
}

// Step is a no-op, the Agent does not learn
func (a *Agent) Step() error { return nil }

// Observe is a no-op
func (a *Agent) Observe(mat.Vector, timestep.TimeStep) error { return nil }

// ObserveFirst is a no-op
func (a *Agent) ObserveFirst(timestep.TimeStep) error { return nil }

// EndEpisode is a no-op
func (a *Agent) EndEpisode() {}
