// Package environment outlines the interfaces and structs needed to
// implement concrete environments, along with the Starters and Enders
// shared between them and a Registry for constructing environments by
// name.
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/dexterous/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes should end. End returns whether the
// argument timestep is the last in its episode, and if so, modifies the
// timestep so that its StepType is timestep.Last and its EndType is set.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Environment implements a simulated environment, which includes a
// task to complete. Environments start ready to use: constructors
// return the first timestep of the first episode.
type Environment interface {
	// Reset resets the environment between episodes
	Reset() (timestep.TimeStep, error)

	// Step takes one environmental step and returns whether the
	// episode is done (terminated or truncated)
	Step(action *mat.VecDense) (timestep.TimeStep, bool, error)

	// CurrentTimeStep returns the most recent timestep
	CurrentTimeStep() timestep.TimeStep

	RewardSpec() Spec
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec

	// Close releases any resources held by the environment
	Close() error
}
