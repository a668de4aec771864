// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes why an episode ended. An episode which reaches a
// terminal state is terminated, while an episode cut off by a time
// limit is truncated.
type EndType int

const (
	Unset EndType = iota
	TerminalStateReached
	Timeout
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	default:
		return "Unset"
	}
}

// Info stores auxiliary scalar diagnostics attached to a TimeStep, such
// as whether an episode ended successfully.
type Info map[string]float64

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType    StepType
	Reward      float64
	Discount    float64
	Observation mat.Vector
	Number      int

	// Info is nil until an environment attaches diagnostics to the step
	Info Info

	endType EndType
}

// New constructs a new TimeStep
func New(t StepType, r, d float64, o mat.Vector, n int) TimeStep {
	return TimeStep{
		StepType:    t,
		Reward:      r,
		Discount:    d,
		Observation: o,
		Number:      n,
	}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd records why the episode ended. SetEnd does not alter the
// StepType; Enders set both.
func (t *TimeStep) SetEnd(e EndType) {
	t.endType = e
}

// EndType returns why the episode ended, or Unset if the step is not
// the last in its episode.
func (t *TimeStep) EndType() EndType {
	return t.endType
}

// Terminated returns whether the TimeStep ended the episode by
// reaching a terminal state
func (t *TimeStep) Terminated() bool {
	return t.Last() && t.endType == TerminalStateReached
}

// Truncated returns whether the TimeStep ended the episode by hitting
// a time limit
func (t *TimeStep) Truncated() bool {
	return t.Last() && t.endType == Timeout
}

// SetInfo sets a diagnostic value on the TimeStep, allocating the Info
// map if needed
func (t *TimeStep) SetInfo(key string, value float64) {
	if t.Info == nil {
		t.Info = make(Info)
	}
	t.Info[key] = value
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v  |  End: %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number,
		t.endType)
}
