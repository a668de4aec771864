package environment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an action, an observation, a discount, or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action, observation, discount, or reward in
// an environment
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions, observations, etc.). The cardinality
// arguments describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds length %v",
			shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match upper bounds length %v",
			shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// NewUnboundedSpec returns a continuous Spec of length n with bounds
// (-∞, ∞) in each dimension
func NewUnboundedSpec(n int, t SpecType) Spec {
	low := make([]float64, n)
	high := make([]float64, n)
	for i := range high {
		low[i] = math.Inf(-1)
		high[i] = math.Inf(1)
	}

	return NewSpec(mat.NewVecDense(n, nil), t, mat.NewVecDense(n, low),
		mat.NewVecDense(n, high), Continuous)
}

// NewScalarSpec returns a continuous Spec describing a single value
// in [min, max]
func NewScalarSpec(t SpecType, min, max float64) Spec {
	return NewSpec(mat.NewVecDense(1, nil), t,
		mat.NewVecDense(1, []float64{min}), mat.NewVecDense(1, []float64{max}),
		Continuous)
}

// Len returns the number of dimensions described by the Spec
func (s Spec) Len() int {
	return s.Shape.Len()
}
