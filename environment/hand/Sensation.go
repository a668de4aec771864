package hand

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// Sensation bundles the sensory signals of the hand at a single step.
// Touch is nil when touch sensing is disabled and Vision is nil when
// vision is disabled.
type Sensation struct {
	// Proprioception holds the joint positions followed by the joint
	// velocities
	Proprioception *mat.VecDense
	Touch          *mat.VecDense

	// Vision is an (H, W, 3) RGB image with values in [0, 1]
	Vision *tensor.Dense

	Goal *mat.VecDense
}

// Len returns the number of elements in the flattened Sensation
func (s Sensation) Len() int {
	n := s.Proprioception.Len() + s.Goal.Len()
	if s.Touch != nil {
		n += s.Touch.Len()
	}
	if s.Vision != nil {
		n += s.Vision.Shape().TotalSize()
	}
	return n
}

// Flatten concatenates proprioception, touch, vision and goal into a
// single vector
func (s Sensation) Flatten() *mat.VecDense {
	flat := make([]float64, 0, s.Len())
	flat = append(flat, s.Proprioception.RawVector().Data...)
	if s.Touch != nil {
		flat = append(flat, s.Touch.RawVector().Data...)
	}
	if s.Vision != nil {
		flat = append(flat, s.Vision.Data().([]float64)...)
	}
	flat = append(flat, s.Goal.RawVector().Data...)

	return mat.NewVecDense(len(flat), flat)
}

// Observation is the observation bundle produced by a Hand at each
// step: the Sensation given to the agent together with the desired and
// achieved goals used to determine success.
type Observation struct {
	Sensation
	DesiredGoal  *mat.VecDense
	AchievedGoal *mat.VecDense
}

// imageToTensor converts an image into an (H, W, 3) tensor of RGB
// values in [0, 1]
func imageToTensor(img image.Image) (*tensor.Dense, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("imageToTensor: empty image")
	}

	backing := make([]float64, 0, w*h*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			backing = append(backing, float64(r)/0xffff, float64(g)/0xffff,
				float64(b)/0xffff)
		}
	}

	return tensor.New(tensor.WithShape(h, w, 3), tensor.WithBacking(backing)),
		nil
}
