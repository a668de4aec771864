package hand

import (
	"fmt"
	"image"
	"sort"
)

// Simulator simulates the physics of a robotic hand. Simulators are
// provided by backends, which are selected by name through the
// Backend field of a Config.
type Simulator interface {
	// Reset resets the simulation and poses the hand with joint
	// positions qpos, in the order returned by JointNames
	Reset(qpos []float64) error

	// Step applies a control vector and advances the simulation
	Step(ctrl []float64) error

	QPos() []float64
	QVel() []float64
	JointNames() []string

	// JointQPosAddrs returns the index in qpos of the first position
	// coordinate of each joint, in the order returned by JointNames
	JointQPosAddrs() []int

	// DefaultQPos returns the model's reference pose, which joints not
	// given an initial position start from
	DefaultQPos() []float64

	// UpAxis returns the index of the vertical axis in site positions
	UpAxis() int

	// Touch returns the touch sensor readings
	Touch() []float64

	// SitePos returns the (x, y, z) world position of a named site
	SitePos(name string) ([]float64, error)

	// Render renders the current state into a w x h image
	Render(w, h int) (image.Image, error)

	// ActionBounds returns the element-wise bounds of control vectors
	ActionBounds() (low, high []float64)

	// Dt returns the simulated time elapsed per call to Step
	Dt() float64

	Close() error
}

// SimulatorFactory constructs a Simulator from a Config
type SimulatorFactory func(c Config) (Simulator, error)

// Sites names the simulator sites which locate the thumb
type Sites struct {
	ThumbTip  string
	ThumbBase string
}

type backend struct {
	factory SimulatorFactory
	sites   Sites
}

// backends maps backend names to the factories which construct their
// simulators. Backends are added at init time only.
var backends = map[string]backend{}

func registerBackend(name string, f SimulatorFactory, sites Sites) {
	if _, ok := backends[name]; ok {
		panic(fmt.Sprintf("registerBackend: backend %v registered twice",
			name))
	}
	backends[name] = backend{factory: f, sites: sites}
}

// DefaultSites returns the thumb sites of the named backend's default
// hand model
func DefaultSites(name string) (Sites, error) {
	b, ok := backends[name]
	if !ok {
		return Sites{}, fmt.Errorf("defaultSites: no such backend '%v'", name)
	}
	return b.sites, nil
}

// Backends returns the sorted names of all available simulator
// backends
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSimulator constructs the simulator of the backend named in c
func NewSimulator(c Config) (Simulator, error) {
	b, ok := backends[c.Backend]
	if !ok {
		return nil, fmt.Errorf("newSimulator: no such backend '%v', "+
			"available backends are %v", c.Backend, Backends())
	}

	sim, err := b.factory(c)
	if err != nil {
		return nil, fmt.Errorf("newSimulator: %v: %v", c.Backend, err)
	}
	return sim, nil
}
