package hand

import "github.com/samuelfneumann/dexterous/environment/hand/internal/planar"

// PlanarBackend names the pure Go, Box2D-based planar hand simulator
const PlanarBackend = "planar"

func init() {
	registerBackend(PlanarBackend, func(c Config) (Simulator, error) {
		sim, err := planar.New(c.FrameSkip)
		if err != nil {
			return nil, err
		}
		return sim, nil
	}, Sites{ThumbTip: "th_tip", ThumbBase: "th_base"})
}
