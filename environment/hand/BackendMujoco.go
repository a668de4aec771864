//go:build mujoco
// +build mujoco

package hand

import "github.com/samuelfneumann/dexterous/environment/hand/internal/mujocosim"

// MujocoBackend names the MuJoCo simulator, which loads the hand model
// from Config.ModelPath. Its default sites are those of the Shadow
// Dexterous Hand model.
const MujocoBackend = "mujoco"

func init() {
	registerBackend(MujocoBackend, func(c Config) (Simulator, error) {
		sim, err := mujocosim.New(c.ModelPath, c.FrameSkip, c.TouchSensors)
		if err != nil {
			return nil, err
		}
		return sim, nil
	}, Sites{ThumbTip: "robot0:S_thtip", ThumbBase: "robot0:thbase"})
}
