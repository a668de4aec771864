package hand

import (
	"fmt"
	"image"
	"testing"
)

const freeBackend = "free-hand"

// freeSim is a Simulator whose hand hangs from a free joint, so that
// it has more position coordinates than joints
type freeSim struct {
	qpos []float64
}

func (s *freeSim) Reset(qpos []float64) error {
	if len(qpos) != 8 {
		return fmt.Errorf("reset: invalid position dimensions \n\t"+
			"have(%v) \n\twant(8)", len(qpos))
	}
	s.qpos = append([]float64(nil), qpos...)
	return nil
}

func (s *freeSim) Step([]float64) error { return nil }
func (s *freeSim) QPos() []float64 { return append([]float64(nil), s.qpos...) }
func (s *freeSim) QVel() []float64 { return make([]float64, 7) }
func (s *freeSim) JointNames() []string { return []string{"root", "THJ0"} }
func (s *freeSim) JointQPosAddrs() []int { return []int{0, 7} }
func (s *freeSim) UpAxis() int { return 2 }
func (s *freeSim) Touch() []float64 { return nil }
func (s *freeSim) Dt() float64 { return 0.01 }
func (s *freeSim) Close() error { return nil }

// DefaultQPos places the root at the origin with the identity
// quaternion
func (s *freeSim) DefaultQPos() []float64 {
	return []float64{0, 0, 0, 1, 0, 0, 0, 0}
}

func (s *freeSim) ActionBounds() ([]float64, []float64) {
	return []float64{-1}, []float64{1}
}

func (s *freeSim) SitePos(name string) ([]float64, error) {
	if name != "palm" {
		return nil, fmt.Errorf("no such site '%v'", name)
	}
	return []float64{0, 0, 0}, nil
}

func (s *freeSim) Render(int, int) (image.Image, error) {
	return nil, fmt.Errorf("no renderer")
}

func init() {
	registerBackend(freeBackend, func(Config) (Simulator, error) {
		return &freeSim{}, nil
	}, Sites{ThumbTip: "S_thtip", ThumbBase: "thbase"})
}

func TestResolveQPos(t *testing.T) {
	sim := &freeSim{}
	qpos, err := resolveQPos(sim, map[string]float64{"THJ0": 0.4})
	if err != nil {
		t.Fatalf("resolveQPos: %v", err)
	}

	want := []float64{0, 0, 0, 1, 0, 0, 0, 0.4}
	if len(qpos) != len(want) {
		t.Fatalf("resolveQPos: length \n\thave(%v) \n\twant(%v)", len(qpos),
			len(want))
	}
	for i := range want {
		if qpos[i] != want[i] {
			t.Errorf("resolveQPos: \n\thave(%v) \n\twant(%v)", qpos, want)
			break
		}
	}

	if _, err := resolveQPos(sim, map[string]float64{"FFJ0": 1}); err == nil {
		t.Error("resolveQPos: expected error for unknown joint")
	}
}

func TestNewHandFreeJoint(t *testing.T) {
	c := DefaultConfig()
	c.Backend = freeBackend
	c.InitialNoise = 0
	c.InitialQPos = map[string]float64{"THJ0": 0.4}

	h, _, err := New(fixedTask{}, c)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer h.Close()

	qpos := h.Simulator().QPos()
	if len(qpos) != 8 || qpos[3] != 1 || qpos[7] != 0.4 {
		t.Errorf("new: initial qpos \n\thave(%v) \n\twant([0 0 0 1 0 0 0 "+
			"0.4])", qpos)
	}
}

func TestConfigSitesDefaults(t *testing.T) {
	c := DefaultConfig()
	c.Backend = freeBackend

	sites, err := c.Sites()
	if err != nil {
		t.Fatalf("sites: %v", err)
	}
	if sites.ThumbTip != "S_thtip" || sites.ThumbBase != "thbase" {
		t.Errorf("sites: backend defaults \n\thave(%+v) \n\twant(S_thtip, "+
			"thbase)", sites)
	}

	c.ThumbTipSite = "robot0:S_thtip"
	if sites, _ = c.Sites(); sites.ThumbTip != "robot0:S_thtip" ||
		sites.ThumbBase != "thbase" {
		t.Errorf("sites: override \n\thave(%+v) \n\twant(robot0:S_thtip, "+
			"thbase)", sites)
	}

	c.Backend = "missing"
	if _, err := c.Sites(); err == nil {
		t.Error("sites: expected error for unknown backend")
	}
}
