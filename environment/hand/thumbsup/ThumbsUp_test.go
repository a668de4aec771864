package thumbsup_test

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/dexterous/environment"
	"github.com/samuelfneumann/dexterous/environment/hand"
	"github.com/samuelfneumann/dexterous/environment/hand/thumbsup"
	ts "github.com/samuelfneumann/dexterous/timestep"
)

func testConfig(cutoff int, seed uint64) hand.Config {
	c := hand.DefaultConfig()
	c.EpisodeCutoff = cutoff
	c.Seed = seed
	return c
}

// randomAction returns an action sampled uniformly from the action
// spec of env
func randomAction(env environment.Environment, rng distuv.Uniform) *mat.VecDense {
	n := env.ActionSpec().Len()
	action := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		action.SetVec(i, rng.Rand())
	}
	return action
}

// siteSim is a hand.Simulator with fixed, z-up site positions
type siteSim struct {
	sites map[string][]float64
}

func (s *siteSim) Reset([]float64) error { return nil }
func (s *siteSim) Step([]float64) error { return nil }
func (s *siteSim) QPos() []float64 { return []float64{0} }
func (s *siteSim) QVel() []float64 { return []float64{0} }
func (s *siteSim) JointNames() []string { return []string{"THJ0"} }
func (s *siteSim) JointQPosAddrs() []int { return []int{0} }
func (s *siteSim) DefaultQPos() []float64 { return []float64{0} }
func (s *siteSim) UpAxis() int { return 2 }
func (s *siteSim) Touch() []float64 { return nil }
func (s *siteSim) Dt() float64 { return 0.01 }
func (s *siteSim) Close() error { return nil }
func (s *siteSim) ActionBounds() ([]float64, []float64) {
	return []float64{-1}, []float64{1}
}

func (s *siteSim) SitePos(name string) ([]float64, error) {
	pos, ok := s.sites[name]
	if !ok {
		return nil, fmt.Errorf("no such site '%v'", name)
	}
	return pos, nil
}

func (s *siteSim) Render(int, int) (image.Image, error) {
	return nil, fmt.Errorf("no renderer")
}

func TestAchievedGoalCustomSites(t *testing.T) {
	sites := hand.Sites{ThumbTip: "robot0:S_thtip", ThumbBase: "robot0:thbase"}
	task, err := thumbsup.NewTask(3, sites)
	if err != nil {
		t.Fatalf("newTask: %v", err)
	}

	tests := []struct {
		name string
		tip  []float64
		want float64
	}{
		{"raised along z", []float64{0.1, 0.2, 1.0}, 1},
		{"raised along y only", []float64{0.1, 1.2, 0.1}, 0},
		{"lowered", []float64{0.1, 0.2, -0.5}, 0},
	}

	for _, test := range tests {
		sim := &siteSim{sites: map[string][]float64{
			"robot0:S_thtip": test.tip,
			"robot0:thbase":  {0.1, 0.2, 0.1},
		}}

		got, err := task.AchievedGoal(sim, thumbsup.BaseRewardConfig())
		if err != nil {
			t.Fatalf("%v: achievedGoal: %v", test.name, err)
		}
		if got.AtVec(0) != test.want {
			t.Errorf("%v: achievedGoal \n\thave(%v) \n\twant(%v)", test.name,
				got.AtVec(0), test.want)
		}
	}

	// The planar hand's site names are unknown to this simulator
	planar, err := thumbsup.NewTask(3, hand.Sites{ThumbTip: "th_tip",
		ThumbBase: "th_base"})
	if err != nil {
		t.Fatalf("newTask: %v", err)
	}
	sim := &siteSim{sites: map[string][]float64{}}
	if _, err := planar.AchievedGoal(sim, thumbsup.BaseRewardConfig()); err == nil {
		t.Error("achievedGoal: expected error for unknown sites")
	}

	if _, err := thumbsup.NewTask(3, hand.Sites{ThumbTip: "tip"}); err == nil {
		t.Error("newTask: expected error for unnamed base site")
	}
}

func TestConfigSites(t *testing.T) {
	c := hand.DefaultConfig()
	c.ThumbTipSite = "lf_tip"
	c.ThumbBaseSite = "lf_base"

	sites, err := c.Sites()
	if err != nil {
		t.Fatalf("sites: %v", err)
	}
	if sites.ThumbTip != "lf_tip" || sites.ThumbBase != "lf_base" {
		t.Errorf("sites: \n\thave(%+v) \n\twant(lf_tip, lf_base)", sites)
	}

	// The environment follows the configured sites, here the little
	// finger, which points up at rest and so counts as raised
	c.InitialNoise = 0
	env, _, err := thumbsup.New(c)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer env.Close()
	if got := env.Observation().AchievedGoal.AtVec(0); got != 1 {
		t.Errorf("new: achieved goal \n\thave(%v) \n\twant(1)", got)
	}

	c.ThumbTipSite = "wrist"
	if _, _, err := thumbsup.New(c); err == nil {
		t.Error("new: expected error for unknown site")
	}
}

func TestSampleGoal(t *testing.T) {
	task, err := thumbsup.NewTask(1234, hand.Sites{ThumbTip: "th_tip",
		ThumbBase: "th_base"})
	if err != nil {
		t.Fatalf("newTask: %v", err)
	}

	const n = 2000
	ones := 0
	for i := 0; i < n; i++ {
		goal := task.SampleGoal()
		if goal.Len() != 1 {
			t.Fatalf("sampleGoal: length \n\thave(%v) \n\twant(1)", goal.Len())
		}
		switch goal.AtVec(0) {
		case 0:
		case 1:
			ones++
		default:
			t.Fatalf("sampleGoal: got %v, want 0 or 1", goal.AtVec(0))
		}
	}

	// Binomial(2000, 0.5) has a standard deviation of about 22.4
	binomial := distuv.Binomial{N: n, P: 0.5}
	if diff := float64(ones) - binomial.Mean(); diff > 5*binomial.StdDev() ||
		diff < -5*binomial.StdDev() {
		t.Errorf("sampleGoal: sampled %v ones in %v trials", ones, n)
	}
}

func TestResetSamplesGoal(t *testing.T) {
	env, _, err := thumbsup.New(testConfig(10, 5))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer env.Close()

	seen := map[float64]bool{}
	for i := 0; i < 50; i++ {
		if _, err := env.Reset(); err != nil {
			t.Fatalf("reset: %v", err)
		}
		goal := env.Goal().AtVec(0)
		if goal != 0 && goal != 1 {
			t.Fatalf("reset: goal %v, want 0 or 1", goal)
		}
		seen[goal] = true

		obs := env.Observation()
		if obs.Goal.AtVec(0) != goal || obs.DesiredGoal.AtVec(0) != goal {
			t.Errorf("reset: observation goals %v, %v do not match goal %v",
				obs.Goal.AtVec(0), obs.DesiredGoal.AtVec(0), goal)
		}
	}
	if !seen[0] || !seen[1] {
		t.Errorf("reset: expected both goals over 50 episodes, saw %v", seen)
	}
}

func TestSuccess(t *testing.T) {
	tests := []struct {
		name      string
		achieved  []float64
		desired   []float64
		threshold float64
		want      bool
	}{
		{"raised", []float64{1}, []float64{1}, 0.02, true},
		{"lowered", []float64{0}, []float64{0}, 0.02, true},
		{"want raised", []float64{0}, []float64{1}, 0.02, false},
		{"want lowered", []float64{1}, []float64{0}, 0.02, false},
		{"within threshold", []float64{0.99}, []float64{1}, 0.02, true},
		{"length mismatch", []float64{1, 1}, []float64{1}, 0.02, false},
	}

	for _, test := range tests {
		achieved := mat.NewVecDense(len(test.achieved), test.achieved)
		desired := mat.NewVecDense(len(test.desired), test.desired)

		if got := thumbsup.Success(achieved, desired, test.threshold); got !=
			test.want {
			t.Errorf("%v: \n\thave(%v) \n\twant(%v)", test.name, got, test.want)
		}
	}
}

func TestReward(t *testing.T) {
	one := mat.NewVecDense(1, []float64{1})
	zero := mat.NewVecDense(1, []float64{0})

	for _, c := range []hand.RewardConfig{nil, thumbsup.BaseRewardConfig()} {
		if r := thumbsup.Reward(one, zero, c); r != 1 {
			t.Errorf("reward: \n\thave(%v) \n\twant(1)", r)
		}
		if r := thumbsup.Reward(one, one, c); r != 1 {
			t.Errorf("reward: \n\thave(%v) \n\twant(1)", r)
		}
	}
}

func TestMissingRewardKey(t *testing.T) {
	c := testConfig(10, 0)

	_, _, err := thumbsup.NewWithReward(c, thumbsup.Reward, hand.RewardConfig{
		"OTHER": 1,
	})
	if !errors.Is(err, hand.ErrMissingRewardKey) {
		t.Errorf("newWithReward: \n\thave(%v) \n\twant(%v)", err,
			hand.ErrMissingRewardKey)
	}

	// The reward configuration is checked before the simulator is
	// constructed, so an unknown backend is never reached
	c.Backend = "no-such-backend"
	_, _, err = thumbsup.NewWithReward(c, thumbsup.Reward, hand.RewardConfig{})
	if !errors.Is(err, hand.ErrMissingRewardKey) {
		t.Errorf("newWithReward: \n\thave(%v) \n\twant(%v)", err,
			hand.ErrMissingRewardKey)
	}
}

func TestAchievedGoalFollowsThumb(t *testing.T) {
	env, _, err := thumbsup.New(testConfig(200, 3))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer env.Close()

	if got := env.Observation().AchievedGoal.AtVec(0); got != 0 {
		t.Errorf("achievedGoal: thumb starts lowered, got %v", got)
	}

	// Thumb joints are the first three action dimensions
	n := env.ActionSpec().Len()
	raise := mat.NewVecDense(n, nil)
	lower := mat.NewVecDense(n, nil)
	for i := 0; i < 3; i++ {
		raise.SetVec(i, 1)
		lower.SetVec(i, -1)
	}

	for i := 0; i < 40; i++ {
		if _, _, err := env.Step(raise); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if got := env.Observation().AchievedGoal.AtVec(0); got != 1 {
		t.Errorf("achievedGoal: after raising thumb \n\thave(%v) \n\twant(1)",
			got)
	}

	for i := 0; i < 40; i++ {
		if _, _, err := env.Step(lower); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if got := env.Observation().AchievedGoal.AtVec(0); got != 0 {
		t.Errorf("achievedGoal: after lowering thumb \n\thave(%v) \n\twant(0)",
			got)
	}
}

func TestTerminateOnSuccess(t *testing.T) {
	c := testConfig(200, 11)
	c.TerminateOnSuccess = true
	env, _, err := thumbsup.New(c)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer env.Close()

	// Find an episode whose goal is to raise the thumb
	for env.Goal().AtVec(0) != 1 {
		if _, err := env.Reset(); err != nil {
			t.Fatalf("reset: %v", err)
		}
	}

	n := env.ActionSpec().Len()
	raise := mat.NewVecDense(n, nil)
	for i := 0; i < 3; i++ {
		raise.SetVec(i, 1)
	}

	var step ts.TimeStep
	done := false
	for !done {
		step, done, err = env.Step(raise)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
	}

	if !step.Terminated() {
		t.Errorf("step: episode should terminate on success, ended with %v",
			step.EndType())
	}
	if step.Info[hand.SuccessKey] != 1 {
		t.Errorf("step: success \n\thave(%v) \n\twant(1)",
			step.Info[hand.SuccessKey])
	}
	if step.Number >= c.EpisodeCutoff {
		t.Errorf("step: episode should end before the cutoff, ended at %v",
			step.Number)
	}
}

// runEpisode steps env with random actions until the episode ends and
// checks that only the last step carries a success entry
func runEpisode(t *testing.T, env environment.Environment,
	rng distuv.Uniform) ts.TimeStep {
	var step ts.TimeStep
	var err error
	done := false
	for !done {
		step, done, err = env.Step(randomAction(env, rng))
		if err != nil {
			t.Fatalf("step: %v", err)
		}

		success, ok := step.Info[hand.SuccessKey]
		if !done && ok {
			t.Fatalf("step %v: success key present on non-terminal step",
				step.Number)
		}
		if done {
			if !ok {
				t.Fatalf("step %v: success key missing on terminal step",
					step.Number)
			}
			if success != 0 && success != 1 {
				t.Errorf("step %v: success %v, want 0 or 1", step.Number,
					success)
			}
			if !step.Last() {
				t.Errorf("step %v: done step should have type Last",
					step.Number)
			}
		}
	}
	return step
}

func TestEpisodeInfo(t *testing.T) {
	env, _, err := thumbsup.New(testConfig(15, 21))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer env.Close()

	rng := distuv.Uniform{Min: -1, Max: 1, Src: rand.NewSource(21)}
	for episode := 0; episode < 3; episode++ {
		last := runEpisode(t, env, rng)
		if !last.Truncated() || last.Number != 15 {
			t.Errorf("episode %v: should be truncated at step 15, ended "+
				"at step %v with %v", episode, last.Number, last.EndType())
		}

		obs := env.Observation()
		want := 0.0
		if obs.AchievedGoal.AtVec(0) == obs.DesiredGoal.AtVec(0) {
			want = 1.0
		}
		if last.Info[hand.SuccessKey] != want {
			t.Errorf("episode %v: success \n\thave(%v) \n\twant(%v)", episode,
				last.Info[hand.SuccessKey], want)
		}

		if _, err := env.Reset(); err != nil {
			t.Fatalf("reset: %v", err)
		}
	}
}

func TestRegisterAndMake(t *testing.T) {
	r := environment.NewRegistry()
	if err := thumbsup.Register(r, hand.DefaultConfig()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := thumbsup.Register(r, hand.DefaultConfig()); !errors.Is(err,
		environment.ErrDuplicateID) {
		t.Errorf("register: \n\thave(%v) \n\twant(%v)", err,
			environment.ErrDuplicateID)
	}

	env, first, err := r.Make(thumbsup.ID, 99)
	if err != nil {
		t.Fatalf("make: %v", err)
	}
	defer env.Close()

	if !first.First() || first.Info != nil {
		t.Errorf("make: first step should be First without info, got %v "+
			"with info %v", first.StepType, first.Info)
	}
	if first.Observation.Len() != env.ObservationSpec().Len() {
		t.Errorf("make: observation length \n\thave(%v) \n\twant(%v)",
			first.Observation.Len(), env.ObservationSpec().Len())
	}

	rng := distuv.Uniform{Min: -1, Max: 1, Src: rand.NewSource(99)}
	last := runEpisode(t, env, rng)
	if last.Number != thumbsup.MaxEpisodeSteps {
		t.Errorf("make: episode length \n\thave(%v) \n\twant(%v)",
			last.Number, thumbsup.MaxEpisodeSteps)
	}
}

func TestRegisterWithLimit(t *testing.T) {
	r := environment.NewRegistry()
	if err := thumbsup.RegisterWithLimit(r, 7, hand.DefaultConfig()); err != nil {
		t.Fatalf("registerWithLimit: %v", err)
	}

	env, _, err := r.Make(thumbsup.ID, 4)
	if err != nil {
		t.Fatalf("make: %v", err)
	}
	defer env.Close()

	rng := distuv.Uniform{Min: -1, Max: 1, Src: rand.NewSource(4)}
	if last := runEpisode(t, env, rng); last.Number != 7 || !last.Truncated() {
		t.Errorf("make: episode ended at %v (%v), want truncated at 7",
			last.Number, last.EndType())
	}
}

func TestVisionObservation(t *testing.T) {
	c := testConfig(5, 8)
	c.Vision = true
	c.VisionSize = 16
	env, first, err := thumbsup.New(c)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer env.Close()

	obs := env.Observation()
	if obs.Vision == nil {
		t.Fatal("new: vision should be present when enabled")
	}
	shape := obs.Vision.Shape()
	if len(shape) != 3 || shape[0] != 16 || shape[1] != 16 || shape[2] != 3 {
		t.Errorf("vision: shape \n\thave(%v) \n\twant((16, 16, 3))", shape)
	}

	// 15 joint positions, 15 joint velocities, 5 touch sensors, the
	// image, and the goal
	want := 15 + 15 + 5 + 16*16*3 + 1
	if first.Observation.Len() != want {
		t.Errorf("vision: observation length \n\thave(%v) \n\twant(%v)",
			first.Observation.Len(), want)
	}
}
