// Package hand implements a goal-based robotic hand environment. The
// Hand environment owns a physics Simulator and delegates the
// task-specific parts of an episode (goal sampling, the achieved goal,
// the success check and the default reward) to a Task.
//
// Observations are returned in two forms. The TimeStep returned by
// Reset and Step holds the flattened Sensation, and the full
// Observation bundle of the most recent step, including desired and
// achieved goals, is available through Hand.Observation.
//
// When an episode ends, the final TimeStep's Info gains a "success"
// entry which is 1 if the achieved goal equals the desired goal and 0
// otherwise. No earlier step carries a "success" entry.
package hand

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/dexterous/environment"
	ts "github.com/samuelfneumann/dexterous/timestep"
	"github.com/samuelfneumann/dexterous/utils/floatutils"
)

// SuccessKey is the Info key which records episode success
const SuccessKey = "success"

// Task defines a goal-based task for a Hand
type Task interface {
	// SampleGoal samples the desired goal for a new episode
	SampleGoal() *mat.VecDense

	// AchievedGoal computes the goal currently achieved by the
	// simulated hand
	AchievedGoal(sim Simulator, c RewardConfig) (*mat.VecDense, error)

	// Success returns whether the achieved goal equals the desired goal
	// within the distance threshold
	Success(achieved, desired mat.Vector, threshold float64) bool

	// DefaultReward returns the reward function and configuration used
	// when none are given explicitly
	DefaultReward() (RewardFunc, RewardConfig)

	// RequiredRewardKeys returns the keys a RewardConfig must contain
	RequiredRewardKeys() []string
}

// Hand is a goal-based robotic hand environment. Hand implements the
// environment.Environment interface.
type Hand struct {
	sim  Simulator
	task Task
	conf Config

	rewardFunc   RewardFunc
	rewardConfig RewardConfig

	initQPos  []float64
	noise     *environment.UniformStarter
	stepLimit *environment.StepLimit

	goal            *mat.VecDense
	obs             Observation
	obsLen          int
	currentTimeStep ts.TimeStep
}

// New returns a new Hand environment running task t with the task's
// default reward function and configuration, as well as the first
// timestep of the first episode.
func New(t Task, c Config) (*Hand, ts.TimeStep, error) {
	f, rc := t.DefaultReward()
	return NewWithReward(t, c, f, rc)
}

// NewWithReward returns a new Hand environment running task t using
// reward function f and reward configuration rc. The reward
// configuration is validated against the task's required keys before
// any simulation is constructed.
func NewWithReward(t Task, c Config, f RewardFunc,
	rc RewardConfig) (*Hand, ts.TimeStep, error) {
	if t == nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newHand: nil task")
	}
	if f == nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newHand: nil reward function")
	}
	if err := rc.Validate(t.RequiredRewardKeys()); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newHand: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newHand: %v", err)
	}

	sim, err := NewSimulator(c)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newHand: %v", err)
	}

	initQPos, err := resolveQPos(sim, c.InitialQPos)
	if err != nil {
		sim.Close()
		return nil, ts.TimeStep{}, fmt.Errorf("newHand: %v", err)
	}

	noiseBounds := make([]r1.Interval, len(initQPos))
	for i := range noiseBounds {
		noiseBounds[i] = r1.Interval{Min: -c.InitialNoise, Max: c.InitialNoise}
	}

	h := &Hand{
		sim:          sim,
		task:         t,
		conf:         c,
		rewardFunc:   f,
		rewardConfig: rc.Copy(),
		initQPos:     initQPos,
		noise:        environment.NewUniformStarter(noiseBounds, c.Seed+1),
		stepLimit:    environment.NewStepLimit(c.EpisodeCutoff),
	}

	firstStep, err := h.Reset()
	if err != nil {
		sim.Close()
		return nil, ts.TimeStep{}, fmt.Errorf("newHand: %v", err)
	}
	h.obsLen = h.obs.Len()

	return h, firstStep, nil
}

// resolveQPos returns the simulator's default pose with the named
// joint positions written at each joint's qpos address
func resolveQPos(sim Simulator, named map[string]float64) ([]float64,
	error) {
	joints := sim.JointNames()
	addrs := sim.JointQPosAddrs()
	qpos := sim.DefaultQPos()
	if len(addrs) != len(joints) {
		return nil, fmt.Errorf("resolveQPos: %v joints but %v qpos "+
			"addresses", len(joints), len(addrs))
	}

	index := make(map[string]int, len(joints))
	for i, name := range joints {
		index[name] = addrs[i]
	}

	for name, value := range named {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("resolveQPos: no such joint '%v'", name)
		}
		if i < 0 || i >= len(qpos) {
			return nil, fmt.Errorf("resolveQPos: joint '%v' has qpos "+
				"address %v outside [0, %v)", name, i, len(qpos))
		}
		qpos[i] = value
	}
	return qpos, nil
}

// Reset resets the environment to begin a new episode, sampling a new
// goal and posing the hand at its (noisy) initial joint positions
func (h *Hand) Reset() (ts.TimeStep, error) {
	h.goal = h.task.SampleGoal()

	qpos := h.noise.Start()
	qpos.AddVec(qpos, mat.NewVecDense(len(h.initQPos), h.initQPos))
	if err := h.sim.Reset(qpos.RawVector().Data); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	obs, err := h.observe()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not get starting "+
			"observation: %v", err)
	}
	h.obs = obs

	firstStep := ts.New(ts.First, 0, h.conf.Discount, obs.Flatten(), 0)
	h.currentTimeStep = firstStep

	return firstStep, nil
}

// Step takes one environmental step given some action. Step returns
// the next timestep and whether the episode has ended, either by
// termination or truncation.
func (h *Hand) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	low, high := h.sim.ActionBounds()
	if action.Len() != len(low) {
		return ts.TimeStep{}, true, fmt.Errorf("step: invalid number of "+
			"action dimensions \n\thave(%v) \n\twant(%v)", action.Len(),
			len(low))
	}

	ctrl := make([]float64, action.Len())
	for i := range ctrl {
		ctrl[i] = floatutils.Clip(action.AtVec(i), low[i], high[i])
	}
	if err := h.sim.Step(ctrl); err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %v", err)
	}

	obs, err := h.observe()
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not get next "+
			"state observation: %v", err)
	}
	h.obs = obs

	reward := h.rewardFunc(obs.AchievedGoal, obs.DesiredGoal, h.rewardConfig)

	t := ts.New(ts.Mid, reward, h.conf.Discount, obs.Flatten(),
		h.currentTimeStep.Number+1)
	done := h.end(&t, obs)
	if done {
		success := 0.0
		if h.success(obs) {
			success = 1.0
		}
		t.SetInfo(SuccessKey, success)
	}
	h.currentTimeStep = t

	return t, done, nil
}

// end checks if a timestep should be the last in the episode and
// adjusts the timestep accordingly
func (h *Hand) end(t *ts.TimeStep, obs Observation) bool {
	if !finite(obs.Proprioception.RawVector().Data) {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
		return true
	}

	if h.conf.TerminateOnSuccess && h.success(obs) {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
		return true
	}

	return h.stepLimit.End(t)
}

func (h *Hand) success(obs Observation) bool {
	return h.task.Success(obs.AchievedGoal, obs.DesiredGoal,
		h.conf.DistanceThreshold)
}

func finite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// observe assembles the observation bundle from the simulator's
// current state
func (h *Hand) observe() (Observation, error) {
	qpos := h.sim.QPos()
	qvel := h.sim.QVel()
	proprioception := make([]float64, 0, len(qpos)+len(qvel))
	proprioception = append(proprioception, qpos...)
	proprioception = append(proprioception, qvel...)

	var obs Observation
	obs.Proprioception = mat.NewVecDense(len(proprioception), proprioception)

	if h.conf.Touch {
		touch := h.sim.Touch()
		if len(touch) > 0 {
			obs.Touch = mat.NewVecDense(len(touch), touch)
		}
	}

	if h.conf.Vision {
		img, err := h.sim.Render(h.conf.VisionSize, h.conf.VisionSize)
		if err != nil {
			return Observation{}, fmt.Errorf("observe: %v", err)
		}
		if obs.Vision, err = imageToTensor(img); err != nil {
			return Observation{}, fmt.Errorf("observe: %v", err)
		}
	}

	achieved, err := h.task.AchievedGoal(h.sim, h.rewardConfig)
	if err != nil {
		return Observation{}, fmt.Errorf("observe: %v", err)
	}

	obs.Goal = mat.VecDenseCopyOf(h.goal)
	obs.DesiredGoal = mat.VecDenseCopyOf(h.goal)
	obs.AchievedGoal = achieved

	return obs, nil
}

// CurrentTimeStep returns the current time step
func (h *Hand) CurrentTimeStep() ts.TimeStep {
	return h.currentTimeStep
}

// Observation returns the observation bundle of the current time step
func (h *Hand) Observation() Observation {
	return h.obs
}

// Goal returns a copy of the current episode's desired goal
func (h *Hand) Goal() *mat.VecDense {
	return mat.VecDenseCopyOf(h.goal)
}

// RewardConfig returns a copy of the reward configuration in use
func (h *Hand) RewardConfig() RewardConfig {
	return h.rewardConfig.Copy()
}

// Simulator returns the simulator of the environment
func (h *Hand) Simulator() Simulator {
	return h.sim
}

// ObservationSpec returns the observation specification of the
// environment, which describes the flattened Sensation
func (h *Hand) ObservationSpec() environment.Spec {
	return environment.NewUnboundedSpec(h.obsLen, environment.Observation)
}

// ActionSpec returns the action specification of the environment
func (h *Hand) ActionSpec() environment.Spec {
	low, high := h.sim.ActionBounds()
	return environment.NewSpec(mat.NewVecDense(len(low), nil),
		environment.Action, mat.NewVecDense(len(low), low),
		mat.NewVecDense(len(high), high), environment.Continuous)
}

// DiscountSpec returns the discount specification of the environment
func (h *Hand) DiscountSpec() environment.Spec {
	return environment.NewScalarSpec(environment.Discount, h.conf.Discount,
		h.conf.Discount)
}

// RewardSpec returns the reward specification of the environment
func (h *Hand) RewardSpec() environment.Spec {
	return environment.NewScalarSpec(environment.Reward, math.Inf(-1),
		math.Inf(1))
}

// Close releases the simulator
func (h *Hand) Close() error {
	return h.sim.Close()
}
