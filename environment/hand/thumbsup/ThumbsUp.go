// Package thumbsup implements the ThumbsUp task for the hand
// environment. At the start of each episode a binary goal is sampled
// uniformly: a goal of 1 means the thumb should be raised and a goal of
// 0 means the thumb should be lowered. The thumb counts as raised when
// its tip is at least SUCCESS_DIST (a reward configuration parameter)
// above the thumb's base.
package thumbsup

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/dexterous/environment"
	"github.com/samuelfneumann/dexterous/environment/hand"
	ts "github.com/samuelfneumann/dexterous/timestep"
)

const (
	// ID is the name under which Register registers the environment
	ID = "ThumbsUp-v0"

	// MaxEpisodeSteps is the episode cutoff used by Register
	MaxEpisodeSteps = 100

	// SuccessDistKey is the reward configuration key holding the height
	// the thumb tip must reach above the thumb base to count as raised
	SuccessDistKey = "SUCCESS_DIST"
)

// BaseRewardConfig returns the default reward configuration of the task
func BaseRewardConfig() hand.RewardConfig {
	return hand.RewardConfig{SuccessDistKey: 0.8}
}

// Reward is the reward function of the task. It returns 1 on every
// step, regardless of its arguments.
func Reward(achieved, desired mat.Vector, c hand.RewardConfig) float64 {
	return 1.0
}

// Task implements the ThumbsUp task and satisfies the hand.Task
// interface
type Task struct {
	goals *environment.CategoricalStarter

	// TipSite and BaseSite name the simulator sites at the thumb's tip
	// and base
	TipSite  string
	BaseSite string

	// UpAxis is the index of the vertical axis in site positions. A
	// negative UpAxis uses the simulator's vertical axis.
	UpAxis int
}

// NewTask returns a new ThumbsUp Task which samples goals using the
// argument seed and locates the thumb with the argument sites
func NewTask(seed uint64, sites hand.Sites) (*Task, error) {
	if sites.ThumbTip == "" || sites.ThumbBase == "" {
		return nil, fmt.Errorf("newTask: thumb sites must be named, got %+v",
			sites)
	}

	goals, err := environment.NewCategoricalStarter([]int{2}, seed)
	if err != nil {
		return nil, fmt.Errorf("newTask: %v", err)
	}

	return &Task{
		goals:    goals,
		TipSite:  sites.ThumbTip,
		BaseSite: sites.ThumbBase,
		UpAxis:   -1,
	}, nil
}

// SampleGoal returns a new goal: [1] to raise the thumb or [0] to
// lower it, each with probability 0.5
func (t *Task) SampleGoal() *mat.VecDense {
	return t.goals.Start()
}

// AchievedGoal returns [1] if the thumb is currently raised and [0]
// otherwise
func (t *Task) AchievedGoal(sim hand.Simulator,
	c hand.RewardConfig) (*mat.VecDense, error) {
	threshold, ok := c[SuccessDistKey]
	if !ok {
		return nil, fmt.Errorf("achievedGoal: %w: %v", hand.ErrMissingRewardKey,
			SuccessDistKey)
	}

	tip, err := sim.SitePos(t.TipSite)
	if err != nil {
		return nil, fmt.Errorf("achievedGoal: %v", err)
	}
	base, err := sim.SitePos(t.BaseSite)
	if err != nil {
		return nil, fmt.Errorf("achievedGoal: %v", err)
	}
	up := t.UpAxis
	if up < 0 {
		up = sim.UpAxis()
	}
	if up < 0 || up >= len(tip) || up >= len(base) {
		return nil, fmt.Errorf("achievedGoal: invalid vertical axis %v", up)
	}

	raised := 0.0
	if tip[up]-base[up] >= threshold {
		raised = 1.0
	}
	return mat.NewVecDense(1, []float64{raised}), nil
}

// Success returns whether each element of the achieved goal is within
// threshold of the desired goal
func (t *Task) Success(achieved, desired mat.Vector, threshold float64) bool {
	return Success(achieved, desired, threshold)
}

// Success returns whether each element of achieved is within threshold
// of the corresponding element of desired
func Success(achieved, desired mat.Vector, threshold float64) bool {
	if achieved.Len() != desired.Len() {
		return false
	}
	for i := 0; i < achieved.Len(); i++ {
		if math.Abs(achieved.AtVec(i)-desired.AtVec(i)) > threshold {
			return false
		}
	}
	return true
}

// DefaultReward returns Reward and BaseRewardConfig
func (t *Task) DefaultReward() (hand.RewardFunc, hand.RewardConfig) {
	return Reward, BaseRewardConfig()
}

// RequiredRewardKeys returns the keys a reward configuration of the
// task must contain
func (t *Task) RequiredRewardKeys() []string {
	return []string{SuccessDistKey}
}

// New returns a new hand environment running the ThumbsUp task with
// the default reward function and configuration
func New(c hand.Config) (*hand.Hand, ts.TimeStep, error) {
	return NewWithReward(c, Reward, BaseRewardConfig())
}

// NewWithReward returns a new hand environment running the ThumbsUp
// task with reward function f and reward configuration rc
func NewWithReward(c hand.Config, f hand.RewardFunc,
	rc hand.RewardConfig) (*hand.Hand, ts.TimeStep, error) {
	sites, err := c.Sites()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newThumbsUp: %v", err)
	}

	task, err := NewTask(c.Seed, sites)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newThumbsUp: %v", err)
	}

	env, step, err := hand.NewWithReward(task, c, f, rc)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newThumbsUp: %w", err)
	}
	return env, step, nil
}

// Register registers the ThumbsUp environment with r under ID. Each
// environment made from the registration uses c as its default
// construction arguments, with the episode cutoff set to
// MaxEpisodeSteps and the seed given to Make.
func Register(r *environment.Registry, c hand.Config) error {
	return RegisterWithLimit(r, MaxEpisodeSteps, c)
}

// RegisterWithLimit is like Register, but cuts episodes off after
// maxEpisodeSteps steps instead of MaxEpisodeSteps
func RegisterWithLimit(r *environment.Registry, maxEpisodeSteps int,
	c hand.Config) error {
	return r.Register(ID, maxEpisodeSteps, func(maxSteps int,
		seed uint64) (environment.Environment, ts.TimeStep, error) {
		conf := c
		conf.EpisodeCutoff = maxSteps
		conf.Seed = seed

		env, step, err := New(conf)
		if err != nil {
			return nil, ts.TimeStep{}, err
		}
		return env, step, nil
	})
}
