package experiment

import (
	"fmt"

	"github.com/samuelfneumann/dexterous/agent"
	env "github.com/samuelfneumann/dexterous/environment"
	"github.com/samuelfneumann/dexterous/experiment/trackers"
	ts "github.com/samuelfneumann/dexterous/timestep"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Agent
	maxSteps     uint
	currentSteps uint
	episodes     int
	trackers     []trackers.Tracker
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for, and the t parameter
// is a slice of trackers.Tracker which determine what data is saved.
func NewOnline(e env.Environment, a agent.Agent, steps uint,
	t ...trackers.Tracker) *Online {
	return &Online{
		Environment: e,
		Agent:       a,
		maxSteps:    steps,
		trackers:    t,
	}
}

// Register registers a trackers.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment. RunEpisode
// returns whether the step budget of the experiment is exhausted. Once
// the budget is exhausted, RunEpisode does nothing.
func (o *Online) RunEpisode() (bool, error) {
	if o.currentSteps >= o.maxSteps {
		return true, nil
	}

	step, err := o.Environment.Reset()
	if err != nil {
		return true, fmt.Errorf("runEpisode: could not reset: %v", err)
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return true, fmt.Errorf("runEpisode: %v", err)
	}
	o.track(step)

	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++

		action := o.Agent.SelectAction(step)
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return true, fmt.Errorf("runEpisode: could not step: %v", err)
		}

		o.track(step)

		if err := o.Agent.Observe(action, step); err != nil {
			return true, fmt.Errorf("runEpisode: %v", err)
		}
		if err := o.Agent.Step(); err != nil {
			return true, fmt.Errorf("runEpisode: %v", err)
		}
	}
	o.Agent.EndEpisode()

	if step.Last() {
		o.episodes++
	}

	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run() error {
	for {
		ended, err := o.RunEpisode()
		if err != nil {
			return fmt.Errorf("run: %v", err)
		}
		if ended {
			return nil
		}
	}
}

// RunEpisodes runs n episodes, or fewer if the step budget is
// exhausted first. The argument callback, if non-nil, is called with
// the last timestep of each finished episode.
func (o *Online) RunEpisodes(n int, callback func(ts.TimeStep)) error {
	for i := 0; i < n; i++ {
		ended, err := o.RunEpisode()
		if err != nil {
			return fmt.Errorf("runEpisodes: %v", err)
		}

		last := o.Environment.CurrentTimeStep()
		if callback != nil && last.Last() {
			callback(last)
		}

		if ended {
			return nil
		}
	}
	return nil
}

// Episodes returns the number of finished episodes
func (o *Online) Episodes() int {
	return o.episodes
}

// Steps returns the number of environment steps taken
func (o *Online) Steps() uint {
	return o.currentSteps
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, tracker := range o.trackers {
		if err := tracker.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
}
