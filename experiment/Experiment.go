// Package experiment implements functionality for running an experiment
package experiment

import (
	"fmt"

	"github.com/samuelfneumann/dexterous/agent"
	"github.com/samuelfneumann/dexterous/agent/random"
	"github.com/samuelfneumann/dexterous/environment/envconfig"
	"github.com/samuelfneumann/dexterous/experiment/trackers"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments will track environment TimeSteps, caching each TimeStep
// in RAM to be later saved to disk. The Save() function
// will then take all cached data and save it to disk. This is usually
// performed after an experiment has been run. The Run() method will
// run all episodes util the maximum timestep limit is reached. The
// RunEpisode() function will run a single episode.
//
// Experiments send each TimeStep to Trackers using the Tracker's
// Track() method. The Tracker then determines which data from the
// TimeStep it caches and saves. New Trackers can be registered with
// an Experiment through the constructor or through an Experiment's
// Register() function.
type Experiment interface {
	Run() error

	// Returns whether or not the step budget is exhausted
	RunEpisode() (bool, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new trackers.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t trackers.Tracker)
}

type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// AgentType names the agents which can be configured
type AgentType string

const (
	Random AgentType = "Random"
)

// Config represents a configuration of an experiment. Configs are JSON
// serializable.
type Config struct {
	Type      Type             `json:"type"`
	MaxSteps  uint             `json:"max_steps"`
	EnvConf   envconfig.Config `json:"environment"`
	AgentType AgentType        `json:"agent"`
}

// CreateExp creates the experiment described by the Config. The
// environment is seeded by seed and the agent by seed+2, since the
// environment also seeds its initial state noise with seed+1.
func (c Config) CreateExp(seed uint64, t ...trackers.Tracker) (Experiment,
	error) {
	env, _, err := c.EnvConf.Create(seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create environment: %v",
			err)
	}

	var a agent.Agent
	switch c.AgentType {
	case Random:
		a, err = random.New(env.ActionSpec(), seed+2)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("createExp: could not create agent: %v",
				err)
		}

	default:
		env.Close()
		return nil, fmt.Errorf("createExp: no such agent type %v",
			c.AgentType)
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(env, a, c.MaxSteps, t...), nil
	}

	env.Close()
	return nil, fmt.Errorf("createExp: no such experiment type %v", c.Type)
}
