// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"encoding/json"
	"fmt"
	"os"

	env "github.com/samuelfneumann/dexterous/environment"
	"github.com/samuelfneumann/dexterous/environment/hand"
	"github.com/samuelfneumann/dexterous/environment/hand/thumbsup"
	ts "github.com/samuelfneumann/dexterous/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	Hand EnvName = "Hand"
)

// TaskName stores the tasks that can be configured with this package.
// Note that not all tasks can be used with all environments. The tasks
// that can be used with each environment are as follows:
//
//	Environment			Task
//	Hand				ThumbsUp
type TaskName string

// Tasks available for configuration
const (
	ThumbsUp TaskName = "ThumbsUp"
)

// Config implements a specific configuration of a specific environment
// and specific task. Fields left out of a JSON configuration keep the
// values of Default.
type Config struct {
	Environment        EnvName            `json:"environment"`
	Task               TaskName           `json:"task"`
	Backend            string             `json:"backend"`
	EpisodeCutoff      int                `json:"episode_cutoff"`
	Discount           float64            `json:"discount"`
	Touch              bool               `json:"touch"`
	Vision             bool               `json:"vision"`
	VisionSize         int                `json:"vision_size"`
	DistanceThreshold  float64            `json:"distance_threshold"`
	TerminateOnSuccess bool               `json:"terminate_on_success"`
	InitialQPos        map[string]float64 `json:"initial_qpos,omitempty"`
	InitialNoise       float64            `json:"initial_noise"`
	FrameSkip          int                `json:"frame_skip"`
	ModelPath          string             `json:"model_path,omitempty"`
	TouchSensors       []string           `json:"touch_sensors,omitempty"`
	ThumbTipSite       string             `json:"thumb_tip_site,omitempty"`
	ThumbBaseSite      string             `json:"thumb_base_site,omitempty"`
}

// Default returns the default configuration of the ThumbsUp task
func Default() Config {
	h := hand.DefaultConfig()
	return Config{
		Environment:        Hand,
		Task:               ThumbsUp,
		Backend:            h.Backend,
		EpisodeCutoff:      thumbsup.MaxEpisodeSteps,
		Discount:           h.Discount,
		Touch:              h.Touch,
		Vision:             h.Vision,
		VisionSize:         h.VisionSize,
		DistanceThreshold:  h.DistanceThreshold,
		TerminateOnSuccess: h.TerminateOnSuccess,
		InitialNoise:       h.InitialNoise,
		FrameSkip:          h.FrameSkip,
	}
}

// Load reads a JSON configuration from a file. Fields missing from the
// file take their values from Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load: could not read config: %v", err)
	}

	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("load: could not decode config %v: %v",
			path, err)
	}
	return c, nil
}

// Save writes the configuration to a file as indented JSON
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return fmt.Errorf("save: could not encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save: could not write config: %v", err)
	}
	return nil
}

// HandConfig returns the hand.Config described by c using the
// argument seed
func (c Config) HandConfig(seed uint64) hand.Config {
	h := hand.DefaultConfig()
	h.Backend = c.Backend
	h.EpisodeCutoff = c.EpisodeCutoff
	h.Discount = c.Discount
	h.Touch = c.Touch
	h.Vision = c.Vision
	h.VisionSize = c.VisionSize
	h.DistanceThreshold = c.DistanceThreshold
	h.TerminateOnSuccess = c.TerminateOnSuccess
	h.InitialQPos = c.InitialQPos
	h.InitialNoise = c.InitialNoise
	h.FrameSkip = c.FrameSkip
	h.ModelPath = c.ModelPath
	h.TouchSensors = c.TouchSensors
	h.ThumbTipSite = c.ThumbTipSite
	h.ThumbBaseSite = c.ThumbBaseSite
	h.Seed = seed
	return h
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	switch c.Environment {
	case Hand:
		return CreateHand(c.Task, c.HandConfig(seed))
	}

	return nil, ts.TimeStep{}, fmt.Errorf("create: cannot create "+
		"environment %v, no such environment", c.Environment)
}

// CreateHand is a factory for creating the Hand environment with
// default physical parameters and the argument task.
func CreateHand(taskName TaskName, c hand.Config) (env.Environment,
	ts.TimeStep, error) {
	switch taskName {
	case ThumbsUp:
		e, step, err := thumbsup.New(c)
		if err != nil {
			return nil, ts.TimeStep{}, fmt.Errorf("createHand: %v", err)
		}
		return e, step, nil
	}

	return nil, ts.TimeStep{}, fmt.Errorf("createHand: Hand environment "+
		"has no task %v", taskName)
}

// RegisterAll registers every configurable environment with r, using
// c as the default construction arguments. Registered environments cut
// episodes off after c.EpisodeCutoff steps.
func (c Config) RegisterAll(r *env.Registry) error {
	if err := thumbsup.RegisterWithLimit(r, c.EpisodeCutoff,
		c.HandConfig(0)); err != nil {
		return fmt.Errorf("registerAll: %w", err)
	}
	return nil
}
