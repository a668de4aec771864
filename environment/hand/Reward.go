package hand

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrMissingRewardKey is returned when a RewardConfig lacks a key that
// its task requires
var ErrMissingRewardKey = errors.New("reward config missing required key")

// RewardFunc computes the reward for a step given the goal achieved by
// the hand, the desired goal, and the reward configuration
type RewardFunc func(achieved, desired mat.Vector, c RewardConfig) float64

// RewardConfig holds the named scalar parameters of a reward function
type RewardConfig map[string]float64

// Validate returns an error wrapping ErrMissingRewardKey if any of
// the required keys are absent from the RewardConfig
func (r RewardConfig) Validate(required []string) error {
	var missing []string
	for _, key := range required {
		if _, ok := r[key]; !ok {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("validate: %w: %v", ErrMissingRewardKey, missing)
	}
	return nil
}

// Copy returns a copy of the RewardConfig
func (r RewardConfig) Copy() RewardConfig {
	c := make(RewardConfig, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}
