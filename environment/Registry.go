package environment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samuelfneumann/dexterous/timestep"
)

// Errors returned by a Registry
var (
	ErrEmptyID      = errors.New("environment ID must not be empty")
	ErrDuplicateID  = errors.New("environment ID already registered")
	ErrUnknownID    = errors.New("no environment registered with ID")
	ErrInvalidLimit = errors.New("maximum episode steps must be positive")
)

// Factory constructs an environment whose episodes are cut off after
// maxSteps steps. The factory should capture any default construction
// arguments for the environment.
type Factory func(maxSteps int, seed uint64) (Environment, timestep.TimeStep,
	error)

// Registration records how a registered environment is constructed
type Registration struct {
	ID              string
	MaxEpisodeSteps int
	factory         Factory
}

// Registry maps environment IDs to the factories which construct them.
// A Registry is created once at process startup, environments are
// registered on it, and are then constructed by name with Make.
//
// A Registry is not safe for concurrent registration.
type Registry struct {
	entries map[string]Registration
}

// NewRegistry returns a new, empty Registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// Register registers a new environment with the Registry under id.
// Each id may be registered only once.
func (r *Registry) Register(id string, maxEpisodeSteps int, f Factory) error {
	if id == "" {
		return fmt.Errorf("register: %w", ErrEmptyID)
	}
	if maxEpisodeSteps <= 0 {
		return fmt.Errorf("register %v: %w: got %v", id, ErrInvalidLimit,
			maxEpisodeSteps)
	}
	if f == nil {
		return fmt.Errorf("register %v: nil factory", id)
	}
	if _, ok := r.entries[id]; ok {
		return fmt.Errorf("register %v: %w", id, ErrDuplicateID)
	}

	r.entries[id] = Registration{
		ID:              id,
		MaxEpisodeSteps: maxEpisodeSteps,
		factory:         f,
	}
	return nil
}

// Make constructs the environment registered under id, returning the
// environment as well as its first timestep
func (r *Registry) Make(id string, seed uint64) (Environment,
	timestep.TimeStep, error) {
	entry, ok := r.entries[id]
	if !ok {
		return nil, timestep.TimeStep{}, fmt.Errorf("make %v: %w", id,
			ErrUnknownID)
	}

	env, step, err := entry.factory(entry.MaxEpisodeSteps, seed)
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("make %v: %v", id, err)
	}
	return env, step, nil
}

// Lookup returns the Registration for id, if one exists
func (r *Registry) Lookup(id string) (Registration, bool) {
	entry, ok := r.entries[id]
	return entry, ok
}

// IDs returns the sorted IDs of all registered environments
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
