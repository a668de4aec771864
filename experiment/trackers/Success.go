package trackers

import (
	"github.com/samuelfneumann/dexterous/timestep"
)

// SuccessKey is the TimeStep Info key read by the Success Tracker
const SuccessKey = "success"

// Success tracks and saves whether each episode of an experiment ended
// successfully, as reported by the "success" entry of the Info of each
// episode's last TimeStep. Episodes whose last step carries no such
// entry are recorded as failures.
type Success struct {
	successes []float64
	filename  string
}

// NewSuccess returns a new Success tracker which will save its data
// at the specified location filename
func NewSuccess(filename string) *Success {
	return &Success{filename: filename}
}

// Track records episode success on the last timestep of an episode
func (s *Success) Track(t timestep.TimeStep) {
	if !t.Last() {
		return
	}

	success, ok := t.Info[SuccessKey]
	if !ok || success != 1 {
		success = 0
	}
	s.successes = append(s.successes, success)
}

// Data returns 1 for each successful finished episode and 0 otherwise
func (s *Success) Data() []float64 {
	return append([]float64(nil), s.successes...)
}

// Save saves the data tracked by the Success Tracker to disk.
func (s *Success) Save() error {
	return save(s.filename, s.successes)
}
