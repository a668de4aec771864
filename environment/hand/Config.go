package hand

import "fmt"

// Config configures a Hand environment. Configs are JSON serializable.
type Config struct {
	// InitialQPos maps joint names to their starting angle. Joints not
	// listed start at 0.
	InitialQPos map[string]float64 `json:"initial_qpos,omitempty"`

	// InitialNoise is the half-width of the uniform noise added to each
	// starting joint angle
	InitialNoise float64 `json:"initial_noise"`

	// DistanceThreshold is the element-wise tolerance within which the
	// achieved goal counts as equal to the desired goal
	DistanceThreshold float64 `json:"distance_threshold"`

	Touch      bool `json:"touch"`
	Vision     bool `json:"vision"`
	VisionSize int  `json:"vision_size"`

	// TerminateOnSuccess ends episodes as soon as the goal is achieved
	TerminateOnSuccess bool `json:"terminate_on_success"`

	Discount      float64 `json:"discount"`
	EpisodeCutoff int     `json:"episode_cutoff"`
	FrameSkip     int     `json:"frame_skip"`
	Seed          uint64  `json:"seed"`

	Backend string `json:"backend"`

	// ModelPath and TouchSensors are used by backends which load their
	// hand from a model file
	ModelPath    string   `json:"model_path,omitempty"`
	TouchSensors []string `json:"touch_sensors,omitempty"`

	// ThumbTipSite and ThumbBaseSite name the sites (or, for the mujoco
	// backend, bodies) locating the thumb. Empty names use the
	// backend's defaults.
	ThumbTipSite  string `json:"thumb_tip_site,omitempty"`
	ThumbBaseSite string `json:"thumb_base_site,omitempty"`
}

// Sites returns the thumb sites of the Config, falling back to the
// defaults of the Config's backend for unset names
func (c Config) Sites() (Sites, error) {
	sites, err := DefaultSites(c.Backend)
	if err != nil {
		return Sites{}, fmt.Errorf("sites: %v", err)
	}

	if c.ThumbTipSite != "" {
		sites.ThumbTip = c.ThumbTipSite
	}
	if c.ThumbBaseSite != "" {
		sites.ThumbBase = c.ThumbBaseSite
	}
	return sites, nil
}

// DefaultConfig returns the default Hand configuration. Vision is
// disabled by default.
func DefaultConfig() Config {
	return Config{
		InitialNoise:      0.01,
		DistanceThreshold: 0.02,
		Touch:             true,
		Vision:            false,
		VisionSize:        64,
		Discount:          0.99,
		EpisodeCutoff:     100,
		FrameSkip:         5,
		Backend:           PlanarBackend,
	}
}

// Validate returns an error if the Config cannot be used to construct
// a Hand
func (c Config) Validate() error {
	if c.DistanceThreshold < 0 {
		return fmt.Errorf("validate: distance threshold should be "+
			"non-negative, got %v", c.DistanceThreshold)
	}
	if c.InitialNoise < 0 {
		return fmt.Errorf("validate: initial noise should be "+
			"non-negative, got %v", c.InitialNoise)
	}
	if c.Vision && c.VisionSize <= 0 {
		return fmt.Errorf("validate: vision size should be positive, "+
			"got %v", c.VisionSize)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount should be in [0, 1], got %v",
			c.Discount)
	}
	if c.EpisodeCutoff <= 0 {
		return fmt.Errorf("validate: episode cutoff should be positive, "+
			"got %v", c.EpisodeCutoff)
	}
	if c.FrameSkip <= 0 {
		return fmt.Errorf("validate: frame skip should be positive, got %v",
			c.FrameSkip)
	}
	return nil
}
