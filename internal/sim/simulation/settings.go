package simulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/zeusync/sailsim/internal/sim/boat"
)

var (
	ErrInvalidSettings = errors.New("invalid simulation settings")
	ErrUnknownClient   = errors.New("unknown client")
	ErrUnknownBoatType = errors.New("unknown boat type")
	ErrClientExists    = errors.New("client already exists")
)

// SanityLimits stop a boat from running away when something goes wrong.
type SanityLimits struct {
	// Max speed, m/s.
	Speed float64 `json:"speed" yaml:"speed"`
	// Max angular speed, degrees/s.
	AngularSpeed float64 `json:"angular_speed" yaml:"angular_speed"`
}

type Settings struct {
	// Keep a save when the run ends or fails.
	SaveSims bool `json:"save_sims" yaml:"save_sims"`
	// Largest step taken at once when the caller falls behind, s.
	MaxTimeStep float64 `json:"max_time_step" yaml:"max_time_step"`
	// How fast the rudder can move, degrees/s. Negative means instantly.
	MaxRudderMovement float64 `json:"max_rudder_movement" yaml:"max_rudder_movement"`
	// A new tracer point is recorded once the boat is this far from the last one, m.
	TracerResolution float64 `json:"tracer_resolution" yaml:"tracer_resolution"`
	TracerEnabled    bool    `json:"tracer_enabled" yaml:"tracer_enabled"`
	// Seconds without input before a client counts as disconnected.
	ClientTimeout float64      `json:"client_timeout" yaml:"client_timeout"`
	SanityLimits  SanityLimits `json:"sanity_limits" yaml:"sanity_limits"`
	// Hull damage per m/s of speed when running aground.
	GroundingDamage float64 `json:"grounding_damage" yaml:"grounding_damage"`
	// Boats stepped in parallel; 0 means one goroutine per boat.
	Workers int `json:"workers" yaml:"workers"`
}

func DefaultSettings() Settings {
	return Settings{
		SaveSims:          false,
		MaxTimeStep:       0.1,
		MaxRudderMovement: 30,
		TracerResolution:  5,
		TracerEnabled:     true,
		ClientTimeout:     10,
		SanityLimits: SanityLimits{
			Speed:        50,
			AngularSpeed: 180,
		},
		GroundingDamage: 5,
		Workers:         0,
	}
}

func (s Settings) Validate() error {
	positive := map[string]float64{
		"max_time_step":               s.MaxTimeStep,
		"client_timeout":              s.ClientTimeout,
		"sanity_limits.speed":         s.SanityLimits.Speed,
		"sanity_limits.angular_speed": s.SanityLimits.AngularSpeed,
	}
	for name, v := range positive {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidSettings, name, v)
		}
	}
	if s.TracerResolution < 0 || s.GroundingDamage < 0 {
		return fmt.Errorf("%w: tracer_resolution and grounding_damage must be non-negative", ErrInvalidSettings)
	}
	if math.IsNaN(s.MaxRudderMovement) {
		return fmt.Errorf("%w: max_rudder_movement is NaN", ErrInvalidSettings)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidSettings, s.Workers)
	}
	return nil
}

func (s Settings) limits() boat.Limits {
	return boat.Limits{
		Speed:        s.SanityLimits.Speed,
		AngularSpeed: s.SanityLimits.AngularSpeed,
		RudderRate:   s.MaxRudderMovement,
	}
}
