package wind

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/zeusync/sailsim/internal/core/systems/physics"
)

var ErrInvalidParams = errors.New("invalid wind parameters")

// Params shape the wind for a whole run.
type Params struct {
	// Average speed, m/s.
	SpeedAverage float64 `json:"speed_average" yaml:"speed_average"`
	// How far above the average a gust may go, m/s.
	MaxGust float64 `json:"max_gust" yaml:"max_gust"`
	// Largest change of speed rate, m/s².
	MaxSpeedVariation float64 `json:"max_speed_variation" yaml:"max_speed_variation"`
	// Largest change of turning rate, degrees/s².
	MaxDirectionVariation float64 `json:"max_direction_variation" yaml:"max_direction_variation"`
}

func (p Params) Validate() error {
	for name, v := range map[string]float64{
		"speed_average":           p.SpeedAverage,
		"max_gust":                p.MaxGust,
		"max_speed_variation":     p.MaxSpeedVariation,
		"max_direction_variation": p.MaxDirectionVariation,
	} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidParams, name, v)
		}
	}
	return nil
}

// SaveState is everything needed to resume a generator exactly.
type SaveState struct {
	Params `yaml:",inline"`
	// Current speed, m/s.
	Speed float64 `json:"speed" yaml:"speed"`
	// Direction the wind blows toward, degrees counterclockwise from +X.
	Direction     float64 `json:"direction" yaml:"direction"`
	SpeedRate     float64 `json:"speed_rate" yaml:"speed_rate"`
	DirectionRate float64 `json:"direction_rate" yaml:"direction_rate"`
	RNG           []byte  `json:"rng" yaml:"rng"`
}

// Generator produces a pseudo-random but reproducible wind: a bounded random
// walk over speed and direction. It has a single owner.
type Generator struct {
	params        Params
	speed         float64
	direction     float64
	speedRate     float64
	directionRate float64
	src           *rand.PCG
	rng           *rand.Rand
}

// New returns a generator blowing toward direction degrees at the average
// speed. The same seed always gives the same wind.
func New(p Params, direction float64, seed uint64) (*Generator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Generator{
		params:    p,
		speed:     p.SpeedAverage,
		direction: normalizeDegrees(direction),
		src:       src,
		rng:       rand.New(src),
	}, nil
}

// Restore resumes a generator from a save.
func Restore(s SaveState) (*Generator, error) {
	if err := s.Params.Validate(); err != nil {
		return nil, err
	}
	src := &rand.PCG{}
	if err := src.UnmarshalBinary(s.RNG); err != nil {
		return nil, fmt.Errorf("%w: rng state: %w", ErrInvalidParams, err)
	}
	return &Generator{
		params:        s.Params,
		speed:         s.Speed,
		direction:     s.Direction,
		speedRate:     s.SpeedRate,
		directionRate: s.DirectionRate,
		src:           src,
		rng:           rand.New(src),
	}, nil
}

// Save captures the generator.
func (g *Generator) Save() (SaveState, error) {
	state, err := g.src.MarshalBinary()
	if err != nil {
		return SaveState{}, fmt.Errorf("save rng: %w", err)
	}
	return SaveState{
		Params:        g.params,
		Speed:         g.speed,
		Direction:     g.direction,
		SpeedRate:     g.speedRate,
		DirectionRate: g.directionRate,
		RNG:           state,
	}, nil
}

// Step advances the wind by dt seconds.
func (g *Generator) Step(dt float64) {
	if dt <= 0 {
		return
	}
	p := g.params

	// Rates wander randomly, with a pull back toward the average speed so
	// gusts die out.
	g.speedRate += (g.rng.Float64()*2 - 1) * p.MaxSpeedVariation * dt
	g.speedRate -= (g.speed - p.SpeedAverage) * 0.1 * dt
	g.directionRate += (g.rng.Float64()*2 - 1) * p.MaxDirectionVariation * dt
	g.directionRate *= math.Max(0, 1-0.1*dt)

	g.speed += g.speedRate * dt
	if ceiling := p.SpeedAverage + p.MaxGust; g.speed > ceiling {
		g.speed, g.speedRate = ceiling, 0
	}
	if g.speed < 0 {
		g.speed, g.speedRate = 0, 0
	}
	g.direction = normalizeDegrees(g.direction + g.directionRate*dt)
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Speed returns the current speed, m/s.
func (g *Generator) Speed() float64 { return g.speed }

// Direction returns where the wind blows toward, degrees in [0, 360).
func (g *Generator) Direction() float64 { return g.direction }

// Vector returns the current true wind, world frame, m/s.
func (g *Generator) Vector() physics.Vec2 {
	return physics.V2(g.speed, 0).Rotate(g.direction * math.Pi / 180)
}
