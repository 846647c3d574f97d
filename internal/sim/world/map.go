package world

import (
	"errors"
	"fmt"

	"github.com/zeusync/sailsim/internal/core/models"
	"github.com/zeusync/sailsim/internal/core/systems/physics"
)

var ErrInvalidMap = errors.New("invalid map")

// DefaultEndRadius is how close a boat must get to the end point to finish.
const DefaultEndRadius = 10.0

// Label names a landmass and marks where to draw the name.
type Label struct {
	Name string       `json:"name" yaml:"name"`
	At   physics.Vec2 `json:"at" yaml:"at"`
}

// Landmass is a polygon of land. The coastline need not repeat its first
// point at the end.
type Landmass struct {
	Coastline []physics.Vec2 `json:"coastline" yaml:"coastline"`
	Label     *Label         `json:"label,omitempty" yaml:"label,omitempty"`
	// RGBA, overrides the default land color when set.
	Color [4]uint8 `json:"color" yaml:"color"`
}

func (l Landmass) Clone() Landmass {
	out := l
	out.Coastline = append([]physics.Vec2(nil), l.Coastline...)
	if l.Label != nil {
		label := *l.Label
		out.Label = &label
	}
	return out
}

// Contains reports whether p is inside the coastline, by the even-odd rule.
func (l Landmass) Contains(p physics.Vec2) bool {
	n := len(l.Coastline)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := l.Coastline[i], l.Coastline[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// Map is the read-only course a simulation runs on.
type Map struct {
	Name       string                    `json:"name" yaml:"name"`
	Size       [2]int                    `json:"size" yaml:"size"`
	Start      physics.Vec2              `json:"start" yaml:"start"`
	End        physics.Vec2              `json:"end" yaml:"end"`
	EndRadius  float64                   `json:"end_radius,omitempty" yaml:"end_radius,omitempty"`
	Landmasses models.Dataset[Landmass] `json:"landmasses" yaml:"landmasses"`
}

func (m *Map) Validate() error {
	if m.Size[0] <= 0 || m.Size[1] <= 0 {
		return fmt.Errorf("%w: size must be positive, got %v", ErrInvalidMap, m.Size)
	}
	if !m.Start.IsFinite() || !m.End.IsFinite() {
		return fmt.Errorf("%w: start and end must be finite", ErrInvalidMap)
	}
	if m.EndRadius < 0 {
		return fmt.Errorf("%w: end_radius must be non-negative", ErrInvalidMap)
	}
	if err := m.Landmasses.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}
	for ref, land := range m.Landmasses.All() {
		if len(land.Coastline) < 3 {
			return fmt.Errorf("%w: landmass %s needs at least 3 points", ErrInvalidMap, ref)
		}
	}
	if ref, ok := m.LandAt(m.Start); ok {
		return fmt.Errorf("%w: start is on landmass %s", ErrInvalidMap, ref)
	}
	return nil
}

// LandAt returns the first landmass containing p.
func (m *Map) LandAt(p physics.Vec2) (models.Ref[Landmass], bool) {
	for ref, land := range m.Landmasses.All() {
		if land.Contains(p) {
			return ref, true
		}
	}
	return models.Ref[Landmass]{}, false
}

func (m *Map) OnLand(p physics.Vec2) bool {
	_, ok := m.LandAt(p)
	return ok
}

// Finished reports whether p is within the end radius of the end point.
func (m *Map) Finished(p physics.Vec2) bool {
	r := m.EndRadius
	if r == 0 {
		r = DefaultEndRadius
	}
	return physics.Distance2(p, m.End) <= r
}

// InBounds reports whether p lies within the map rectangle anchored at the
// origin.
func (m *Map) InBounds(p physics.Vec2) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= float64(m.Size[0]) && p.Y <= float64(m.Size[1])
}
