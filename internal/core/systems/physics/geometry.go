package physics

import (
	"encoding/json"
	"math"
	"math/cmplx"

	"gopkg.in/yaml.v3"
)

// Vec2 is a 2D vector in world or body units.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func V2(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2    { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Dot(o Vec2) float64      { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Cross(o Vec2) float64    { return v.X*o.Y - v.Y*o.X }
func (v Vec2) Len() float64            { return math.Hypot(v.X, v.Y) }
func (v Vec2) Mean(o Vec2) Vec2        { return v.Add(o).Scale(0.5) }
func (v Vec2) Angle() float64          { return math.Atan2(v.Y, v.X) }
func (v Vec2) IsFinite() bool          { return isFinite(v.X) && isFinite(v.Y) }
func (v Vec2) Rotate(a float64) Vec2   { return v.RotateBy(cmplx.Rect(1, a)) }
func (v Vec2) Unrotate(a float64) Vec2 { return v.RotateBy(cmplx.Rect(1, -a)) }

// RotateBy multiplies v, seen as a complex number, by r.
func (v Vec2) RotateBy(r complex128) Vec2 {
	c := complex(v.X, v.Y) * r
	return Vec2{real(c), imag(c)}
}

// ClampLen scales v down so its length does not exceed limit.
func (v Vec2) ClampLen(limit float64) Vec2 {
	l := v.Len()
	if l <= limit || l == 0 {
		return v
	}
	return v.Scale(limit / l)
}

// Iso is a 2D rigid transform: translation plus rotation. The rotation is
// kept as a complex number; it is unit length when built with NewIso but is
// not renormalized after AverageIso, so read the heading with Angle.
type Iso struct {
	Translation Vec2
	Rotation    complex128
}

// NewIso returns the transform translating by (x, y) and rotating by angle
// radians.
func NewIso(x, y, angle float64) Iso {
	return Iso{Translation: V2(x, y), Rotation: cmplx.Rect(1, angle)}
}

// Angle returns the rotation angle in radians, in (-π, π].
func (i Iso) Angle() float64 { return cmplx.Phase(i.Rotation) }

// Rotate turns the transform by angle radians, keeping the rotation's length.
func (i Iso) Rotate(angle float64) Iso {
	i.Rotation *= cmplx.Rect(1, angle)
	return i
}

// Normalized returns the transform with a unit-length rotation. A zero
// rotation, whose angle is undefined, becomes the identity rotation.
func (i Iso) Normalized() Iso {
	if m := cmplx.Abs(i.Rotation); m > 0 && !math.IsInf(m, 0) {
		i.Rotation /= complex(m, 0)
	} else {
		i.Rotation = cmplx.Rect(1, i.Angle())
	}
	return i
}

// Apply maps a body-frame point into the world frame.
func (i Iso) Apply(p Vec2) Vec2 {
	return p.Rotate(i.Angle()).Add(i.Translation)
}

// AverageIso averages two transforms: the translation is the vector mean and
// the rotation is the plain sum of both complex rotations, without
// renormalization. Opposite rotations sum to zero and have no defined angle.
func AverageIso(a, b Iso) Iso {
	return Iso{
		Translation: a.Translation.Mean(b.Translation),
		Rotation:    a.Rotation + b.Rotation,
	}
}

type isoWire struct {
	Translation Vec2       `json:"translation" yaml:"translation"`
	Rotation    [2]float64 `json:"rotation" yaml:"rotation,flow"`
}

func (i Iso) wire() isoWire {
	return isoWire{Translation: i.Translation, Rotation: [2]float64{real(i.Rotation), imag(i.Rotation)}}
}

func (i *Iso) fromWire(w isoWire) {
	i.Translation = w.Translation
	i.Rotation = complex(w.Rotation[0], w.Rotation[1])
}

func (i Iso) MarshalJSON() ([]byte, error) { return json.Marshal(i.wire()) }

func (i *Iso) UnmarshalJSON(data []byte) error {
	var w isoWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	i.fromWire(w)
	return nil
}

func (i Iso) MarshalYAML() (any, error) { return i.wire(), nil }

func (i *Iso) UnmarshalYAML(node *yaml.Node) error {
	var w isoWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	i.fromWire(w)
	return nil
}

// Distance2 computes Euclidean distance between two 2D points.
func Distance2(a, b Vec2) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Mean returns the arithmetic mean of two scalars.
func Mean(a, b float64) float64 { return (a + b) / 2 }

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
