package bt

import "math"

// Vec3 is a position or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) LenSq() float64 { return v.Dot(v) }

func (v Vec3) Len() float64 { return math.Sqrt(v.LenSq()) }

func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Len() }

// Normalize returns the unit vector of v, or the zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Angle returns the angle between v and o in degrees.
func (v Vec3) Angle(o Vec3) float64 {
	d := v.Len() * o.Len()
	if d == 0 {
		return 0
	}
	c := math.Max(-1, math.Min(1, v.Dot(o)/d))
	return math.Acos(c) * 180 / math.Pi
}

// Near reports whether v and o are within eps of each other.
func (v Vec3) Near(o Vec3, eps float64) bool {
	return v.Sub(o).LenSq() <= eps*eps
}
