package common

import (
	"math"
)

// Clamp limits v to the closed range [lo, hi].
// NaN inputs are returned as lo so callers never propagate a non-finite weight.
//
// Parameters:
//   - v: the value to clamp
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - float32: v limited to [lo, hi]
func Clamp(v, lo, hi float32) float32 {
	if v != v {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates from a toward b by t.
//
// Parameters:
//   - a: the start value (t = 0)
//   - b: the end value (t = 1)
//   - t: the interpolation factor
//
// Returns:
//   - float32: a + (b-a)*t
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// LerpVec3 linearly interpolates each component of a toward b by t.
//
// Parameters:
//   - a: the start vector (t = 0)
//   - b: the end vector (t = 1)
//   - t: the interpolation factor
//
// Returns:
//   - [3]float32: the interpolated vector
func LerpVec3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		Lerp(a[0], b[0], t),
		Lerp(a[1], b[1], t),
		Lerp(a[2], b[2], t),
	}
}

// NormalizeQuat returns q scaled to unit length.
// A zero-length quaternion is returned as the identity rotation.
//
// Parameters:
//   - q: the quaternion (x, y, z, w)
//
// Returns:
//   - [4]float32: the normalized quaternion
func NormalizeQuat(q [4]float32) [4]float32 {
	l := float32(math.Sqrt(float64(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])))
	if l < 1e-8 {
		return [4]float32{0, 0, 0, 1}
	}
	inv := 1 / l
	return [4]float32{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

// NlerpQuat interpolates between two rotations along the shortest arc using
// normalized linear interpolation. The result is exactly a at t = 0 and the
// (sign-corrected) b at t = 1.
//
// Parameters:
//   - a: the start rotation (x, y, z, w)
//   - b: the end rotation (x, y, z, w)
//   - t: the interpolation factor in [0, 1]
//
// Returns:
//   - [4]float32: the interpolated unit quaternion
func NlerpQuat(a, b [4]float32, t float32) [4]float32 {
	if t <= 0 {
		return a
	}
	// q and -q encode the same rotation; flip b onto a's hemisphere.
	if a[0]*b[0]+a[1]*b[1]+a[2]*b[2]+a[3]*b[3] < 0 {
		b = [4]float32{-b[0], -b[1], -b[2], -b[3]}
	}
	if t >= 1 {
		return b
	}
	return NormalizeQuat([4]float32{
		Lerp(a[0], b[0], t),
		Lerp(a[1], b[1], t),
		Lerp(a[2], b[2], t),
		Lerp(a[3], b[3], t),
	})
}

// WrapTime maps t into [0, period) for looping playback.
// A non-positive period returns t unchanged.
//
// Parameters:
//   - t: the time to wrap, may be negative
//   - period: the loop length
//
// Returns:
//   - float32: the wrapped time
func WrapTime(t, period float32) float32 {
	if period <= 0 {
		return t
	}
	w := float32(math.Mod(float64(t), float64(period)))
	if w < 0 {
		w += period
	}
	return w
}
