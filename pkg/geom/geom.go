package geom

import "math"

// Epsilon is the tolerance below which two segments are treated as parallel
// and below which a vector is treated as zero-length.
const Epsilon = 1e-9

// Point is a position in world space. Y is elevation; plan-view (top-down)
// calculations use X and Z only.
type Point struct {
	X float64
	Y float64
	Z float64
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s, Z: p.Z * s}
}

// Dot returns the 3D dot product of p and q.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Length returns the 3D magnitude of p.
func (p Point) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Normalized returns p scaled to unit length. A zero-length input is
// returned unchanged.
func (p Point) Normalized() Point {
	l := p.Length()
	if l < Epsilon {
		return p
	}
	return p.Scale(1.0 / l)
}

// Distance returns the 3D distance between a and b.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PlanDistance returns the top-down (XZ plane) distance between a and b,
// ignoring elevation.
func PlanDistance(a, b Point) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Lerp linearly interpolates between a and b by t. t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpPoint linearly interpolates between points a and b by t.
func LerpPoint(a, b Point, t float64) Point {
	return Point{
		X: Lerp(a.X, b.X, t),
		Y: Lerp(a.Y, b.Y, t),
		Z: Lerp(a.Z, b.Z, t),
	}
}

// SegmentIntersection2D computes the plan-view intersection of segments
// p1-p2 and p3-p4 using the parametric form
//
//	ua = ((x4-x3)(z1-z3) - (z4-z3)(x1-x3)) / d
//	ub = ((x2-x1)(z1-z3) - (z2-z1)(x1-x3)) / d
//	d  = (z4-z3)(x2-x1) - (x4-x3)(z2-z1)
//
// Parallel segments (|d| < Epsilon) never intersect. The returned point's
// elevation is the average of the four endpoint elevations, which flattens
// near-planar road crossings onto a single junction height.
func SegmentIntersection2D(p1, p2, p3, p4 Point) (Point, bool) {
	d := (p4.Z-p3.Z)*(p2.X-p1.X) - (p4.X-p3.X)*(p2.Z-p1.Z)
	if math.Abs(d) < Epsilon {
		return Point{}, false
	}

	ua := ((p4.X-p3.X)*(p1.Z-p3.Z) - (p4.Z-p3.Z)*(p1.X-p3.X)) / d
	ub := ((p2.X-p1.X)*(p1.Z-p3.Z) - (p2.Z-p1.Z)*(p1.X-p3.X)) / d

	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return Point{}, false
	}

	return Point{
		X: p1.X + ua*(p2.X-p1.X),
		Y: (p1.Y + p2.Y + p3.Y + p4.Y) / 4.0,
		Z: p1.Z + ua*(p2.Z-p1.Z),
	}, true
}

// PerpendicularDistance2D returns the plan-view distance from p to the
// segment a-b. Points beyond either endpoint measure to that endpoint.
func PerpendicularDistance2D(p, a, b Point) float64 {
	abx := b.X - a.X
	abz := b.Z - a.Z
	lenSq := abx*abx + abz*abz
	if lenSq < Epsilon {
		return PlanDistance(p, a)
	}

	t := ((p.X-a.X)*abx + (p.Z-a.Z)*abz) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := Point{X: a.X + t*abx, Z: a.Z + t*abz}
	return PlanDistance(p, closest)
}

// PolylineLength returns the sum of consecutive point distances. Fewer than
// two points yields zero.
func PolylineLength(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}
