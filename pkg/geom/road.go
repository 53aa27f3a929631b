package geom

// Road is an oriented road segment described by its centerline: a center
// position, a unit direction in the plan view, a total length and a width.
type Road struct {
	Center    Point
	Direction Point
	Length    float64
	Width     float64
}

// Start returns the centerline start point (center - direction * length/2).
func (r Road) Start() Point {
	return r.Center.Sub(r.Direction.Scale(r.Length / 2))
}

// End returns the centerline end point (center + direction * length/2).
func (r Road) End() Point {
	return r.Center.Add(r.Direction.Scale(r.Length / 2))
}

// IsDegenerate reports whether the road is too short or malformed to
// contribute geometry.
func (r Road) IsDegenerate() bool {
	return r.Length < Epsilon || r.Direction.Length() < Epsilon
}

// scaleAxisRatio is the factor by which one local scale axis must exceed the
// other before it is trusted as the road's primary direction.
const scaleAxisRatio = 1.5

// RoadFromTransform infers a Road from a placed transform: a world position,
// the transform's local right and forward axes, and its scale. The longer of
// the two scale axes wins as the primary direction when it exceeds the other
// by scaleAxisRatio; when the scale is ambiguous, the local axis more closely
// aligned with its corresponding world axis is chosen by dot-product
// comparison.
func RoadFromTransform(position, right, forward, scale Point) Road {
	right = right.Normalized()
	forward = forward.Normalized()

	var dir Point
	var length, width float64

	switch {
	case scale.X > scale.Z*scaleAxisRatio:
		dir, length, width = right, scale.X, scale.Z
	case scale.Z > scale.X*scaleAxisRatio:
		dir, length, width = forward, scale.Z, scale.X
	default:
		worldX := Point{X: 1}
		worldZ := Point{Z: 1}
		rightAligned := right.Dot(worldX)
		forwardAligned := forward.Dot(worldZ)
		if abs(rightAligned) >= abs(forwardAligned) {
			dir, length, width = right, scale.X, scale.Z
		} else {
			dir, length, width = forward, scale.Z, scale.X
		}
	}

	return Road{
		Center:    position,
		Direction: dir,
		Length:    length,
		Width:     width,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
