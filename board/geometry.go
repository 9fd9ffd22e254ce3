// board/geometry.go
package board

// PointInPolygon reports whether p lies inside the polygon using the
// ray-casting rule. Vertices are taken in order; the polygon closes itself.
func PointInPolygon(p Coord, polygon []Coord) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// SegmentTouchesPolygon reports whether the straight move from a to b touches
// the polygon region. The test is the ray-cast on either endpoint: a move
// whose start or landing point falls inside a branch region counts as
// entering it even when it does not land on the registered coordinate.
func SegmentTouchesPolygon(a, b Coord, polygon []Coord) bool {
	return PointInPolygon(a, polygon) || PointInPolygon(b, polygon)
}
