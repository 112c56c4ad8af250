package kittiklt

import (
	"github.com/swdee/go-kittiklt/tracker"
	"gocv.io/x/gocv"
	"math"
)

// matFromPoints packs points into the Nx1 two channel float Mat layout
// consumed by the OpenCV sparse optical flow and corner functions
func matFromPoints(pts []tracker.Point) gocv.Mat {

	m := gocv.NewMatWithSize(len(pts), 1, gocv.MatTypeCV32FC2)

	for i, pt := range pts {
		m.SetFloatAt(i, 0, pt.X)
		m.SetFloatAt(i, 1, pt.Y)
	}

	return m
}

// pointsFromMat unpacks an Nx1 two channel float Mat into points
func pointsFromMat(m gocv.Mat) []tracker.Point {

	if m.Empty() {
		return nil
	}

	pts := make([]tracker.Point, m.Rows())

	for i := range pts {
		pts[i] = tracker.Point{
			X: m.GetFloatAt(i, 0),
			Y: m.GetFloatAt(i, 1),
		}
	}

	return pts
}

// maskAllows reports whether the mask permits a feature at pt.  An empty
// mask permits everything, a zero valued mask pixel forbids placement, and
// points outside the mask bounds are always refused.
func maskAllows(mask gocv.Mat, pt tracker.Point) bool {

	if mask.Empty() {
		return true
	}

	x, y := int(pt.X), int(pt.Y)

	if x < 0 || y < 0 || x >= mask.Cols() || y >= mask.Rows() {
		return false
	}

	return mask.GetUCharAt(y, x) > 0
}

// filterByMask returns the points the mask permits, preserving order
func filterByMask(pts []tracker.Point, mask gocv.Mat) []tracker.Point {

	kept := make([]tracker.Point, 0, len(pts))

	for _, pt := range pts {
		if maskAllows(mask, pt) {
			kept = append(kept, pt)
		}
	}

	return kept
}

// finiteWithinBounds reports whether pt is a finite position inside a
// cols by rows image
func finiteWithinBounds(pt tracker.Point, cols, rows int) bool {

	x, y := float64(pt.X), float64(pt.Y)

	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return false
	}

	return x >= 0 && y >= 0 && x < float64(cols) && y < float64(rows)
}
