package kittiklt

import (
	"github.com/swdee/go-kittiklt/tracker"
	"gocv.io/x/gocv"
	"image"
	"math"
)

// OpticalFlow propagates a set of points from one frame into the next.  The
// returned points are parallel to pts, and valid flags which propagations
// succeeded.  A false entry folds flow failure, a failed forward-backward
// consistency check, and the point leaving the image into a single
// propagation failure, so callers never need to distinguish them.
type OpticalFlow interface {
	Track(prev, next gocv.Mat, pts []tracker.Point) (moved []tracker.Point, valid []bool)
}

// LKTracker estimates sparse optical flow with the pyramidal Lucas-Kanade
// method, optionally verifying each match by flowing it back to the
// previous frame and checking it lands near its origin
type LKTracker struct {
	// WinSize is the search window size at each pyramid level
	WinSize image.Point
	// MaxLevel is the number of image pyramid levels
	MaxLevel int
	// FBCheck enables the forward-backward consistency check
	FBCheck bool
	// FBThreshold is the largest distance in pixels a point may drift when
	// flowed forward then backward before it is rejected
	FBThreshold float32
}

// NewLKTracker returns a Lucas-Kanade flow tracker with the default
// parameters and the forward-backward check enabled
func NewLKTracker() *LKTracker {
	return &LKTracker{
		WinSize:     image.Pt(21, 21),
		MaxLevel:    4,
		FBCheck:     true,
		FBThreshold: 1.0,
	}
}

// Track propagates pts from prev into next
func (lk *LKTracker) Track(prev, next gocv.Mat, pts []tracker.Point) ([]tracker.Point, []bool) {

	if len(pts) == 0 {
		return nil, nil
	}

	prevPts := matFromPoints(pts)
	defer prevPts.Close()

	nextPts := gocv.NewMat()
	defer nextPts.Close()

	status := gocv.NewMat()
	defer status.Close()

	errs := gocv.NewMat()
	defer errs.Close()

	criteria := gocv.NewTermCriteria(gocv.Count|gocv.EPS, 30, 0.01)

	gocv.CalcOpticalFlowPyrLKWithParams(prev, next, prevPts, nextPts,
		&status, &errs, lk.WinSize, lk.MaxLevel, criteria, 0, 1e-4)

	moved := pointsFromMat(nextPts)
	valid := make([]bool, len(pts))

	for i := range pts {
		valid[i] = i < len(moved) && i < status.Rows() &&
			status.GetUCharAt(i, 0) == 1 &&
			finiteWithinBounds(moved[i], next.Cols(), next.Rows())
	}

	if lk.FBCheck {
		lk.checkBackward(prev, next, nextPts, pts, valid)
	}

	return moved, valid
}

// checkBackward flows the propagated points back into prev and clears the
// valid flag of any that fail to land within FBThreshold of their origin
func (lk *LKTracker) checkBackward(prev, next, nextPts gocv.Mat,
	orig []tracker.Point, valid []bool) {

	backPts := gocv.NewMat()
	defer backPts.Close()

	status := gocv.NewMat()
	defer status.Close()

	errs := gocv.NewMat()
	defer errs.Close()

	criteria := gocv.NewTermCriteria(gocv.Count|gocv.EPS, 30, 0.01)

	gocv.CalcOpticalFlowPyrLKWithParams(next, prev, nextPts, backPts,
		&status, &errs, lk.WinSize, lk.MaxLevel, criteria, 0, 1e-4)

	back := pointsFromMat(backPts)

	for i := range valid {

		if !valid[i] {
			continue
		}

		if i >= len(back) || i >= status.Rows() ||
			status.GetUCharAt(i, 0) != 1 {
			valid[i] = false
			continue
		}

		dx := math.Abs(float64(back[i].X - orig[i].X))
		dy := math.Abs(float64(back[i].Y - orig[i].Y))

		if math.Max(dx, dy) > float64(lk.FBThreshold) {
			valid[i] = false
		}
	}
}
