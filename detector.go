package kittiklt

import (
	"github.com/swdee/go-kittiklt/tracker"
	"gocv.io/x/gocv"
	"image"
)

// FeatureDetector finds candidate feature points in a grayscale image.  The
// mask follows the OpenCV convention where a zero valued pixel forbids
// placing a feature there, and an empty Mat leaves the whole image open.
type FeatureDetector interface {
	Detect(img, mask gocv.Mat) []tracker.Point
}

// GFTTDetector finds corners using the Shi-Tomasi good features to track
// criterion
type GFTTDetector struct {
	// MaxCorners is the maximum number of corners to return
	MaxCorners int
	// Quality is the minimal accepted corner quality relative to the best
	// corner found in the image
	Quality float64
	// MinDist is the minimum euclidean distance between returned corners
	MinDist float64
	// Subpixel refines corner locations to subpixel accuracy
	Subpixel bool
}

// NewGFTTDetector returns a Shi-Tomasi corner detector with the default
// parameters
func NewGFTTDetector() *GFTTDetector {
	return &GFTTDetector{
		MaxCorners: 1200,
		Quality:    0.01,
		MinDist:    10,
	}
}

// Detect finds corners in img, dropping any the mask forbids
func (d *GFTTDetector) Detect(img, mask gocv.Mat) []tracker.Point {

	corners := gocv.NewMat()
	defer corners.Close()

	gocv.GoodFeaturesToTrack(img, &corners, d.MaxCorners, d.Quality, d.MinDist)

	if corners.Empty() {
		return nil
	}

	if d.Subpixel {
		criteria := gocv.NewTermCriteria(gocv.Count|gocv.EPS, 30, 0.01)
		gocv.CornerSubPix(img, &corners, image.Pt(5, 5), image.Pt(-1, -1),
			criteria)
	}

	return filterByMask(pointsFromMat(corners), mask)
}

// FASTDetector finds corners using the FAST feature detector.  Call Close
// to free the underlying detector when done.
type FASTDetector struct {
	fast gocv.FastFeatureDetector
}

// NewFASTDetector returns a FAST corner detector with the given intensity
// threshold.  Nonmax suppression is enabled so clustered responses collapse
// to their strongest corner.
func NewFASTDetector(threshold int) *FASTDetector {
	return &FASTDetector{
		fast: gocv.NewFastFeatureDetectorWithParams(threshold, true,
			gocv.FastFeatureDetectorType916),
	}
}

// Close frees the underlying detector
func (d *FASTDetector) Close() error {
	return d.fast.Close()
}

// Detect finds corners in img, dropping any the mask forbids
func (d *FASTDetector) Detect(img, mask gocv.Mat) []tracker.Point {

	kps := d.fast.Detect(img)

	pts := make([]tracker.Point, 0, len(kps))

	for _, kp := range kps {
		pts = append(pts, tracker.Point{X: float32(kp.X), Y: float32(kp.Y)})
	}

	return filterByMask(pts, mask)
}
