package dataset

import (
	"math"
)

// StereoCamera holds the pinhole intrinsics and stereo geometry of a
// rectified camera pair
type StereoCamera struct {
	// Fx and Fy are the focal lengths in pixels
	Fx float64
	Fy float64
	// Cx and Cy are the principal point coordinates in pixels
	Cx float64
	Cy float64
	// BaselinePx is the stereo baseline expressed in pixels, the metric
	// baseline multiplied by Fx
	BaselinePx float64
	// Width and Height are the rectified image dimensions in pixels, zero
	// when the calibration source does not state them
	Width  int
	Height int
}

// Baseline returns the metric stereo baseline in meters
func (c StereoCamera) Baseline() float64 {

	if c.Fx == 0 {
		return 0
	}

	return c.BaselinePx / c.Fx
}

// Scaled returns a copy of the calibration adjusted for images resized by
// the given factor
func (c StereoCamera) Scaled(scale float64) StereoCamera {

	c.Fx *= scale
	c.Fy *= scale
	c.Cx *= scale
	c.Cy *= scale
	c.BaselinePx *= scale
	c.Width = int(math.Round(float64(c.Width) * scale))
	c.Height = int(math.Round(float64(c.Height) * scale))

	return c
}

// Depth converts a disparity in pixels to metric depth.  Disparities of
// zero or less return +Inf, matching a point at infinity.
func (c StereoCamera) Depth(disparity float64) float64 {

	if disparity <= 0 {
		return math.Inf(1)
	}

	return c.BaselinePx / disparity
}

// Project maps a camera frame point at metric depth z to pixel coordinates
func (c StereoCamera) Project(x, y, z float64) (u, v float64) {
	return c.Fx*x/z + c.Cx, c.Fy*y/z + c.Cy
}

// Unproject maps pixel coordinates at metric depth z back into the camera
// frame
func (c StereoCamera) Unproject(u, v, z float64) (x, y float64) {
	return (u - c.Cx) * z / c.Fx, (v - c.Cy) * z / c.Fy
}

// Disparity converts a metric depth to a disparity in pixels.  Depths of
// zero or less return +Inf.
func (c StereoCamera) Disparity(depth float64) float64 {

	if depth <= 0 {
		return math.Inf(1)
	}

	return c.BaselinePx / depth
}
