package dataset

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"math"
	"os"
	"strconv"
	"strings"
)

// Metric constants of the odometry benchmark recording platform
const (
	// Baseline is the stereo baseline in meters
	Baseline = 0.5371
	// VeloToCam is the distance in meters the velodyne scanner sits behind
	// camera 0 along the x forward axis
	VeloToCam = 0.27
)

// Odometry benchmark calibrations, grouped by the sequences sharing a
// recording platform setup
var (
	odomCalib0002 = StereoCamera{
		Fx: 718.86, Fy: 718.86, Cx: 607.19, Cy: 185.22,
		BaselinePx: 386.1448, Width: 1241, Height: 376,
	}
	odomCalib03 = StereoCamera{
		Fx: 721.5377, Fy: 721.5377, Cx: 609.5593, Cy: 172.854,
		BaselinePx: 387.5744, Width: 1241, Height: 376,
	}
	odomCalib0412 = StereoCamera{
		Fx: 707.0912, Fy: 707.0912, Cx: 601.8873, Cy: 183.1104,
		BaselinePx: 379.8145, Width: 1241, Height: 376,
	}
)

// OdometryCalib returns the stereo calibration of an odometry benchmark
// sequence.  Sequences 0 through 12 are known, anything else returns an
// error.
func OdometryCalib(sequence int) (StereoCamera, error) {

	switch {
	case sequence >= 0 && sequence <= 2:
		return odomCalib0002, nil
	case sequence == 3:
		return odomCalib03, nil
	case sequence >= 4 && sequence <= 12:
		return odomCalib0412, nil
	}

	return StereoCamera{}, fmt.Errorf("no stereo calibration for sequence %d",
		sequence)
}

// ParseCalib reads a KITTI calibration file into its raw key to value
// form.  Calibration files are flat "name: values" mappings, one per line,
// which parse as a single level YAML document.
func ParseCalib(path string) (map[string]string, error) {

	buf, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("reading calibration: %w", err)
	}

	calib := make(map[string]string)

	if err := yaml.Unmarshal(buf, &calib); err != nil {
		return nil, fmt.Errorf("parsing calibration %s: %w", path, err)
	}

	return calib, nil
}

// CalibMatrix extracts a named entry from a parsed calibration as a float
// vector
func CalibMatrix(calib map[string]string, name string) ([]float64, error) {

	line, ok := calib[name]

	if !ok {
		return nil, fmt.Errorf("calibration has no %s entry", name)
	}

	fields := strings.Fields(line)
	vals := make([]float64, len(fields))

	for i, f := range fields {

		v, err := strconv.ParseFloat(f, 64)

		if err != nil {
			return nil, fmt.Errorf("calibration entry %s: %w", name, err)
		}

		vals[i] = v
	}

	return vals, nil
}

// StereoCalibFromProjections builds a stereo calibration from the left and
// right 3x4 projection matrices of a rectified pair, such as the P0/P1 or
// P2/P3 entries of a KITTI calibration file.  The baseline is recovered
// from the right projection's horizontal offset.
func StereoCalibFromProjections(left, right []float64) (StereoCamera, error) {

	if len(left) < 12 || len(right) < 12 {
		return StereoCamera{}, fmt.Errorf("projection matrices need 12 values, got %d and %d",
			len(left), len(right))
	}

	return StereoCamera{
		Fx:         left[0],
		Fy:         left[0],
		Cx:         left[2],
		Cy:         left[6],
		BaselinePx: math.Abs(right[3]),
	}, nil
}
