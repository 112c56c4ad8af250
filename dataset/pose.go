package dataset

import (
	"bufio"
	"fmt"
	"gonum.org/v1/gonum/mat"
	"os"
	"strconv"
	"strings"
)

// RigidTransform represents a rigid body motion as a 4x4 homogeneous
// transform matrix
type RigidTransform struct {
	m *mat.Dense
}

// NewRigidTransform returns the identity transform
func NewRigidTransform() *RigidTransform {

	m := mat.NewDense(4, 4, nil)

	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}

	return &RigidTransform{m: m}
}

// RigidTransformFromRows builds a transform from the top three rows of the
// matrix in row major order, the twelve value format KITTI pose files use
func RigidTransformFromRows(vals []float64) (*RigidTransform, error) {

	if len(vals) != 12 {
		return nil, fmt.Errorf("expected 12 pose values, got %d", len(vals))
	}

	m := mat.NewDense(4, 4, nil)

	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			m.Set(r, c, vals[r*4+c])
		}
	}

	m.Set(3, 3, 1)

	return &RigidTransform{m: m}, nil
}

// Matrix returns the underlying 4x4 matrix.  It is shared, not copied, and
// must be treated as read only.
func (t *RigidTransform) Matrix() *mat.Dense {
	return t.m
}

// Rows returns the top three matrix rows in row major order, the inverse of
// RigidTransformFromRows
func (t *RigidTransform) Rows() []float64 {

	out := make([]float64, 0, 12)

	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			out = append(out, t.m.At(r, c))
		}
	}

	return out
}

// Translation returns the translation component
func (t *RigidTransform) Translation() (x, y, z float64) {
	return t.m.At(0, 3), t.m.At(1, 3), t.m.At(2, 3)
}

// Mul returns the composed transform t then o applied from the right
func (t *RigidTransform) Mul(o *RigidTransform) *RigidTransform {

	m := mat.NewDense(4, 4, nil)
	m.Mul(t.m, o.m)

	return &RigidTransform{m: m}
}

// Inverse returns the inverse transform, using the transposed rotation and
// counter rotated translation rather than a general matrix inversion
func (t *RigidTransform) Inverse() *RigidTransform {

	m := mat.NewDense(4, 4, nil)

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.Set(r, c, t.m.At(c, r))
		}
	}

	x, y, z := t.Translation()

	for r := 0; r < 3; r++ {
		m.Set(r, 3, -(m.At(r, 0)*x + m.At(r, 1)*y + m.At(r, 2)*z))
	}

	m.Set(3, 3, 1)

	return &RigidTransform{m: m}
}

// Apply transforms the point x, y, z
func (t *RigidTransform) Apply(x, y, z float64) (float64, float64, float64) {

	return t.m.At(0, 0)*x + t.m.At(0, 1)*y + t.m.At(0, 2)*z + t.m.At(0, 3),
		t.m.At(1, 0)*x + t.m.At(1, 1)*y + t.m.At(1, 2)*z + t.m.At(1, 3),
		t.m.At(2, 0)*x + t.m.At(2, 1)*y + t.m.At(2, 2)*z + t.m.At(2, 3)
}

// ReadPoses loads a KITTI pose file, one transform per line as twelve
// space separated values
func ReadPoses(path string) ([]*RigidTransform, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("opening poses: %w", err)
	}

	defer f.Close()

	var poses []*RigidTransform

	scanner := bufio.NewScanner(f)

	for scanner.Scan() {

		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		vals := make([]float64, len(fields))

		for i, field := range fields {

			v, err := strconv.ParseFloat(field, 64)

			if err != nil {
				return nil, fmt.Errorf("pose line %d: %w", len(poses)+1, err)
			}

			vals[i] = v
		}

		pose, err := RigidTransformFromRows(vals)

		if err != nil {
			return nil, fmt.Errorf("pose line %d: %w", len(poses)+1, err)
		}

		poses = append(poses, pose)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading poses: %w", err)
	}

	return poses, nil
}

// FormatPoses renders poses in the KITTI pose file format, twelve values
// per line joined with CRLF line endings
func FormatPoses(poses []*RigidTransform) string {

	lines := make([]string, 0, len(poses))

	for _, pose := range poses {

		vals := pose.Rows()
		fields := make([]string, len(vals))

		for i, v := range vals {
			fields[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}

		lines = append(lines, strings.Join(fields, " "))
	}

	return strings.Join(lines, "\r\n")
}

// WritePoses writes poses to path in the KITTI pose file format
func WritePoses(path string, poses []*RigidTransform) error {

	if err := os.WriteFile(path, []byte(FormatPoses(poses)), 0644); err != nil {
		return fmt.Errorf("writing poses: %w", err)
	}

	return nil
}

// PosesToMatrix stacks poses into an N by 12 matrix with one flattened
// transform per row.  An empty pose list returns nil.
func PosesToMatrix(poses []*RigidTransform) *mat.Dense {

	if len(poses) == 0 {
		return nil
	}

	data := make([]float64, 0, len(poses)*12)

	for _, pose := range poses {
		data = append(data, pose.Rows()...)
	}

	return mat.NewDense(len(poses), 12, data)
}
