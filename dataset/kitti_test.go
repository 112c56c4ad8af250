package dataset

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// buildOdometryTree lays out a miniature odometry benchmark with three
// stereo frames, two velodyne scans and a pose file for sequence 04
func buildOdometryTree(t *testing.T, withPoses bool) string {
	t.Helper()

	root := t.TempDir()
	seqDir := filepath.Join(root, "sequences", "04")

	for i := 0; i < 3; i++ {
		writeGrayPNG(t, filepath.Join(seqDir, "image_0",
			fmt.Sprintf("%06d.png", i)), 16, 8, uint8(10*i))
		writeGrayPNG(t, filepath.Join(seqDir, "image_1",
			fmt.Sprintf("%06d.png", i)), 16, 8, uint8(10*i+5))
	}

	for i := 0; i < 2; i++ {

		scan := []VeloPoint{{X: float32(i), Y: 1, Z: 2, Reflectance: 0.5}}
		path := filepath.Join(seqDir, "velodyne", fmt.Sprintf("%06d.bin", i))

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := WriteVelodyne(path, scan); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if !withPoses {
		return root
	}

	poses := make([]*RigidTransform, 3)

	for i := range poses {

		pose, err := RigidTransformFromRows([]float64{
			1, 0, 0, float64(i),
			0, 1, 0, 0,
			0, 0, 1, 0,
		})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		poses[i] = pose
	}

	poseDir := filepath.Join(root, "poses")

	if err := os.MkdirAll(poseDir, 0755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := WritePoses(filepath.Join(poseDir, "04.txt"), poses); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return root
}

func TestKITTIReaderFrames(t *testing.T) {

	root := buildOdometryTree(t, true)

	r, err := NewKITTIReader(KITTIConfig{Directory: root, Sequence: "04"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Calib.Fx != 707.0912 {
		t.Errorf("expected sequence 04 calibration fx 707.0912, got %v",
			r.Calib.Fx)
	}

	if len(r.Poses()) != 3 {
		t.Fatalf("expected 3 poses, got %d", len(r.Poses()))
	}

	for i := 0; i < 3; i++ {

		frame, err := r.NextFrame()

		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}

		if frame.Index != i {
			t.Errorf("expected frame index %d, got %d", i, frame.Index)
		}

		if frame.Left.Cols() != 16 || frame.Right.Cols() != 16 {
			t.Errorf("frame %d: expected 16 pixel wide pair, got %d and %d",
				i, frame.Left.Cols(), frame.Right.Cols())
		}

		if frame.Pose == nil {
			t.Fatalf("frame %d: expected a pose", i)
		}

		if x, _, _ := frame.Pose.Translation(); x != float64(i) {
			t.Errorf("frame %d: expected pose translation x %d, got %v",
				i, i, x)
		}

		frame.Close()
	}

	if _, err := r.NextFrame(); err != io.EOF {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

func TestKITTIReaderVelodyne(t *testing.T) {

	root := buildOdometryTree(t, true)

	r, err := NewKITTIReader(KITTIConfig{Directory: root, Sequence: "04"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 2; i++ {

		scan, err := r.NextVelodyne()

		if err != nil {
			t.Fatalf("scan %d: unexpected error: %v", i, err)
		}

		if len(scan) != 1 || scan[0].X != float32(i) {
			t.Errorf("scan %d: expected single point with x %d, got %+v",
				i, i, scan)
		}
	}

	if _, err := r.NextVelodyne(); err != io.EOF {
		t.Errorf("expected io.EOF after last scan, got %v", err)
	}
}

func TestKITTIReaderMissingPoses(t *testing.T) {

	root := buildOdometryTree(t, false)

	r, err := NewKITTIReader(KITTIConfig{Directory: root, Sequence: "04"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Poses() != nil {
		t.Errorf("expected nil poses for sequence without ground truth")
	}

	frame, err := r.NextFrame()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer frame.Close()

	if frame.Pose != nil {
		t.Errorf("expected nil pose, got %+v", frame.Pose)
	}
}

func TestKITTIReaderBadSequence(t *testing.T) {

	root := buildOdometryTree(t, false)

	for _, sequence := range []string{"13", "99", "abc"} {
		if _, err := NewKITTIReader(KITTIConfig{Directory: root,
			Sequence: sequence}); err == nil {
			t.Errorf("sequence %q: expected error", sequence)
		}
	}
}

func TestKITTIReaderScale(t *testing.T) {

	root := buildOdometryTree(t, true)

	r, err := NewKITTIReader(KITTIConfig{
		Directory: root,
		Sequence:  "04",
		Scale:     0.5,
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(r.Calib.Fx-707.0912/2) > 1e-9 {
		t.Errorf("expected halved fx, got %v", r.Calib.Fx)
	}

	frame, err := r.NextFrame()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer frame.Close()

	if frame.Left.Cols() != 8 || frame.Left.Rows() != 4 {
		t.Errorf("expected 8x4 scaled frame, got %dx%d",
			frame.Left.Cols(), frame.Left.Rows())
	}
}

func TestKITTIReaderReset(t *testing.T) {

	root := buildOdometryTree(t, true)

	r, err := NewKITTIReader(KITTIConfig{Directory: root, Sequence: "04"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for {
		frame, err := r.NextFrame()
		if err != nil {
			break
		}
		frame.Close()
	}

	r.Reset()

	frame, err := r.NextFrame()

	if err != nil {
		t.Fatalf("expected frame after reset, got %v", err)
	}

	defer frame.Close()

	if frame.Index != 0 {
		t.Errorf("expected frame index 0 after reset, got %d", frame.Index)
	}
}
