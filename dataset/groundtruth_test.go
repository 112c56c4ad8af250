package dataset

import (
	"gocv.io/x/gocv"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// buildGroundTruthTree lays out one frame of a stereo benchmark in either
// the 2012 or the 2015 naming.  The calibration file carries both P0/P1
// and P2/P3 pairs with different focal lengths so key selection is
// observable.
func buildGroundTruthTree(t *testing.T, benchmark2015 bool) string {
	t.Helper()

	root := t.TempDir()

	leftDir, rightDir := "image_0", "image_1"
	nocDir, occDir := "disp_noc", "disp_occ"

	if benchmark2015 {
		leftDir, rightDir = "image_2", "image_3"
		nocDir, occDir = "disp_noc_0", "disp_occ_0"
	}

	writeGrayPNG(t, filepath.Join(root, leftDir, "000000_10.png"), 32, 16, 100)
	writeGrayPNG(t, filepath.Join(root, rightDir, "000000_10.png"), 32, 16, 90)
	writeDisparityPNG(t, filepath.Join(root, nocDir, "000000_10.png"), 32, 16, 2)
	writeDisparityPNG(t, filepath.Join(root, occDir, "000000_10.png"), 32, 16, 3)

	calibDir := filepath.Join(root, "calib")

	if err := os.MkdirAll(calibDir, 0755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calib := "P0: 718.856 0 607.1928 0 0 718.856 185.2157 0 0 0 1 0\n" +
		"P1: 718.856 0 607.1928 -386.1448 0 718.856 185.2157 0 0 0 1 0\n" +
		"P2: 721.5377 0 609.5593 0 0 721.5377 172.854 0 0 0 1 0\n" +
		"P3: 721.5377 0 609.5593 -387.5744 0 721.5377 172.854 0 0 0 1 0\n"

	if err := os.WriteFile(filepath.Join(calibDir, "000000.txt"),
		[]byte(calib), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return root
}

func TestStereoGroundTruthReader(t *testing.T) {

	tests := []struct {
		name          string
		benchmark2015 bool
		fx            float64
		baselinePx    float64
	}{
		{name: "2012", benchmark2015: false, fx: 718.856, baselinePx: 386.1448},
		{name: "2015", benchmark2015: true, fx: 721.5377, baselinePx: 387.5744},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			root := buildGroundTruthTree(t, tt.benchmark2015)

			r, err := NewStereoGroundTruthReader(GroundTruthConfig{
				Directory:     root,
				Benchmark2015: tt.benchmark2015,
			})

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			frame, err := r.NextFrame()

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			defer frame.Close()

			if frame.Left.Cols() != 32 || frame.Left.Rows() != 16 {
				t.Errorf("expected 32x16 left image, got %dx%d",
					frame.Left.Cols(), frame.Left.Rows())
			}

			if frame.Left.Channels() != 1 {
				t.Errorf("expected grayscale left image, got %d channels",
					frame.Left.Channels())
			}

			if frame.DispNoc.Type() != gocv.MatTypeCV32F {
				t.Errorf("expected float32 disparity, got type %v",
					frame.DispNoc.Type())
			}

			if got := frame.DispNoc.GetFloatAt(0, 0); got != 2 {
				t.Errorf("expected non occluded disparity 2, got %v", got)
			}

			if got := frame.DispOcc.GetFloatAt(0, 0); got != 3 {
				t.Errorf("expected occluded disparity 3, got %v", got)
			}

			if frame.Calib.Fx != tt.fx {
				t.Errorf("expected fx %v, got %v", tt.fx, frame.Calib.Fx)
			}

			if math.Abs(frame.Calib.BaselinePx-tt.baselinePx) > 1e-9 {
				t.Errorf("expected pixel baseline %v, got %v",
					tt.baselinePx, frame.Calib.BaselinePx)
			}

			// depth from the ground truth disparity via the frame calib
			want := tt.baselinePx / 3

			if got := frame.Calib.Depth(3); math.Abs(got-want) > 1e-9 {
				t.Errorf("expected depth %v at disparity 3, got %v", want, got)
			}

			if _, err := r.NextFrame(); err != io.EOF {
				t.Errorf("expected io.EOF after last frame, got %v", err)
			}
		})
	}
}
