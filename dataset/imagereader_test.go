package dataset

import (
	"fmt"
	"gocv.io/x/gocv"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// writeGrayPNG writes a w by h grayscale png filled with shade, creating
// parent directories as needed
func writeGrayPNG(t *testing.T, path string, w, h int, shade uint8) {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, w, h))

	for i := range img.Pix {
		img.Pix[i] = shade
	}

	encodePNG(t, path, img)
}

// writeDisparityPNG writes a w by h sixteen bit png storing the given
// disparity in the benchmark's disparity times 256 encoding
func writeDisparityPNG(t *testing.T, path string, w, h int, disparity float64) {
	t.Helper()

	img := image.NewGray16(image.Rect(0, 0, w, h))
	v := color.Gray16{Y: uint16(disparity * 256)}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, v)
		}
	}

	encodePNG(t, path, img)
}

func encodePNG(t *testing.T, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Create(path)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestImageReaderSequence(t *testing.T) {

	dir := t.TempDir()

	// frame 3 is missing, the gap ends the sequence
	for _, i := range []int{0, 1, 2, 4} {
		writeGrayPNG(t, filepath.Join(dir, fmt.Sprintf("%06d.png", i)),
			8, 4, uint8(10*i))
	}

	r := NewImageReader(filepath.Join(dir, "%06d.png"), 0, 0)
	r.Flags = gocv.IMReadGrayScale

	for i := 0; i < 3; i++ {

		img, err := r.Next()

		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}

		if img.Cols() != 8 || img.Rows() != 4 {
			t.Errorf("frame %d: expected 8x4 image, got %dx%d",
				i, img.Cols(), img.Rows())
		}

		if got := img.GetUCharAt(0, 0); got != uint8(10*i) {
			t.Errorf("frame %d: expected shade %d, got %d", i, 10*i, got)
		}

		img.Close()
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF at gap, got %v", err)
	}

	// the reader stays exhausted
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF again, got %v", err)
	}
}

func TestImageReaderStart(t *testing.T) {

	dir := t.TempDir()

	for i := 0; i < 3; i++ {
		writeGrayPNG(t, filepath.Join(dir, fmt.Sprintf("%06d.png", i)),
			8, 4, uint8(10*i))
	}

	r := NewImageReader(filepath.Join(dir, "%06d.png"), 1, 0)
	r.Flags = gocv.IMReadGrayScale

	img, err := r.Next()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer img.Close()

	if got := img.GetUCharAt(0, 0); got != 10 {
		t.Errorf("expected first frame at index 1 with shade 10, got %d", got)
	}
}

func TestImageReaderMaxFiles(t *testing.T) {

	dir := t.TempDir()

	for i := 0; i < 4; i++ {
		writeGrayPNG(t, filepath.Join(dir, fmt.Sprintf("%06d.png", i)), 4, 4, 0)
	}

	r := NewImageReader(filepath.Join(dir, "%06d.png"), 0, 2)

	for i := 0; i < 2; i++ {

		img, err := r.Next()

		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}

		img.Close()
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF at frame limit, got %v", err)
	}
}

func TestImageReaderScale(t *testing.T) {

	dir := t.TempDir()
	writeGrayPNG(t, filepath.Join(dir, "000000.png"), 100, 50, 128)

	r := NewImageReader(filepath.Join(dir, "%06d.png"), 0, 0)
	r.Scale = 0.5

	img, err := r.Next()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer img.Close()

	if img.Cols() != 50 || img.Rows() != 25 {
		t.Errorf("expected 50x25 scaled image, got %dx%d",
			img.Cols(), img.Rows())
	}
}

func TestImageReaderDecodeError(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "000000.png")

	if err := os.WriteFile(path, []byte("not a png"), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := NewImageReader(filepath.Join(dir, "%06d.png"), 0, 0)

	_, err := r.Next()

	if err == nil || err == io.EOF {
		t.Errorf("expected decode error for corrupt image, got %v", err)
	}
}

func TestImageReaderReset(t *testing.T) {

	dir := t.TempDir()
	writeGrayPNG(t, filepath.Join(dir, "000000.png"), 4, 4, 42)

	r := NewImageReader(filepath.Join(dir, "%06d.png"), 0, 0)

	img, err := r.Next()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img.Close()

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}

	r.Reset()

	img, err = r.Next()

	if err != nil {
		t.Fatalf("expected frame after reset, got %v", err)
	}

	img.Close()
}

func TestStereoReaderPairs(t *testing.T) {

	dir := t.TempDir()

	for i := 0; i < 2; i++ {
		writeGrayPNG(t, filepath.Join(dir, "left", fmt.Sprintf("%06d.png", i)),
			8, 4, 100)
	}

	// the right stream is one frame shorter
	writeGrayPNG(t, filepath.Join(dir, "right", "000000.png"), 8, 4, 200)

	s := &StereoReader{
		Left:  NewImageReader(filepath.Join(dir, "left", "%06d.png"), 0, 0),
		Right: NewImageReader(filepath.Join(dir, "right", "%06d.png"), 0, 0),
	}

	left, right, err := s.NextPair()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	left.Close()
	right.Close()

	if _, _, err := s.NextPair(); err != io.EOF {
		t.Errorf("expected io.EOF when one side ends, got %v", err)
	}
}
