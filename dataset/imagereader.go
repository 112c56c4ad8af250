package dataset

import (
	"fmt"
	"gocv.io/x/gocv"
	"image"
	"io"
	"os"
)

// DefaultMaxFiles bounds how many frames a sequence reader walks when no
// limit is configured
const DefaultMaxFiles = 50000

// fileSeq walks a numbered file sequence on disk.  The sequence ends at
// the configured limit or at the first missing file, so a gap in the
// numbering acts as the end of the recording.
type fileSeq struct {
	template string
	start    int
	max      int
	idx      int
}

func newFileSeq(template string, start, maxFiles int) fileSeq {

	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}

	return fileSeq{template: template, start: start, max: maxFiles}
}

// next returns the path of the next file in the sequence, or io.EOF when
// the sequence is exhausted
func (s *fileSeq) next() (string, error) {

	if s.idx >= s.max {
		return "", io.EOF
	}

	path := fmt.Sprintf(s.template, s.start+s.idx)

	if _, err := os.Stat(path); err != nil {
		return "", io.EOF
	}

	s.idx++
	return path, nil
}

// reset rewinds the sequence to its first file
func (s *fileSeq) reset() {
	s.idx = 0
}

// ImageReader walks a numbered image sequence on disk, such as the
// image_0/%06d.png layout of the KITTI benchmarks
type ImageReader struct {
	// Scale resizes decoded frames by the given factor when not 1
	Scale float64
	// Flags selects the image decoding mode
	Flags gocv.IMReadFlag
	seq   fileSeq
}

// NewImageReader returns a reader over the numbered files matching the
// printf style template, reading at most maxFiles frames from index start.
// A maxFiles of zero or less selects DefaultMaxFiles.
func NewImageReader(template string, start, maxFiles int) *ImageReader {
	return &ImageReader{
		Scale: 1,
		Flags: gocv.IMReadColor,
		seq:   newFileSeq(template, start, maxFiles),
	}
}

// Path returns the file path of the given frame index
func (r *ImageReader) Path(idx int) string {
	return fmt.Sprintf(r.seq.template, idx)
}

// Next decodes the next frame in the sequence.  It returns io.EOF once the
// frame limit is reached or the next numbered file does not exist.  The
// caller owns the returned Mat and must close it.
func (r *ImageReader) Next() (gocv.Mat, error) {

	path, err := r.seq.next()

	if err != nil {
		return gocv.NewMat(), err
	}

	img := gocv.IMRead(path, r.Flags)

	if img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("decoding image %s", path)
	}

	if r.Scale != 0 && r.Scale != 1 {

		scaled := gocv.NewMat()
		gocv.Resize(img, &scaled, image.Point{}, r.Scale, r.Scale,
			gocv.InterpolationArea)
		img.Close()

		return scaled, nil
	}

	return img, nil
}

// Reset rewinds the reader to the first frame
func (r *ImageReader) Reset() {
	r.seq.reset()
}

// StereoReader pairs a left and right image sequence read in lockstep
type StereoReader struct {
	// Left and Right walk the two image streams
	Left  *ImageReader
	Right *ImageReader
}

// NextPair decodes the next stereo pair.  The pair ends with io.EOF when
// either side is exhausted, and the caller owns both returned Mats.
func (s *StereoReader) NextPair() (left, right gocv.Mat, err error) {

	left, err = s.Left.Next()

	if err != nil {
		return left, gocv.NewMat(), err
	}

	right, err = s.Right.Next()

	if err != nil {
		left.Close()
		return gocv.NewMat(), right, err
	}

	return left, right, nil
}

// Reset rewinds both sides to their first frame
func (s *StereoReader) Reset() {
	s.Left.Reset()
	s.Right.Reset()
}
