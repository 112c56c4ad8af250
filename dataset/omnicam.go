package dataset

import (
	"gocv.io/x/gocv"
	"path/filepath"
)

// DefaultOmnicamSequence is the published omnidirectional stereo recording
const DefaultOmnicamSequence = "2013_05_14_drive_0008_sync"

// OmnicamConfig holds the construction parameters for an OmnicamReader
type OmnicamConfig struct {
	// Directory is the root holding the omnidirectional drive directories
	Directory string
	// Sequence is the drive directory name, empty selects
	// DefaultOmnicamSequence
	Sequence string
	// Start is the first frame index
	Start int
	// MaxFiles bounds how many frames are read, zero selects
	// DefaultMaxFiles
	MaxFiles int
	// Scale resizes frames by the given factor, zero selects 1
	Scale float64
}

// OmnicamFrame is one omnidirectional stereo frame.  The caller owns the
// Mats and must close the frame when done with them.
type OmnicamFrame struct {
	// Index is the frame number within the drive
	Index int
	// Left and Right are the stereo image pair from cameras 2 and 3
	Left  gocv.Mat
	Right gocv.Mat
}

// Close releases the frame's images
func (f *OmnicamFrame) Close() error {

	if err := f.Left.Close(); err != nil {
		return err
	}

	return f.Right.Close()
}

// OmnicamReader reads the omnidirectional stereo drive layout, image pairs
// from cameras 2 and 3 with velodyne scans
type OmnicamReader struct {
	// Sequence is the drive directory name being read
	Sequence string
	stereo   *StereoReader
	velo     fileSeq
	frame    int
	start    int
}

// NewOmnicamReader returns a reader over one omnidirectional drive
func NewOmnicamReader(cfg OmnicamConfig) (*OmnicamReader, error) {

	if cfg.Scale == 0 {
		cfg.Scale = 1
	}

	if cfg.Sequence == "" {
		cfg.Sequence = DefaultOmnicamSequence
	}

	seqDir := filepath.Join(cfg.Directory, cfg.Sequence)

	left := NewImageReader(
		filepath.Join(seqDir, "image_02", "data", "%010d.png"),
		cfg.Start, cfg.MaxFiles)
	right := NewImageReader(
		filepath.Join(seqDir, "image_03", "data", "%010d.png"),
		cfg.Start, cfg.MaxFiles)
	left.Scale = cfg.Scale
	right.Scale = cfg.Scale

	return &OmnicamReader{
		Sequence: cfg.Sequence,
		stereo:   &StereoReader{Left: left, Right: right},
		velo: newFileSeq(
			filepath.Join(seqDir, "velodyne_points", "data", "%010d.bin"),
			cfg.Start, cfg.MaxFiles),
		start: cfg.Start,
	}, nil
}

// NextFrame reads the next stereo frame of the drive.  It returns io.EOF
// at the end of the recording.
func (r *OmnicamReader) NextFrame() (*OmnicamFrame, error) {

	left, right, err := r.stereo.NextPair()

	if err != nil {
		return nil, err
	}

	f := &OmnicamFrame{
		Index: r.start + r.frame,
		Left:  left,
		Right: right,
	}

	r.frame++
	return f, nil
}

// NextVelodyne reads the next velodyne scan of the drive.  It returns
// io.EOF when the scans are exhausted, and scans advance independently of
// NextFrame.
func (r *OmnicamReader) NextVelodyne() ([]VeloPoint, error) {

	path, err := r.velo.next()

	if err != nil {
		return nil, err
	}

	return ReadVelodyne(path)
}

// Reset rewinds the reader to the first frame of the drive
func (r *OmnicamReader) Reset() {
	r.stereo.Reset()
	r.velo.reset()
	r.frame = 0
}
