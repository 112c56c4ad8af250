package dataset

import (
	"fmt"
	"gocv.io/x/gocv"
	"path/filepath"
	"strconv"
)

// KITTIConfig holds the construction parameters for a KITTIReader
type KITTIConfig struct {
	// Directory is the odometry benchmark root holding the sequences/ and
	// poses/ directories
	Directory string
	// Sequence is the zero padded sequence name, such as "00"
	Sequence string
	// Start is the first frame index
	Start int
	// MaxFiles bounds how many frames are read, zero selects
	// DefaultMaxFiles
	MaxFiles int
	// Scale resizes frames and calibration by the given factor, zero
	// selects 1
	Scale float64
}

// Frame is one odometry benchmark frame.  The caller owns the Mats and
// must close the frame when done with them.
type Frame struct {
	// Index is the frame number within the sequence
	Index int
	// Left and Right are the stereo image pair
	Left  gocv.Mat
	Right gocv.Mat
	// Pose is the ground truth pose of the frame, nil when the sequence
	// carries none
	Pose *RigidTransform
}

// Close releases the frame's images
func (f *Frame) Close() error {

	if err := f.Left.Close(); err != nil {
		return err
	}

	return f.Right.Close()
}

// KITTIReader reads the KITTI odometry benchmark layout, stereo image
// pairs with ground truth poses and velodyne scans.  Sequences without a
// pose file still read, their frames just carry a nil pose.
type KITTIReader struct {
	// Sequence is the zero padded sequence name
	Sequence string
	// Calib is the stereo calibration of the sequence, already adjusted
	// for the configured scale
	Calib  StereoCamera
	stereo *StereoReader
	velo   fileSeq
	poses  []*RigidTransform
	frame  int
	start  int
}

// NewKITTIReader returns a reader over one odometry benchmark sequence.
// Construction fails when the sequence name is not numeric or has no known
// stereo calibration.
func NewKITTIReader(cfg KITTIConfig) (*KITTIReader, error) {

	if cfg.Scale == 0 {
		cfg.Scale = 1
	}

	seq, err := strconv.Atoi(cfg.Sequence)

	if err != nil {
		return nil, fmt.Errorf("sequence name %q is not numeric: %w",
			cfg.Sequence, err)
	}

	calib, err := OdometryCalib(seq)

	if err != nil {
		return nil, err
	}

	seqDir := filepath.Join(cfg.Directory, "sequences", cfg.Sequence)

	left := NewImageReader(filepath.Join(seqDir, "image_0", "%06d.png"),
		cfg.Start, cfg.MaxFiles)
	right := NewImageReader(filepath.Join(seqDir, "image_1", "%06d.png"),
		cfg.Start, cfg.MaxFiles)
	left.Scale = cfg.Scale
	right.Scale = cfg.Scale

	r := &KITTIReader{
		Sequence: cfg.Sequence,
		Calib:    calib.Scaled(cfg.Scale),
		stereo:   &StereoReader{Left: left, Right: right},
		velo: newFileSeq(filepath.Join(seqDir, "velodyne", "%06d.bin"),
			cfg.Start, cfg.MaxFiles),
		start: cfg.Start,
	}

	// ground truth poses only exist for the training sequences, their
	// absence is not an error
	poses, err := ReadPoses(filepath.Join(cfg.Directory, "poses",
		cfg.Sequence+".txt"))

	if err == nil {
		r.poses = poses
	}

	return r, nil
}

// Poses returns the ground truth poses of the whole sequence, nil when it
// has none
func (r *KITTIReader) Poses() []*RigidTransform {
	return r.poses
}

// NextFrame reads the next stereo frame and pairs it with its ground truth
// pose.  It returns io.EOF at the end of the sequence.
func (r *KITTIReader) NextFrame() (*Frame, error) {

	left, right, err := r.stereo.NextPair()

	if err != nil {
		return nil, err
	}

	f := &Frame{
		Index: r.start + r.frame,
		Left:  left,
		Right: right,
	}

	if r.frame < len(r.poses) {
		f.Pose = r.poses[r.frame]
	}

	r.frame++
	return f, nil
}

// NextVelodyne reads the next velodyne scan of the sequence.  It returns
// io.EOF when the scans are exhausted, and scans advance independently of
// NextFrame.
func (r *KITTIReader) NextVelodyne() ([]VeloPoint, error) {

	path, err := r.velo.next()

	if err != nil {
		return nil, err
	}

	return ReadVelodyne(path)
}

// Reset rewinds the reader to the first frame of the sequence
func (r *KITTIReader) Reset() {
	r.stereo.Reset()
	r.velo.reset()
	r.frame = 0
}
