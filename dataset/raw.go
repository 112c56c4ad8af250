package dataset

import (
	"gocv.io/x/gocv"
	"path/filepath"
)

// KITTIRawConfig holds the construction parameters for a KITTIRawReader
type KITTIRawConfig struct {
	// Directory is the raw drive directory holding image_00/, oxts/ and
	// velodyne_points/
	Directory string
	// Start is the first frame index
	Start int
	// MaxFiles bounds how many frames are read, zero selects
	// DefaultMaxFiles
	MaxFiles int
	// Scale resizes frames by the given factor, zero selects 1
	Scale float64
}

// RawFrame is one raw drive frame.  The caller owns the Mats and must
// close the frame when done with them.
type RawFrame struct {
	// Index is the frame number within the drive
	Index int
	// Left and Right are the stereo image pair
	Left  gocv.Mat
	Right gocv.Mat
	// OXTS is the GPS/IMU record of the frame, nil when the drive carries
	// none
	OXTS *OXTS
}

// Close releases the frame's images
func (f *RawFrame) Close() error {

	if err := f.Left.Close(); err != nil {
		return err
	}

	return f.Right.Close()
}

// KITTIRawReader reads a raw drive recording, stereo image pairs with
// GPS/IMU records and velodyne scans.  Drives without an oxts directory
// still read, their frames just carry a nil record.
type KITTIRawReader struct {
	// OXTSFields lists the GPS/IMU field names declared by the drive's
	// dataformat file, nil when the drive carries none
	OXTSFields []string
	stereo     *StereoReader
	oxts       fileSeq
	velo       fileSeq
	frame      int
	start      int
}

// NewKITTIRawReader returns a reader over one raw drive recording
func NewKITTIRawReader(cfg KITTIRawConfig) (*KITTIRawReader, error) {

	if cfg.Scale == 0 {
		cfg.Scale = 1
	}

	left := NewImageReader(
		filepath.Join(cfg.Directory, "image_00", "data", "%010d.png"),
		cfg.Start, cfg.MaxFiles)
	right := NewImageReader(
		filepath.Join(cfg.Directory, "image_01", "data", "%010d.png"),
		cfg.Start, cfg.MaxFiles)
	left.Scale = cfg.Scale
	right.Scale = cfg.Scale

	r := &KITTIRawReader{
		stereo: &StereoReader{Left: left, Right: right},
		oxts: newFileSeq(
			filepath.Join(cfg.Directory, "oxts", "data", "%010d.txt"),
			cfg.Start, cfg.MaxFiles),
		velo: newFileSeq(
			filepath.Join(cfg.Directory, "velodyne_points", "data", "%010d.bin"),
			cfg.Start, cfg.MaxFiles),
		start: cfg.Start,
	}

	// drives without GPS/IMU data have no dataformat file, their frames
	// just carry no record
	names, err := ReadOXTSFormat(filepath.Join(cfg.Directory, "oxts",
		"dataformat.txt"))

	if err == nil {
		r.OXTSFields = names
	}

	return r, nil
}

// NextFrame reads the next stereo frame and pairs it with its GPS/IMU
// record.  It returns io.EOF at the end of the drive.
func (r *KITTIRawReader) NextFrame() (*RawFrame, error) {

	left, right, err := r.stereo.NextPair()

	if err != nil {
		return nil, err
	}

	f := &RawFrame{
		Index: r.start + r.frame,
		Left:  left,
		Right: right,
	}

	if r.OXTSFields != nil {

		if path, err := r.oxts.next(); err == nil {

			oxt, err := ReadOXTS(path, r.OXTSFields)

			if err != nil {
				f.Close()
				return nil, err
			}

			f.OXTS = oxt
		}
	}

	r.frame++
	return f, nil
}

// NextVelodyne reads the next velodyne scan of the drive.  It returns
// io.EOF when the scans are exhausted, and scans advance independently of
// NextFrame.
func (r *KITTIRawReader) NextVelodyne() ([]VeloPoint, error) {

	path, err := r.velo.next()

	if err != nil {
		return nil, err
	}

	return ReadVelodyne(path)
}

// Reset rewinds the reader to the first frame of the drive
func (r *KITTIRawReader) Reset() {
	r.stereo.Reset()
	r.oxts.reset()
	r.velo.reset()
	r.frame = 0
}
