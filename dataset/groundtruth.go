package dataset

import (
	"gocv.io/x/gocv"
	"path/filepath"
)

// GroundTruthConfig holds the construction parameters for a
// StereoGroundTruthReader
type GroundTruthConfig struct {
	// Directory is the benchmark training or testing directory
	Directory string
	// Benchmark2015 selects the 2015 scene flow layout, colour cameras 2
	// and 3 with the disp_noc_0 naming, over the 2012 grayscale layout
	Benchmark2015 bool
	// Start is the first frame index
	Start int
	// MaxFiles bounds how many frames are read, zero selects
	// DefaultMaxFiles
	MaxFiles int
	// Scale resizes the stereo pair by the given factor.  Disparity maps
	// and calibration are always read at full resolution.
	Scale float64
}

// GroundTruthFrame is one stereo benchmark frame with its disparity ground
// truth.  The caller owns the Mats and must close the frame when done.
type GroundTruthFrame struct {
	// Index is the frame number within the benchmark
	Index int
	// Left and Right are the stereo image pair
	Left  gocv.Mat
	Right gocv.Mat
	// DispNoc and DispOcc are the non occluded and all pixel disparity
	// maps as float32 pixels, zero where no ground truth exists
	DispNoc gocv.Mat
	DispOcc gocv.Mat
	// Calib is the per frame stereo calibration parsed from the benchmark
	// calibration files
	Calib StereoCamera
}

// Close releases the frame's images and disparity maps
func (f *GroundTruthFrame) Close() error {

	if err := f.Left.Close(); err != nil {
		return err
	}

	if err := f.Right.Close(); err != nil {
		return err
	}

	if err := f.DispNoc.Close(); err != nil {
		return err
	}

	return f.DispOcc.Close()
}

// StereoGroundTruthReader reads the KITTI stereo benchmark layout, the
// first frame of each scene paired with its disparity ground truth and per
// frame calibration.  Only the _10.png frames carry ground truth, so only
// they are read.
type StereoGroundTruthReader struct {
	stereo     *StereoReader
	noc        *ImageReader
	occ        *ImageReader
	calib      fileSeq
	calibLeft  string
	calibRight string
	frame      int
	start      int
}

// NewStereoGroundTruthReader returns a reader over a stereo benchmark
// directory
func NewStereoGroundTruthReader(cfg GroundTruthConfig) (*StereoGroundTruthReader, error) {

	if cfg.Scale == 0 {
		cfg.Scale = 1
	}

	leftDir, rightDir := "image_0", "image_1"
	nocDir, occDir := "disp_noc", "disp_occ"
	calibLeft, calibRight := "P0", "P1"

	if cfg.Benchmark2015 {
		leftDir, rightDir = "image_2", "image_3"
		nocDir, occDir = "disp_noc_0", "disp_occ_0"
		calibLeft, calibRight = "P2", "P3"
	}

	left := NewImageReader(
		filepath.Join(cfg.Directory, leftDir, "%06d_10.png"),
		cfg.Start, cfg.MaxFiles)
	right := NewImageReader(
		filepath.Join(cfg.Directory, rightDir, "%06d_10.png"),
		cfg.Start, cfg.MaxFiles)
	left.Scale = cfg.Scale
	right.Scale = cfg.Scale
	left.Flags = gocv.IMReadGrayScale
	right.Flags = gocv.IMReadGrayScale

	noc := NewImageReader(
		filepath.Join(cfg.Directory, nocDir, "%06d_10.png"),
		cfg.Start, cfg.MaxFiles)
	occ := NewImageReader(
		filepath.Join(cfg.Directory, occDir, "%06d_10.png"),
		cfg.Start, cfg.MaxFiles)
	noc.Flags = gocv.IMReadUnchanged
	occ.Flags = gocv.IMReadUnchanged

	return &StereoGroundTruthReader{
		stereo:     &StereoReader{Left: left, Right: right},
		noc:        noc,
		occ:        occ,
		calib:      newFileSeq(filepath.Join(cfg.Directory, "calib", "%06d.txt"), cfg.Start, cfg.MaxFiles),
		calibLeft:  calibLeft,
		calibRight: calibRight,
		start:      cfg.Start,
	}, nil
}

// NextFrame reads the next benchmark frame with its disparity ground truth
// and calibration.  It returns io.EOF when any of the underlying streams
// is exhausted.
func (r *StereoGroundTruthReader) NextFrame() (*GroundTruthFrame, error) {

	left, right, err := r.stereo.NextPair()

	if err != nil {
		return nil, err
	}

	noc, err := r.readDisparity(r.noc)

	if err != nil {
		left.Close()
		right.Close()
		return nil, err
	}

	occ, err := r.readDisparity(r.occ)

	if err != nil {
		left.Close()
		right.Close()
		noc.Close()
		return nil, err
	}

	calib, err := r.readCalib()

	if err != nil {
		left.Close()
		right.Close()
		noc.Close()
		occ.Close()
		return nil, err
	}

	f := &GroundTruthFrame{
		Index:   r.start + r.frame,
		Left:    left,
		Right:   right,
		DispNoc: noc,
		DispOcc: occ,
		Calib:   calib,
	}

	r.frame++
	return f, nil
}

// readDisparity decodes the next stored disparity map, sixteen bit pixels
// holding disparity times 256, into float32 pixels
func (r *StereoGroundTruthReader) readDisparity(images *ImageReader) (gocv.Mat, error) {

	raw, err := images.Next()

	if err != nil {
		return raw, err
	}

	disp := gocv.NewMat()
	raw.ConvertToWithParams(&disp, gocv.MatTypeCV32F, 1.0/256.0, 0)
	raw.Close()

	return disp, nil
}

// readCalib parses the next per frame calibration file
func (r *StereoGroundTruthReader) readCalib() (StereoCamera, error) {

	path, err := r.calib.next()

	if err != nil {
		return StereoCamera{}, err
	}

	calib, err := ParseCalib(path)

	if err != nil {
		return StereoCamera{}, err
	}

	left, err := CalibMatrix(calib, r.calibLeft)

	if err != nil {
		return StereoCamera{}, err
	}

	right, err := CalibMatrix(calib, r.calibRight)

	if err != nil {
		return StereoCamera{}, err
	}

	return StereoCalibFromProjections(left, right)
}

// Reset rewinds the reader to the first frame of the benchmark
func (r *StereoGroundTruthReader) Reset() {
	r.stereo.Reset()
	r.noc.Reset()
	r.occ.Reset()
	r.calib.reset()
	r.frame = 0
}
