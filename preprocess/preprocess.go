package preprocess

import (
	"gocv.io/x/gocv"
	"image"
)

// Preprocessor converts raw frames into the grayscale, denoised form the
// optical flow and corner detection steps operate on.  It keeps a scratch
// Mat so repeated calls do not allocate per frame.
type Preprocessor struct {
	// ksize is the gaussian blur kernel size
	ksize image.Point
	// sigma is the gaussian kernel standard deviation, 0 derives it from
	// the kernel size
	sigma float64
	// grayMat is a scratch Mat used for color conversion
	grayMat gocv.Mat
}

// NewPreprocessor returns a preprocessor using a kernel of the given size
// for the denoising blur.  A size of zero or less selects a 3x3 kernel.
func NewPreprocessor(kernelSize int) *Preprocessor {
	if kernelSize <= 0 {
		kernelSize = 3
	}

	return &Preprocessor{
		ksize:   image.Pt(kernelSize, kernelSize),
		grayMat: gocv.NewMat(),
	}
}

// Close frees memory allocated by the preprocessor
func (p *Preprocessor) Close() error {
	return p.grayMat.Close()
}

// Apply writes the grayscale blurred version of src into dst.  A src that is
// already single channel skips the color conversion.
func (p *Preprocessor) Apply(src gocv.Mat, dst *gocv.Mat) {

	gray := src

	if src.Channels() > 1 {
		gocv.CvtColor(src, &p.grayMat, gocv.ColorBGRToGray)
		gray = p.grayMat
	}

	gocv.GaussianBlur(gray, dst, p.ksize, p.sigma, p.sigma, gocv.BorderDefault)
}
