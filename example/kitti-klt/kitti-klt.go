package main

import (
	"flag"
	"fmt"
	"github.com/swdee/go-kittiklt"
	"github.com/swdee/go-kittiklt/dataset"
	"github.com/swdee/go-kittiklt/render"
	"github.com/swdee/go-kittiklt/tracker"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log"
	"os"
	"time"
)

// OutputFPS is the frame rate of the annotated output video, matching the
// 10Hz capture rate of the KITTI sensor platform
const OutputFPS = 10

// TTFFontSize is the point size used when a TTF font is supplied for the
// on screen statistics
const TTFFontSize = 14

// Demo runs KLT feature tracking over a KITTI odometry sequence and writes
// an annotated video of the tracks
type Demo struct {
	// reader walks the odometry sequence frames
	reader *dataset.KITTIReader
	// klt propagates feature tracks between frames
	klt *kittiklt.KLT
	// writer produces the annotated output video
	writer *gocv.VideoWriter
	// outFile is the path the annotated video is written to
	outFile string
	// fontFace renders the statistics overlay when a TTF font was supplied
	fontFace font.Face
	// style controls how tracks are painted
	style render.TrackStyle
	// mode selects the track display, trails, points, or vectors
	mode string
}

// NewDemo returns a Demo reading the given odometry benchmark sequence
func NewDemo(dir, sequence string, scale float64, maxFrames int,
	minTracks int, outFile, mode string) (*Demo, error) {

	reader, err := dataset.NewKITTIReader(dataset.KITTIConfig{
		Directory: dir,
		Sequence:  sequence,
		MaxFiles:  maxFrames,
		Scale:     scale,
	})

	if err != nil {
		return nil, fmt.Errorf("error opening sequence: %w", err)
	}

	log.Printf("Sequence %s: fx=%.2f cx=%.2f cy=%.2f baseline=%.4fm\n",
		sequence, reader.Calib.Fx, reader.Calib.Cx, reader.Calib.Cy,
		reader.Calib.Baseline())

	return &Demo{
		reader: reader,
		klt: kittiklt.NewKLT(kittiklt.Config{
			MinTracks: minTracks,
		}),
		outFile: outFile,
		style:   render.DefaultTrackStyle(),
		mode:    mode,
	}, nil
}

// Close frees the resources held by the demo
func (d *Demo) Close() error {

	if d.writer != nil {
		if err := d.writer.Close(); err != nil {
			return err
		}
	}

	return d.klt.Close()
}

// InitFont loads a TTF font and sets up the face used for the statistics
// overlay
func (d *Demo) InitFont(fontPath string) error {

	fontBytes, err := os.ReadFile(fontPath)

	if err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}

	f, err := opentype.Parse(fontBytes)

	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}

	d.fontFace, err = opentype.NewFace(f, &opentype.FaceOptions{
		Size:    TTFFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return fmt.Errorf("failed to create type face: %w", err)
	}

	return nil
}

// Run tracks features through the whole sequence, annotating each frame
// into the output video
func (d *Demo) Run() error {

	resImg := gocv.NewMat()
	defer resImg.Close()

	frameCnt := 0
	trackSum := 0
	start := time.Now()

	for {

		frame, err := d.reader.NextFrame()

		if err == io.EOF {
			break
		}

		if err != nil {
			return fmt.Errorf("error reading frame: %w", err)
		}

		ids, pts := d.klt.Process(frame.Left, nil)

		// annotate a copy of the frame, converting up to BGR so colored
		// tracks show on the grayscale source
		if frame.Left.Channels() == 1 {
			gocv.CvtColor(frame.Left, &resImg, gocv.ColorGrayToBGR)
		} else {
			frame.Left.CopyTo(&resImg)
		}

		d.drawTracks(&resImg, pts)

		stats := fmt.Sprintf("Frame: %d, Tracks: %d", frame.Index, len(ids))

		if err := d.annotate(&resImg, stats); err != nil {
			frame.Close()
			return err
		}

		if err := d.writeFrame(resImg); err != nil {
			frame.Close()
			return err
		}

		frameCnt++
		trackSum += len(ids)
		frame.Close()
	}

	if frameCnt == 0 {
		return fmt.Errorf("no frames read from sequence")
	}

	log.Printf("Processed %d frames in %.2fs, mean %.1f tracks per frame\n",
		frameCnt, time.Since(start).Seconds(),
		float64(trackSum)/float64(frameCnt))
	log.Printf("Annotated video written to %s\n", d.outFile)

	return nil
}

// drawTracks paints the live tracks in the selected display mode
func (d *Demo) drawTracks(img *gocv.Mat, pts []tracker.Point) {

	switch d.mode {

	case "points":
		render.Points(img, pts, render.Green, 2)

	case "vectors":
		_, older, newer := d.klt.Matches(1, 0)
		render.Flow(img, older, newer, render.Yellow, 1)
		render.Points(img, newer, render.Green, 2)

	default:
		render.Tracks(img, d.klt.Tracks(), d.style)
	}
}

// annotate draws the statistics line at the top of the frame
func (d *Demo) annotate(img *gocv.Mat, stats string) error {

	if d.fontFace == nil {
		hud := render.DefaultFont()
		render.TextBanner(img, stats, image.Pt(0, 0), hud, render.Black)
		return nil
	}

	return d.putTTFText(img, stats, 4, 18)
}

// putTTFText renders text onto the image using the loaded TTF face
func (d *Demo) putTTFText(img *gocv.Mat, text string, x, y int) error {

	rgba := image.NewRGBA(image.Rect(0, 0, img.Cols(), img.Rows()))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 0}),
		image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, 255}),
		Face: d.fontFace,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		},
	}
	dr.DrawString(text)

	imgRGBA, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(),
		rgba.Bounds().Dx(), gocv.MatTypeCV8UC4, rgba.Pix)

	if imgRGBA.Empty() || err != nil {
		return fmt.Errorf("error creating Mat from RGBA")
	}

	defer imgRGBA.Close()

	gocv.CvtColor(imgRGBA, &imgRGBA, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, imgRGBA, 1.0, 0, img)

	return nil
}

// writeFrame appends the annotated frame to the output video, opening the
// writer on the first frame once the output size is known
func (d *Demo) writeFrame(img gocv.Mat) error {

	if d.writer == nil {

		var err error

		d.writer, err = gocv.VideoWriterFile(d.outFile, "MJPG", OutputFPS,
			img.Cols(), img.Rows(), true)

		if err != nil {
			return fmt.Errorf("error creating video writer: %w", err)
		}
	}

	return d.writer.Write(img)
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	dataDir := flag.String("d", "/data/kitti/odometry", "KITTI odometry benchmark root directory")
	sequence := flag.String("q", "00", "Odometry sequence to track, 00 to 12")
	scale := flag.Float64("c", 1.0, "Scale factor applied to frames and calibration")
	maxFrames := flag.Int("n", 0, "Maximum number of frames to process, 0 for the whole sequence")
	minTracks := flag.Int("m", 1200, "Minimum live track count before new features are detected")
	outFile := flag.String("o", "kitti-klt-out.avi", "The output video file with feature tracks drawn")
	mode := flag.String("r", "trails", "Track display mode [trails|points|vectors]")
	byLength := flag.Bool("l", false, "Color track trails by history length instead of track ID")
	ttfFont := flag.String("f", "", "Optional TTF font for the statistics overlay")

	flag.Parse()

	demo, err := NewDemo(*dataDir, *sequence, *scale, *maxFrames,
		*minTracks, *outFile, *mode)

	if err != nil {
		log.Fatalf("Error creating demo: %v", err)
	}

	defer demo.Close()

	if *byLength {
		demo.style.Coloring = render.ColorByLength
	}

	if *ttfFont != "" {
		if err := demo.InitFont(*ttfFont); err != nil {
			log.Fatalf("Error loading font: %v", err)
		}
	}

	if err := demo.Run(); err != nil {
		log.Fatalf("Error running tracker: %v", err)
	}
}
