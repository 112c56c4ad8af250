package render

import (
	"github.com/swdee/go-kittiklt/tracker"
	"gocv.io/x/gocv"
	"image"
	"image/color"
)

type ColorMode int

const (
	// ColorByID picks each track's color from the palette by its ID, so a
	// track keeps its color for its whole lifetime
	ColorByID ColorMode = 1
	// ColorByLength picks the color from the palette by the track's
	// history length, so young and old tracks are distinguishable
	ColorByLength ColorMode = 2
	// ColorFixed paints every track with the style's LineColor
	ColorFixed ColorMode = 3
)

// TrackStyle defines the parameters used for rendering feature tracks
type TrackStyle struct {
	// Coloring selects how each track's color is chosen
	Coloring ColorMode
	// LineColor is the track color used with ColorFixed
	LineColor     color.RGBA
	LineThickness int
	// HeadRadius is the radius of the filled marker drawn on a track's
	// newest position
	HeadRadius int
	// MinLength skips tracks with fewer positions than this
	MinLength int
}

// DefaultTrackStyle returns default track style settings
func DefaultTrackStyle() TrackStyle {
	return TrackStyle{
		Coloring:      ColorByID,
		LineColor:     Yellow,
		LineThickness: 1,
		HeadRadius:    2,
		MinLength:     2,
	}
}

// Tracks draws the track position histories on the source image as
// polylines with a marker on the newest position
func Tracks(img *gocv.Mat, tracks []*tracker.Track, style TrackStyle) {

	for _, trk := range tracks {

		points := trk.Points()

		if len(points) < style.MinLength {
			continue
		}

		var clr color.RGBA

		switch style.Coloring {
		case ColorByLength:
			clr = TrackColor(len(points))
		case ColorFixed:
			clr = style.LineColor
		default:
			clr = TrackColor(trk.ID())
		}

		// draw trail line showing tracking history
		for i := 1; i < len(points); i++ {
			gocv.Line(img,
				image.Pt(int(points[i-1].X), int(points[i-1].Y)),
				image.Pt(int(points[i].X), int(points[i].Y)),
				clr, style.LineThickness,
			)
		}

		head := points[len(points)-1]

		gocv.Circle(img, image.Pt(int(head.X), int(head.Y)),
			style.HeadRadius, clr, -1)
	}
}

// Points draws a filled marker at each point position
func Points(img *gocv.Mat, points []tracker.Point, clr color.RGBA, radius int) {

	for _, pt := range points {
		gocv.Circle(img, image.Pt(int(pt.X), int(pt.Y)), radius, clr, -1)
	}
}

// Flow draws the motion between two positionally matched point sets as
// line segments from the older to the newer position
func Flow(img *gocv.Mat, older, newer []tracker.Point, clr color.RGBA,
	thickness int) {

	n := len(older)

	if len(newer) < n {
		n = len(newer)
	}

	for i := 0; i < n; i++ {
		gocv.Line(img,
			image.Pt(int(older[i].X), int(older[i].Y)),
			image.Pt(int(newer[i].X), int(newer[i].Y)),
			clr, thickness,
		)
	}
}
