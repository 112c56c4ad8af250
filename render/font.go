package render

import (
	"gocv.io/x/gocv"
	"image"
	"image/color"
)

type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	// Alignment of the text label to its anchor point
	Alignment Alignment
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     White,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
		Alignment: Left,
	}
}

// Text draws a label on the source image.  The anchor is the bottom left
// corner of the text for Left alignment, and the text is shifted by its
// measured width for Center and Right.
func Text(img *gocv.Mat, label string, anchor image.Point, font Font) {

	size := gocv.GetTextSize(label, font.Face, font.Scale, font.Thickness)

	switch font.Alignment {
	case Center:
		anchor.X -= size.X / 2
	case Right:
		anchor.X -= size.X
	}

	gocv.PutTextWithParams(img, label, anchor, font.Face, font.Scale,
		font.Color, font.Thickness, font.LineType, false)
}

// TextBanner draws a label on a filled background strip so it stays
// readable over image content.  The anchor is the top left corner of the
// banner.
func TextBanner(img *gocv.Mat, label string, anchor image.Point, font Font,
	background color.RGBA) {

	size := gocv.GetTextSize(label, font.Face, font.Scale, font.Thickness)

	banner := image.Rect(
		anchor.X,
		anchor.Y,
		anchor.X+font.LeftPad+size.X+font.RightPad,
		anchor.Y+font.TopPad+size.Y+font.BottomPad,
	)

	gocv.Rectangle(img, banner, background, -1)

	Text(img, label, image.Pt(anchor.X+font.LeftPad,
		anchor.Y+font.TopPad+size.Y), font)
}
