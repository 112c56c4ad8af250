package tracker

// Point represents the x,y pixel coordinates of a tracked feature.  Values
// are float32 since optical flow reports subpixel positions.
type Point struct {
	X, Y float32
}

// Track represents the bounded position history of a single tracked feature.
// Positions are ordered oldest first with the most recent observation last,
// and a track always holds at least one position.
type Track struct {
	// id is the unique ID assigned by the TrackManager
	id int
	// points is the position history, oldest first
	points []Point
}

// ID returns the unique ID of the track
func (t *Track) ID() int {
	return t.id
}

// Points returns the position history of the track, oldest first.  The
// returned slice is the internal buffer and must be treated as read only.
func (t *Track) Points() []Point {
	return t.points
}

// Latest returns the most recent position of the track
func (t *Track) Latest() Point {
	return t.points[len(t.points)-1]
}

// Len returns the number of positions recorded in the track history
func (t *Track) Len() int {
	return len(t.points)
}
