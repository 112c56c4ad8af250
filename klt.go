package kittiklt

import (
	"github.com/swdee/go-kittiklt/preprocess"
	"github.com/swdee/go-kittiklt/tracker"
	"gocv.io/x/gocv"
	"image"
	"image/color"
)

// State represents the feature replenishment state of a KLT tracker
type State int

const (
	// StateBootstrap means no features have been registered yet and the
	// first detection pass is pending
	StateBootstrap State = iota
	// StateTracking means enough tracks are alive and frames only run the
	// optical flow propagation step
	StateTracking
	// StateReplenish means the live track count fell below MinTracks and a
	// detection pass is pending.  The state is sticky, it persists across
	// frames until a detection actually adds new features.
	StateReplenish
)

// Default KLT tracker parameters
const (
	// DefaultMinTracks is the replenishment threshold used when Config
	// leaves MinTracks unset
	DefaultMinTracks = 1200
	// DefaultMaskRadius is the exclusion radius in pixels used when Config
	// leaves MaskRadius unset
	DefaultMaskRadius = 9
)

// Config holds the construction parameters for a KLT tracker.  The zero
// value of every field selects a default, so Config{} is usable as is.
type Config struct {
	// Detector finds new feature points when the live track count drops
	// below MinTracks.  Defaults to NewGFTTDetector().
	Detector FeatureDetector
	// Flow propagates feature points between frames.  Defaults to
	// NewLKTracker().
	Flow OpticalFlow
	// MaxTrackLength bounds the position history kept per track.  Defaults
	// to tracker.DefaultMaxTrackLength.
	MaxTrackLength int
	// MinTracks is the live track count below which a detection pass is
	// scheduled.  Defaults to DefaultMinTracks.
	MinTracks int
	// MaskRadius is the radius in pixels of the exclusion disk stamped
	// around every live track when detecting new features.  Defaults to
	// DefaultMaskRadius.
	MaskRadius int
	// BlurKernel is the gaussian smoothing kernel size applied to incoming
	// frames.  Defaults to 3.
	BlurKernel int
}

// KLT drives sparse Kanade-Lucas-Tomasi feature tracking over a frame
// sequence.  Each Process call propagates the live tracks into the new
// frame with optical flow, prunes the ones that fail, and tops the set back
// up with freshly detected corners whenever the live count falls below the
// configured minimum.  KLT is not safe for concurrent use, feed it frames
// from a single goroutine.
type KLT struct {
	detector   FeatureDetector
	flow       OpticalFlow
	tm         *tracker.TrackManager
	minTracks  int
	maskRadius int
	pre        *preprocess.Preprocessor
	// prev and curr form a rolling two frame buffer of preprocessed
	// images, the oldest Mat is overwritten in place each frame
	prev gocv.Mat
	curr gocv.Mat
	// frames counts Process calls since construction or Reset
	frames int
	state  State
}

// NewKLT returns a KLT tracker for the given configuration.  Call Close to
// free the Mats it holds when done.
func NewKLT(cfg Config) *KLT {

	if cfg.Detector == nil {
		cfg.Detector = NewGFTTDetector()
	}

	if cfg.Flow == nil {
		cfg.Flow = NewLKTracker()
	}

	if cfg.MinTracks <= 0 {
		cfg.MinTracks = DefaultMinTracks
	}

	if cfg.MaskRadius <= 0 {
		cfg.MaskRadius = DefaultMaskRadius
	}

	return &KLT{
		detector:   cfg.Detector,
		flow:       cfg.Flow,
		tm:         tracker.NewTrackManager(cfg.MaxTrackLength),
		minTracks:  cfg.MinTracks,
		maskRadius: cfg.MaskRadius,
		pre:        preprocess.NewPreprocessor(cfg.BlurKernel),
		prev:       gocv.NewMat(),
		curr:       gocv.NewMat(),
		state:      StateBootstrap,
	}
}

// Close frees the Mats held by the tracker
func (k *KLT) Close() error {

	if err := k.prev.Close(); err != nil {
		return err
	}

	if err := k.curr.Close(); err != nil {
		return err
	}

	return k.pre.Close()
}

// Process runs one tracking step on img and returns the IDs and current
// positions of the live tracks, positionally matched.
//
// When detected is nil and features are needed, the configured detector
// runs over the preprocessed frame.  A non-nil detected supplies externally
// computed candidate points instead, which pass through the same occupancy
// mask before being registered.  Process does not fail on a well formed
// image, a frame where flow or detection comes up empty simply leaves a
// smaller, or unchanged, track set behind.  The caller keeps ownership of
// img.
func (k *KLT) Process(img gocv.Mat, detected []tracker.Point) ([]int, []tracker.Point) {

	// rotate the two frame buffer and preprocess into the freed slot
	k.prev, k.curr = k.curr, k.prev
	k.pre.Apply(img, &k.curr)
	k.frames++

	// propagate live tracks into the new frame, pruning failures
	if ids, pts := k.tm.Snapshot(); k.frames >= 2 && len(pts) > 0 {

		moved, valid := k.flow.Track(k.prev, k.curr, pts)

		keepIDs := make([]int, 0, len(ids))
		keepPts := make([]tracker.Point, 0, len(pts))

		for i, ok := range valid {
			if !ok {
				continue
			}

			keepIDs = append(keepIDs, ids[i])
			keepPts = append(keepPts, moved[i])
		}

		k.tm.Add(keepPts, keepIDs, true)
	}

	// a live count below the minimum schedules a detection pass
	if k.state == StateTracking && k.tm.Len() < k.minTracks {
		k.state = StateReplenish
	}

	if k.state != StateTracking {
		k.replenish(detected)
	}

	return k.tm.Snapshot()
}

// replenish finds candidate points away from the live tracks and registers
// them as fresh tracks.  The pending detection state clears only once at
// least one feature is actually added, so an empty detection retries on the
// next frame.
func (k *KLT) replenish(detected []tracker.Point) {

	mask := k.occupancyMask()
	defer mask.Close()

	var fresh []tracker.Point

	if detected == nil {
		fresh = k.detector.Detect(k.curr, mask)
	} else {
		fresh = filterByMask(detected, mask)
	}

	if len(fresh) == 0 {
		return
	}

	k.tm.Add(fresh, nil, false)
	k.state = StateTracking
}

// occupancyMask builds a detection mask sized to the current frame with a
// zero filled disk stamped over every live track position
func (k *KLT) occupancyMask() gocv.Mat {

	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0),
		k.curr.Rows(), k.curr.Cols(), gocv.MatTypeCV8U)

	for _, pt := range k.tm.Points() {
		gocv.Circle(&mask, image.Pt(int(pt.X), int(pt.Y)), k.maskRadius,
			color.RGBA{}, -1)
	}

	return mask
}

// Matches returns corresponding point pairs between two history offsets of
// every live track, counted back from the latest entry.  Offset 0 is a
// track's current position and offset 1 the one before it, so Matches(1, 0)
// pairs each track's previous and current positions.  Tracks too short to
// cover both offsets are skipped.  The returned slices are positionally
// matched and empty, never nil, when nothing qualifies.
func (k *KLT) Matches(from, to int) ([]int, []tracker.Point, []tracker.Point) {

	ids := make([]int, 0)
	older := make([]tracker.Point, 0)
	newer := make([]tracker.Point, 0)

	if from < 0 || to < 0 {
		return ids, older, newer
	}

	need := from
	if to > need {
		need = to
	}

	for _, trk := range k.tm.Tracks() {

		pts := trk.Points()

		if len(pts) <= need {
			continue
		}

		ids = append(ids, trk.ID())
		older = append(older, pts[len(pts)-1-from])
		newer = append(newer, pts[len(pts)-1-to])
	}

	return ids, older, newer
}

// Tracks returns the live tracks in deterministic creation order
func (k *KLT) Tracks() []*tracker.Track {
	return k.tm.Tracks()
}

// Len returns the number of live tracks
func (k *KLT) Len() int {
	return k.tm.Len()
}

// State returns the current replenishment state
func (k *KLT) State() State {
	return k.state
}

// TrackManager returns the underlying track manager
func (k *KLT) TrackManager() *tracker.TrackManager {
	return k.tm
}

// Reset drops all tracks and buffered frames, returning the tracker to its
// bootstrap state.  Track IDs are never reused across a reset.
func (k *KLT) Reset() {
	k.tm.Reset()
	k.frames = 0
	k.state = StateBootstrap
}
