package tracker

import "sync"

// DefaultMaxTrackLength is the per track history size used when
// NewTrackManager is given a length of zero or less
const DefaultMaxTrackLength = 20

// TrackManager maintains the set of active feature tracks across a frame
// sequence.  Track IDs are allocated monotonically and never reused, even
// after the track they belonged to has been pruned, and each track keeps a
// bounded sliding window of its most recent positions.
type TrackManager struct {
	// maxLen is the maximum number of positions to keep per track
	maxLen int
	// nextID is the counter for assigning unique track IDs
	nextID int
	// tracks maps track ID to its history
	tracks map[int]*Track
	// order holds track IDs in insertion order so iteration is
	// deterministic, as Go map iteration order is randomized
	order []int
	sync.Mutex
}

// NewTrackManager returns a new track manager keeping at most maxLen
// positions per track.  A maxLen of zero or less selects
// DefaultMaxTrackLength.
func NewTrackManager(maxLen int) *TrackManager {
	if maxLen <= 0 {
		maxLen = DefaultMaxTrackLength
	}

	return &TrackManager{
		maxLen: maxLen,
		tracks: make(map[int]*Track),
	}
}

// MaxTrackLength returns the configured per track history size
func (tm *TrackManager) MaxTrackLength() int {
	return tm.maxLen
}

// Reset removes all tracks.  The ID counter is not rewound so IDs stay
// unique across a reset.
func (tm *TrackManager) Reset() {
	tm.Lock()
	defer tm.Unlock()

	tm.tracks = make(map[int]*Track)
	tm.order = tm.order[:0]
}

// Add updates the track set with one frame of points.
//
// When ids is nil each point is registered as a new track with a freshly
// allocated ID and prune is ignored.  When ids is provided it must have the
// same length as points and each (id, point) pair appends the point to that
// track's history, evicting the oldest entry once the history is full.  IDs
// unknown to the manager are skipped.  With prune set, any existing track
// whose ID does not appear in ids is removed entirely, which is how
// propagation failures retire tracks; an empty non-nil ids with prune set
// therefore removes every track.
//
// A mismatched ids/points length is treated as no update this frame and
// returns nil.  Otherwise the returned slice holds the IDs updated or
// created, in input order.
func (tm *TrackManager) Add(points []Point, ids []int, prune bool) []int {
	tm.Lock()
	defer tm.Unlock()

	if ids == nil {
		return tm.addNew(points)
	}

	if len(ids) != len(points) {
		return nil
	}

	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))

	for i, id := range ids {
		track, exists := tm.tracks[id]

		if !exists {
			continue
		}

		track.points = append(track.points, points[i])

		// check if history is exceeded and drop oldest point
		if len(track.points) > tm.maxLen {
			track.points = track.points[1:]
		}

		seen[id] = true
		out = append(out, id)
	}

	if prune {
		tm.prune(seen)
	}

	return out
}

// addNew registers each point as a single entry track with a new unique ID.
// Callers must hold the lock.
func (tm *TrackManager) addNew(points []Point) []int {
	out := make([]int, 0, len(points))

	for _, pt := range points {
		id := tm.nextID
		tm.nextID++

		tm.tracks[id] = &Track{
			id:     id,
			points: []Point{pt},
		}

		tm.order = append(tm.order, id)
		out = append(out, id)
	}

	return out
}

// prune removes all tracks whose ID is not in keep.  Callers must hold the
// lock.
func (tm *TrackManager) prune(keep map[int]bool) {
	kept := tm.order[:0]

	for _, id := range tm.order {
		if keep[id] {
			kept = append(kept, id)
			continue
		}

		delete(tm.tracks, id)
	}

	tm.order = kept
}

// IDs returns the IDs of all active tracks in a deterministic order.  The
// returned slice is a copy and is empty, not nil, when no tracks exist.
func (tm *TrackManager) IDs() []int {
	tm.Lock()
	defer tm.Unlock()

	out := make([]int, len(tm.order))
	copy(out, tm.order)
	return out
}

// Points returns the latest position of each active track, positionally
// matching IDs.  The returned slice is empty, not nil, when no tracks exist
// so callers can test length without a nil check.
func (tm *TrackManager) Points() []Point {
	tm.Lock()
	defer tm.Unlock()

	return tm.latest()
}

// latest builds the latest position slice.  Callers must hold the lock.
func (tm *TrackManager) latest() []Point {
	out := make([]Point, 0, len(tm.order))

	for _, id := range tm.order {
		pts := tm.tracks[id].points
		out = append(out, pts[len(pts)-1])
	}

	return out
}

// Snapshot returns IDs and latest positions under a single lock so both
// slices describe the same state.
func (tm *TrackManager) Snapshot() ([]int, []Point) {
	tm.Lock()
	defer tm.Unlock()

	ids := make([]int, len(tm.order))
	copy(ids, tm.order)
	return ids, tm.latest()
}

// Tracks returns all active tracks in the same deterministic order as IDs.
// Track histories are shared, not copied, and must be treated as read only.
func (tm *TrackManager) Tracks() []*Track {
	tm.Lock()
	defer tm.Unlock()

	out := make([]*Track, 0, len(tm.order))

	for _, id := range tm.order {
		out = append(out, tm.tracks[id])
	}

	return out
}

// Track returns the track for the given ID, or false if no such track is
// active.
func (tm *TrackManager) Track(id int) (*Track, bool) {
	tm.Lock()
	defer tm.Unlock()

	t, ok := tm.tracks[id]
	return t, ok
}

// Len returns the number of active tracks
func (tm *TrackManager) Len() int {
	tm.Lock()
	defer tm.Unlock()

	return len(tm.tracks)
}
