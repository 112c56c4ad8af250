/*
Package kittiklt provides sparse Kanade-Lucas-Tomasi feature tracking over
image sequences, together with readers for the KITTI autonomous driving
datasets used to feed it.

Tracking is built on OpenCV through the GoCV bindings.  Corners are found
with the Shi-Tomasi or FAST detectors and propagated frame to frame with
pyramidal Lucas-Kanade optical flow, with an optional forward-backward
consistency check to reject drifting matches.  Track identity and history
are maintained by the tracker subpackage, the dataset subpackage walks the
KITTI odometry, raw, stereo ground truth, and omnidirectional layouts, and
the render subpackage draws the resulting tracks for inspection.
*/
package kittiklt
