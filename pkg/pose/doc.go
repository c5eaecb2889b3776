// Package pose holds the value types produced by a tracking session: the
// calibration applied to raw device positions and the snapshot returned for
// every frame request.
//
// Vector arithmetic is delegated to github.com/golang/geo/r3 and quaternions
// to gonum.org/v1/gonum/num/quat; this package only composes them.
package pose
