// Package face implements face template matching and liveness scoring on
// top of an external embedding source.
//
// The raw pipeline (detection, landmarking, embedding) lives outside this
// core: callers hand in a fixed-length numeric embedding plus named
// landmark coordinates, and for liveness a sequence of frames carrying
// landmarks and a grayscale face patch. No image decoding happens here.
package face

import (
	"math"

	"github.com/verimatch/verimatch/internal/stat"
)

// Point is a 2D landmark coordinate in image space.
type Point struct {
	X float64
	Y float64
}

// Landmarks maps a named facial region to its ordered landmark points.
// The recognized keys follow the upstream extractor's vocabulary.
type Landmarks map[string][]Point

// Landmark region names produced by the external extractor.
const (
	RegionLeftEye    = "left_eye"
	RegionRightEye   = "right_eye"
	RegionNoseBridge = "nose_bridge"
	RegionNoseTip    = "nose_tip"
	RegionChin       = "chin"
)

// GeometricDim is the number of geometric features appended after the
// embedding: inter-eye distance, face height, nose-chin distance and the
// two eye aspect ratios.
const GeometricDim = 5

// GeometricNames names the geometric feature block in vector order.
var GeometricNames = [GeometricDim]string{
	"eye_distance", "face_height", "nose_chin_distance", "left_ear", "right_ear",
}

func dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func centroid(ps []Point) Point {
	xs := make([]float64, len(ps))
	ys := make([]float64, len(ps))
	for i, p := range ps {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return Point{X: stat.Mean(xs), Y: stat.Mean(ys)}
}

// aspectRatio computes the eye aspect ratio over a 6-point eye contour:
// the mean of the two vertical gaps over the horizontal span. Returns 1
// (wide open) when the contour is incomplete, so missing data never
// registers as a blink.
func aspectRatio(eye []Point) float64 {
	if len(eye) < 6 {
		return 1
	}
	v1 := dist(eye[1], eye[5])
	v2 := dist(eye[2], eye[4])
	h := dist(eye[0], eye[3])
	if h == 0 {
		return 1
	}
	return (v1 + v2) / (2 * h)
}

// Geometric computes the geometric feature block from landmarks. Regions
// that are absent contribute zeros, keeping the block length fixed.
func Geometric(lm Landmarks) []float64 {
	features := make([]float64, GeometricDim)

	leftEye := lm[RegionLeftEye]
	rightEye := lm[RegionRightEye]
	if len(leftEye) > 0 && len(rightEye) > 0 {
		features[0] = dist(centroid(leftEye), centroid(rightEye))
		features[3] = aspectRatio(leftEye)
		features[4] = aspectRatio(rightEye)
	}

	noseBridge := lm[RegionNoseBridge]
	chin := lm[RegionChin]
	if len(noseBridge) > 0 && len(chin) > 0 {
		features[1] = dist(noseBridge[0], chin[len(chin)/2])
	}

	noseTip := lm[RegionNoseTip]
	if len(noseTip) > 0 && len(chin) > 0 {
		features[2] = dist(centroid(noseTip), centroid(chin))
	}

	return features
}

// Extract builds the face feature vector: the externally supplied
// embedding followed by the geometric block. The embedding is copied, not
// aliased.
func Extract(embedding []float64, lm Landmarks) []float64 {
	out := make([]float64, 0, len(embedding)+GeometricDim)
	out = append(out, embedding...)
	out = append(out, Geometric(lm)...)
	return out
}
