package face

import (
	"github.com/verimatch/verimatch/internal/stat"
)

// Frame is one liveness observation: landmarks for blink analysis and an
// optional grayscale face patch (row-major intensities in [0,255]) for
// texture analysis. The patch is a numeric array supplied by the caller;
// the core does no image decoding.
type Frame struct {
	Landmarks Landmarks
	Gray      []float64
	Width     int
	Height    int
}

// DefaultEARThreshold is the eye-aspect-ratio below which an eye counts
// as closed.
const DefaultEARThreshold = 0.25

// blinkWeight is the contribution of an observed blink to the combined
// liveness score; texture evidence dominates the blend.
const blinkWeight = 0.3

// LivenessResult reports the anti-spoofing sub-scores alongside the
// combined score, so a rejection can be explained.
type LivenessResult struct {
	// TextureScore in [0,1]: sharpness/texture evidence that the face is
	// not a flat reproduction.
	TextureScore float64

	// BlinkDetected is true if any frame showed closed eyes.
	BlinkDetected bool

	// Score is the combined liveness score in [0,1].
	Score float64
}

// LivenessDetector scores spoof-resistance from frames.
type LivenessDetector struct {
	// EARThreshold is the closed-eye cutoff. Zero uses the default.
	EARThreshold float64
}

// NewLivenessDetector returns a detector with the default blink
// threshold.
func NewLivenessDetector() *LivenessDetector {
	return &LivenessDetector{EARThreshold: DefaultEARThreshold}
}

func (d *LivenessDetector) earThreshold() float64 {
	if d.EARThreshold > 0 {
		return d.EARThreshold
	}
	return DefaultEARThreshold
}

// Blink reports whether the landmarks show both eyes below the EAR
// threshold.
func (d *LivenessDetector) Blink(lm Landmarks) bool {
	left := lm[RegionLeftEye]
	right := lm[RegionRightEye]
	if len(left) == 0 || len(right) == 0 {
		return false
	}
	avg := (aspectRatio(left) + aspectRatio(right)) / 2
	return avg < d.earThreshold()
}

// Texture scores the sharpness and micro-texture of a grayscale face
// patch. Printed photos and screens are flatter than live skin: the
// score blends Laplacian variance (focus) with local-binary-pattern
// variance, clamped to [0,1]. Empty or degenerate patches score 0.
func (d *LivenessDetector) Texture(f Frame) float64 {
	if f.Width < 3 || f.Height < 3 || len(f.Gray) != f.Width*f.Height {
		return 0
	}

	lapVar := laplacianVariance(f.Gray, f.Width, f.Height)
	lbpVar := lbpVariance(f.Gray, f.Width, f.Height)

	score := (lapVar/100 + lbpVar/50) / 2
	if score > 1 {
		score = 1
	}
	return score
}

// Score combines texture and blink evidence over a frame sequence.
// Texture is averaged over frames that carry a patch; the blink bonus
// applies when any frame with landmarks shows closed eyes. With no
// landmark-bearing frames the score is texture alone.
func (d *LivenessDetector) Score(frames []Frame) LivenessResult {
	var textures []float64
	blink := false
	sawLandmarks := false

	for _, f := range frames {
		if len(f.Gray) > 0 {
			textures = append(textures, d.Texture(f))
		}
		if len(f.Landmarks) > 0 {
			sawLandmarks = true
			if d.Blink(f.Landmarks) {
				blink = true
			}
		}
	}

	texture := stat.Mean(textures)
	score := texture
	if sawLandmarks {
		bonus := 0.0
		if blink {
			bonus = blinkWeight
		}
		score = (texture + bonus) / (1 + blinkWeight)
	}

	return LivenessResult{TextureScore: texture, BlinkDetected: blink, Score: score}
}

// laplacianVariance applies a 4-neighbor Laplacian over the interior
// pixels and returns the variance of the responses.
func laplacianVariance(gray []float64, w, h int) float64 {
	responses := make([]float64, 0, (w-2)*(h-2))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			c := gray[y*w+x]
			lap := gray[(y-1)*w+x] + gray[(y+1)*w+x] + gray[y*w+x-1] + gray[y*w+x+1] - 4*c
			responses = append(responses, lap)
		}
	}
	return stat.Variance(responses)
}

// lbpVariance computes the variance of the 8-neighbor local binary
// pattern codes over the interior pixels.
func lbpVariance(gray []float64, w, h int) float64 {
	codes := make([]float64, 0, (w-2)*(h-2))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			c := gray[y*w+x]
			var code int
			if gray[(y-1)*w+x-1] > c {
				code |= 1 << 7
			}
			if gray[(y-1)*w+x] > c {
				code |= 1 << 6
			}
			if gray[(y-1)*w+x+1] > c {
				code |= 1 << 5
			}
			if gray[y*w+x+1] > c {
				code |= 1 << 4
			}
			if gray[(y+1)*w+x+1] > c {
				code |= 1 << 3
			}
			if gray[(y+1)*w+x] > c {
				code |= 1 << 2
			}
			if gray[(y+1)*w+x-1] > c {
				code |= 1 << 1
			}
			if gray[y*w+x-1] > c {
				code |= 1
			}
			codes = append(codes, float64(code))
		}
	}
	return stat.Variance(codes)
}
