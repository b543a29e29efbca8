package motionplan

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r2"

	"go.viam.com/fieldnav/spatialmath"
)

// DirectionSource supplies a heading whenever the planner has no preferred direction: a zero net
// force, an escape with no usable candidate, or a move that collided twice.
type DirectionSource interface {
	// NextHeading returns a unit vector.
	NextHeading() r2.Point
}

type randomDirectionSource struct {
	rng *rand.Rand
}

// NewRandomDirectionSource returns headings drawn uniformly from the circle.
func NewRandomDirectionSource(seed int64) DirectionSource {
	//nolint:gosec
	return &randomDirectionSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *randomDirectionSource) NextHeading() r2.Point {
	return spatialmath.Heading(s.rng.Float64() * 2 * math.Pi)
}

type fixedDirectionSource struct {
	angles []float64
	next   int
}

// NewFixedDirectionSource cycles through the given angles, in radians. With no angles it always
// returns +X.
func NewFixedDirectionSource(angles ...float64) DirectionSource {
	if len(angles) == 0 {
		angles = []float64{0}
	}
	return &fixedDirectionSource{angles: append([]float64(nil), angles...)}
}

func (s *fixedDirectionSource) NextHeading() r2.Point {
	angle := s.angles[s.next]
	s.next = (s.next + 1) % len(s.angles)
	return spatialmath.Heading(angle)
}
