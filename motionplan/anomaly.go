package motionplan

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/fieldnav/spatialmath"
)

// AnomalyCounters count how persistently each anomaly has been observed. A hit increments a
// counter and a miss decrements it, never below zero.
type AnomalyCounters struct {
	Stagnation  int `json:"stagnation"`
	Oscillation int `json:"oscillation"`
}

func bump(counter *int, hit bool) {
	switch {
	case hit:
		*counter++
	case *counter > 0:
		*counter--
	}
}

type anomalyDetector struct {
	cfg *Config
}

// pathLength returns the summed displacement between consecutive positions.
func pathLength(positions []r2.Point) float64 {
	if len(positions) < 2 {
		return 0
	}
	steps := make([]float64, len(positions)-1)
	for i := range steps {
		steps[i] = spatialmath.Distance(positions[i+1], positions[i])
	}
	return floats.Sum(steps)
}

// stagnating reports whether the latest window of positions covered too little ground. ok is
// false when the window is not yet full.
func (ad *anomalyDetector) stagnating(mem *MotionMemory) (hit, ok bool) {
	if mem.WindowLen() < ad.cfg.StagnationWindow {
		return false, false
	}
	return pathLength(mem.Recent(ad.cfg.StagnationWindow)) < ad.cfg.StagnationThreshold, true
}

// retreating reports whether the last move went away from the goal. ok is false when the window
// is not yet full.
func (ad *anomalyDetector) retreating(mem *MotionMemory, goal r2.Point) (hit, ok bool) {
	if mem.WindowLen() < ad.cfg.OscillationWindow {
		return false, false
	}
	last := mem.Recent(2)
	prev, cur := last[0], last[1]
	return goal.Sub(cur).Dot(cur.Sub(prev)) < 0, true
}

// evaluate updates counters from the current memory and returns StatusStagnant, StatusOscillating
// or StatusNormal. Stagnation wins when both fire.
func (ad *anomalyDetector) evaluate(mem *MotionMemory, goal r2.Point, counters *AnomalyCounters) Status {
	stagnant := false
	if hit, ok := ad.stagnating(mem); ok {
		bump(&counters.Stagnation, hit)
		stagnant = counters.Stagnation >= ad.cfg.MaxStagnationTicks
	}
	oscillating := false
	if hit, ok := ad.retreating(mem, goal); ok {
		bump(&counters.Oscillation, hit)
		oscillating = counters.Oscillation >= ad.cfg.MaxOscillationTicks
	}
	switch {
	case stagnant:
		return StatusStagnant
	case oscillating:
		return StatusOscillating
	default:
		return StatusNormal
	}
}
