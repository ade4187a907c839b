package orientation

import "math"

// DefaultMaxStep is the per-step angular budget used by the plate synchronizer.
const DefaultMaxStep = 0.03

// StepCount is how many poses SubSteps emits for a move from -> to.
func StepCount(maxStep float64, from, to Rotation) int {
	if maxStep <= 0 {
		return 1
	}
	magnitude := from.Distance(to).MagnitudeSum()
	if math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		return 1
	}
	return int(math.Floor(magnitude/maxStep)) + 1
}

// SubSteps splits the move from -> to into poses no more than maxStep apart
// (measured by MagnitudeSum). Intermediate poses are normalized; the last
// element is always to itself, unnormalized, so the sequence lands exactly on
// the target.
func SubSteps(maxStep float64, from, to Rotation) []Rotation {
	count := StepCount(maxStep, from, to)
	increment := from.Distance(to).DivScalar(float64(count))

	steps := make([]Rotation, 0, count)
	for i := 1; i < count; i++ {
		steps = append(steps, from.Add(increment.MulScalar(float64(i))).Normalize())
	}
	return append(steps, to)
}
