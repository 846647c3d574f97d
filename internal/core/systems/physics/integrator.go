package physics

// SubStepFraction is the share of dt each of the two partial steps of
// FullStep advances by. Both together overshoot dt by a third.
const SubStepFraction = 2.0 / 3.0

// Integrator is implemented by every physically simulated entity kind.
//
// S is the kind's static configuration (hull shape, areas, drag
// coefficients), read-only for a whole run. D is the time-varying
// environment supplied each tick, such as the wind. I is the implementing
// type itself, normally a pointer.
type Integrator[S, D, I any] interface {
	// PartialStep advances the state by exactly dt. It must be deterministic
	// and must not call FullStep.
	PartialStep(dt float64, static S, dynamic D)
	// Merge combines other, a snapshot of the same entity reached along a
	// different path, into the receiver.
	Merge(other I, static S, dynamic D) error
	// Clone returns an independent copy of the state.
	Clone() I
}

// FullStep advances state by dt. It is the only stepping entry point tick
// drivers should call.
//
// The state is stepped by 2/3·dt, snapshotted, stepped by another 2/3·dt and
// then merged with the snapshot. Stepping past dt and averaging back damps
// the oscillation that stiff sail and rudder forces cause near their sign
// changes, at the cost of some bias.
func FullStep[S, D any, I Integrator[S, D, I]](state I, dt float64, static S, dynamic D) error {
	sub := dt * SubStepFraction
	state.PartialStep(sub, static, dynamic)
	mid := state.Clone()
	state.PartialStep(sub, static, dynamic)
	return state.Merge(mid, static, dynamic)
}
