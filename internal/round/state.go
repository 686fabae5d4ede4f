package round

// State is the lifecycle state of the current round.
type State string

// Round states
const (
	StateLoading     State = "loading"
	StateActive      State = "active"
	StateComplete    State = "complete"
	StateAllComplete State = "all_complete"
)

// validTransitions defines allowed state transitions.
var validTransitions = map[State][]State{
	StateLoading:  {StateActive},
	StateActive:   {StateComplete, StateLoading},
	StateComplete: {StateLoading, StateActive, StateAllComplete},
}

// CanTransitionTo checks if the round can move from s to next.
func (s State) CanTransitionTo(next State) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}

	for _, a := range allowed {
		if a == next {
			return true
		}
	}
	return false
}

// Loaded reports whether the state has a raster and pieces to work with.
func (s State) Loaded() bool {
	return s == StateActive || s == StateComplete
}
