package pipeline

// State is the lifecycle position of a run.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateOptimizing
	StateFinalizing
	StateComplete
	StateCancelled
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateOptimizing:
		return "optimizing"
	case StateFinalizing:
		return "finalizing"
	case StateComplete:
		return "complete"
	case StateCancelled:
		return "cancelled"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateCancelled || s == StateError
}

var transitions = map[State][]State{
	StateIdle:       {StateLoading},
	StateLoading:    {StateLoading, StateOptimizing, StateCancelled, StateError},
	StateOptimizing: {StateOptimizing, StateFinalizing, StateCancelled},
	StateFinalizing: {StateFinalizing, StateComplete, StateError},
}

// CanTransition reports whether a run may move from one state to another.
// Self transitions carry progress updates within a state.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Status lines shown while a run progresses.
const (
	StatusLoading     = "Loading..."
	StatusEngine      = "Loading audio engine... (first time only)"
	StatusOptimizing  = "Optimizing assets..."
	StatusFinalizing  = "Compressing final .sb3..."
	StatusComplete    = "Complete!"
	StatusCancelled   = "Cancelled - nothing saved"
	statusErrorPrefix = "Error: "
)

// Progress checkpoints as fractions of the whole run. Asset processing is
// spread evenly between optimizeStart and optimizeEnd.
const (
	progressLoaded    = 0.05
	optimizeStart     = 0.15
	optimizeEnd       = 0.95
	progressFinalized = 1.0
)

// Update describes one progress notification.
type Update struct {
	State     State
	Status    string
	Progress  float64
	Processed int
	Total     int
	Asset     string
}

// Reporter receives progress updates synchronously from the running goroutine.
type Reporter func(Update)
