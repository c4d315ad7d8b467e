package service

// State is a step of a single resolution.
type State int

const (
	StateIdle State = iota
	StateAcquiringCoordinate
	StateFetchingAddress
	StateResolving
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiringCoordinate:
		return "acquiring-coordinate"
	case StateFetchingAddress:
		return "fetching-address"
	case StateResolving:
		return "resolving"
	case StateDone:
		return "done"
	default:
		return "invalid"
	}
}

// Observer is notified of every state a resolution enters, in order.
// Callers use it to show a busy indicator from AcquiringCoordinate until Done.
type Observer interface {
	OnState(state State)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(State)

// OnState calls f(state).
func (f ObserverFunc) OnState(state State) {
	f(state)
}
