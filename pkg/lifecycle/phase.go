package lifecycle

import "fmt"

type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseReady
	PhaseFailed
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// transitions lists the phases reachable from each phase.
var transitions = map[Phase][]Phase{
	PhaseInitializing: {PhaseReady, PhaseFailed, PhaseClosed},
	PhaseFailed:       {PhaseInitializing, PhaseClosed},
	PhaseReady:        {PhaseClosed},
}

func (p Phase) canTransition(to Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == to {
			return true
		}
	}
	return false
}
