package engine

import "github.com/gowes/bike-rental-api/internal/model"

// allowedTransitions is the rental state machine as a directed graph.
// ONGOING is the only non-terminal state: a rental either completes at
// a return station or is cancelled administratively. COMPLETED and
// CANCELLED accept no further transitions.
var allowedTransitions = map[string][]string{
	model.TxOngoing:   {model.TxCompleted, model.TxCancelled},
	model.TxCompleted: {},
	model.TxCancelled: {},
}

// CanTransition reports whether from -> to is a legal rental status
// transition. Self-transitions are allowed; attaching a service keeps
// the rental ONGOING.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
