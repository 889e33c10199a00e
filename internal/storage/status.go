package storage

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusAssigned  Status = "assigned"
	StatusPickedUp  Status = "picked-up"
	StatusInTransit Status = "in-transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// statusOrder encodes the forward progression of the delivery pipeline.
var statusOrder = map[Status]int{
	StatusPending:   0,
	StatusAccepted:  1,
	StatusAssigned:  2,
	StatusPickedUp:  3,
	StatusInTransit: 4,
	StatusDelivered: 5,
}

func (s Status) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusOrder[s]
	return ok
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition validates a status change. Progression is strictly forward,
// one step at a time; cancellation is reachable from every non-terminal
// state.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	fromOrd, okFrom := statusOrder[from]
	toOrd, okTo := statusOrder[to]
	if !okFrom || !okTo {
		return false
	}
	return toOrd == fromOrd+1
}
