package health

// State is the damped health verdict over the whole endpoint set.
type State int

const (
	// StateUnknown is the boot state, held until probe results first
	// sustain one of the two real states past its threshold.
	StateUnknown State = iota
	// StateGood means at least one endpoint answers.
	StateGood
	// StateFail means every endpoint is unreachable.
	StateFail
)

// String renders the state the way it is published on the status board.
func (s State) String() string {
	switch s {
	case StateGood:
		return "GOOD"
	case StateFail:
		return "FAIL"
	default:
		return "Unknown"
	}
}

// Edge is the transition produced by a single round's observation.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeToGood
	EdgeToFail
)

func (e Edge) String() string {
	switch e {
	case EdgeToGood:
		return "to-good"
	case EdgeToFail:
		return "to-fail"
	default:
		return "none"
	}
}
