package health

// Tracker damps raw per-round reachability into a stable State.
//
// Two independent streak counters absorb flapping: downStreak counts
// consecutive rounds where every endpoint was down, upStreak counts
// consecutive rounds where at least one answered. A state change fires
// only once a streak reaches the matching threshold, and each counter
// resets whenever its condition breaks. Thresholds are passed in on
// every observation so runtime configuration changes take effect on
// the next round.
type Tracker struct {
	state      State
	upStreak   int
	downStreak int
}

// NewTracker returns a tracker in StateUnknown with zeroed streaks.
func NewTracker() *Tracker {
	return &Tracker{state: StateUnknown}
}

// State returns the current damped state.
func (t *Tracker) State() State {
	return t.state
}

// UpStreak returns the count of consecutive rounds with a reachable endpoint.
func (t *Tracker) UpStreak() int {
	return t.upStreak
}

// DownStreak returns the count of consecutive rounds with no reachable endpoint.
func (t *Tracker) DownStreak() int {
	return t.downStreak
}

// Observe feeds one round's aggregate result into the tracker and
// reports the transition it caused, if any.
//
// allDown is true when no endpoint answered this round. holdup is the
// number of consecutive all-down rounds required to enter StateFail,
// holddown the number of consecutive rounds with an answer required to
// enter StateGood. A threshold of zero transitions on the first
// qualifying round. A streak that reaches its threshold is consumed by
// the transition and starts again from zero.
func (t *Tracker) Observe(allDown bool, holdup, holddown int) Edge {
	if allDown {
		t.upStreak = 0
		if t.state != StateFail {
			t.downStreak++
			if t.downStreak >= holdup {
				t.state = StateFail
				t.downStreak = 0
				return EdgeToFail
			}
		}
		return EdgeNone
	}

	t.downStreak = 0
	if t.state != StateGood {
		t.upStreak++
		if t.upStreak >= holddown {
			t.state = StateGood
			t.upStreak = 0
			return EdgeToGood
		}
	}
	return EdgeNone
}
