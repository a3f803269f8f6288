package health

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// TrackerTestSuite tests the hysteresis tracker
type TrackerTestSuite struct {
	suite.Suite
	tracker *Tracker
}

// SetupTest runs before each test
func (s *TrackerTestSuite) SetupTest() {
	s.tracker = NewTracker()
}

// feed runs a sequence of observations and collects the fired edges
func (s *TrackerTestSuite) feed(holdup, holddown int, allDown ...bool) []Edge {
	edges := make([]Edge, 0, len(allDown))
	for _, down := range allDown {
		if edge := s.tracker.Observe(down, holdup, holddown); edge != EdgeNone {
			edges = append(edges, edge)
		}
	}
	return edges
}

// TestStartsUnknown tests the boot state
func (s *TrackerTestSuite) TestStartsUnknown() {
	s.Equal(StateUnknown, s.tracker.State())
	s.Equal(0, s.tracker.UpStreak())
	s.Equal(0, s.tracker.DownStreak())
}

// TestZeroThresholdsTransitionImmediately tests the undamped configuration
func (s *TrackerTestSuite) TestZeroThresholdsTransitionImmediately() {
	s.Equal(EdgeToGood, s.tracker.Observe(false, 0, 0))
	s.Equal(StateGood, s.tracker.State())

	s.Equal(EdgeToFail, s.tracker.Observe(true, 0, 0))
	s.Equal(StateFail, s.tracker.State())

	s.Equal(EdgeToGood, s.tracker.Observe(false, 0, 0))
	s.Equal(StateGood, s.tracker.State())
}

// TestHoldupDelaysFailure tests that failure needs holdup consecutive all-down rounds
func (s *TrackerTestSuite) TestHoldupDelaysFailure() {
	s.tracker.Observe(false, 3, 0) // enter Good

	s.Equal(EdgeNone, s.tracker.Observe(true, 3, 0))
	s.Equal(EdgeNone, s.tracker.Observe(true, 3, 0))
	s.Equal(StateGood, s.tracker.State())

	s.Equal(EdgeToFail, s.tracker.Observe(true, 3, 0))
	s.Equal(StateFail, s.tracker.State())
}

// TestHoldupTwoFiresOnSecondRound tests the off-by-one boundary
func (s *TrackerTestSuite) TestHoldupTwoFiresOnSecondRound() {
	s.tracker.Observe(false, 2, 0) // enter Good

	s.Equal(EdgeNone, s.tracker.Observe(true, 2, 0))
	s.Equal(EdgeToFail, s.tracker.Observe(true, 2, 0))
}

// TestSingleRecoveryResetsDownStreak tests that one answering round restarts the failure count
func (s *TrackerTestSuite) TestSingleRecoveryResetsDownStreak() {
	s.tracker.Observe(false, 3, 0) // enter Good

	s.tracker.Observe(true, 3, 0)
	s.tracker.Observe(true, 3, 0)
	s.Equal(2, s.tracker.DownStreak())

	s.Equal(EdgeNone, s.tracker.Observe(false, 3, 0))
	s.Equal(0, s.tracker.DownStreak())
	s.Equal(StateGood, s.tracker.State())

	// The streak starts over: three more all-down rounds to fail.
	edges := s.feed(3, 0, true, true, true)
	s.Equal([]Edge{EdgeToFail}, edges)
}

// TestHolddownDelaysRecovery tests that recovery needs holddown consecutive answering rounds
func (s *TrackerTestSuite) TestHolddownDelaysRecovery() {
	s.tracker.Observe(true, 0, 2) // enter Fail

	s.Equal(EdgeNone, s.tracker.Observe(false, 0, 2))
	s.Equal(StateFail, s.tracker.State())

	s.Equal(EdgeToGood, s.tracker.Observe(false, 0, 2))
	s.Equal(StateGood, s.tracker.State())
}

// TestFlapDuringRecoveryResetsUpStreak tests that an all-down round restarts the recovery count
func (s *TrackerTestSuite) TestFlapDuringRecoveryResetsUpStreak() {
	s.tracker.Observe(true, 0, 3) // enter Fail

	s.tracker.Observe(false, 0, 3)
	s.tracker.Observe(false, 0, 3)
	s.Equal(2, s.tracker.UpStreak())

	s.Equal(EdgeNone, s.tracker.Observe(true, 0, 3))
	s.Equal(0, s.tracker.UpStreak())
	s.Equal(StateFail, s.tracker.State())

	edges := s.feed(0, 3, false, false, false)
	s.Equal([]Edge{EdgeToGood}, edges)
}

// TestEdgesFireExactlyOncePerEntry tests that sustained states emit no further edges
func (s *TrackerTestSuite) TestEdgesFireExactlyOncePerEntry() {
	edges := s.feed(1, 1, false, false, false, true, true, true, false, false)
	s.Equal([]Edge{EdgeToGood, EdgeToFail, EdgeToGood}, edges)
}

// TestSustainedStateKeepsStreaksZero tests that counters only run while a change is pending
func (s *TrackerTestSuite) TestSustainedStateKeepsStreaksZero() {
	s.tracker.Observe(false, 0, 0) // enter Good

	for i := 0; i < 5; i++ {
		s.tracker.Observe(false, 3, 3)
	}
	s.Equal(0, s.tracker.UpStreak())
	s.Equal(0, s.tracker.DownStreak())
}

// TestUnknownExitsToFail tests the boot path when everything is down
func (s *TrackerTestSuite) TestUnknownExitsToFail() {
	s.Equal(EdgeNone, s.tracker.Observe(true, 2, 2))
	s.Equal(StateUnknown, s.tracker.State())

	s.Equal(EdgeToFail, s.tracker.Observe(true, 2, 2))
	s.Equal(StateFail, s.tracker.State())
}

// TestUnknownTracksBothStreaks tests that either threshold can end the boot state
func (s *TrackerTestSuite) TestUnknownTracksBothStreaks() {
	s.tracker.Observe(false, 2, 2)
	s.tracker.Observe(true, 2, 2) // resets the up streak
	s.Equal(StateUnknown, s.tracker.State())

	s.tracker.Observe(false, 2, 2)
	s.Equal(EdgeToGood, s.tracker.Observe(false, 2, 2))
	s.Equal(StateGood, s.tracker.State())
}

// TestLoweredThresholdFiresOnNextQualifyingRound tests runtime threshold changes
func (s *TrackerTestSuite) TestLoweredThresholdFiresOnNextQualifyingRound() {
	s.tracker.Observe(false, 10, 0) // enter Good

	s.tracker.Observe(true, 10, 0)
	s.tracker.Observe(true, 10, 0)
	s.tracker.Observe(true, 10, 0)
	s.Equal(3, s.tracker.DownStreak())

	// Operator lowers holdup below the running streak.
	s.Equal(EdgeToFail, s.tracker.Observe(true, 2, 0))
}

// TestRaisedThresholdExtendsTheWait tests runtime threshold changes the other way
func (s *TrackerTestSuite) TestRaisedThresholdExtendsTheWait() {
	s.tracker.Observe(false, 2, 0) // enter Good

	s.Equal(EdgeNone, s.tracker.Observe(true, 2, 0))
	s.Equal(EdgeNone, s.tracker.Observe(true, 4, 0))
	s.Equal(EdgeNone, s.tracker.Observe(true, 4, 0))
	s.Equal(EdgeToFail, s.tracker.Observe(true, 4, 0))
}

// TestStateStrings tests the published state names
func (s *TrackerTestSuite) TestStateStrings() {
	s.Equal("Unknown", StateUnknown.String())
	s.Equal("GOOD", StateGood.String())
	s.Equal("FAIL", StateFail.String())

	s.Equal("none", EdgeNone.String())
	s.Equal("to-good", EdgeToGood.String())
	s.Equal("to-fail", EdgeToFail.String())
}

// TestTrackerSuite runs the tracker test suite
func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}
