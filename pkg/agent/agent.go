// Package agent owns the monitoring loop: one round at a time, it
// reloads the configuration, probes every endpoint, feeds the result
// into the hysteresis tracker and fires the matching configuration
// action when the verdict flips. The wait between rounds is shortened
// by however long the round itself took.
package agent

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"pingcheck/pkg/action"
	"pingcheck/pkg/config"
	"pingcheck/pkg/health"
	"pingcheck/pkg/journal"
	"pingcheck/pkg/log"
	"pingcheck/pkg/metrics"
	"pingcheck/pkg/probe"
	"pingcheck/pkg/reach"
	"pingcheck/pkg/status"
)

// Journal receives transition and action records. A nil journal
// disables recording; write failures are logged here and go no
// further.
type Journal interface {
	RecordTransition(journal.Transition) error
	RecordAction(journal.Action) error
}

// Deps wires the agent's collaborators. Clock may be left nil for the
// wall clock; Journal may be left nil to disable the journal.
type Deps struct {
	Store      config.Store
	Resolver   config.Resolver
	Prober     probe.Prober
	Dispatcher *action.Dispatcher
	Board      *status.Board
	Metrics    *metrics.Metrics
	Journal    Journal
	Clock      clock.Clock
}

// Agent runs the monitoring rounds. All mutable state (the tracker and
// the reachability sets) is touched only from the Run goroutine.
type Agent struct {
	store      config.Store
	resolver   config.Resolver
	prober     probe.Prober
	dispatcher *action.Dispatcher
	board      *status.Board
	metrics    *metrics.Metrics
	journal    Journal
	clock      clock.Clock

	sets    *reach.Sets
	tracker *health.Tracker
	logger  zerolog.Logger
}

// New assembles an agent from its collaborators.
func New(deps Deps) *Agent {
	c := deps.Clock
	if c == nil {
		c = clock.New()
	}
	return &Agent{
		store:      deps.Store,
		resolver:   deps.Resolver,
		prober:     deps.Prober,
		dispatcher: deps.Dispatcher,
		board:      deps.Board,
		metrics:    deps.Metrics,
		journal:    deps.Journal,
		clock:      c,
		sets:       reach.NewSets(),
		tracker:    health.NewTracker(),
		logger:     log.Component("agent"),
	}
}

// State returns the current damped health verdict.
func (a *Agent) State() health.State {
	return a.tracker.State()
}

// Run loops rounds until ctx is cancelled. Cancellation is honored
// only between rounds; a round in flight always completes.
func (a *Agent) Run(ctx context.Context) {
	a.logger.Info().Msg("Monitoring started")
	for {
		wait := a.runRound(ctx)

		timer := a.clock.Timer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			a.logger.Info().Msg("Monitoring stopped")
			return
		case <-timer.C:
		}
	}
}

// runRound executes one full round and returns how long to wait before
// the next one. A slow round eats into the wait, down to zero.
func (a *Agent) runRound(ctx context.Context) time.Duration {
	start := a.clock.Now()

	snap, err := config.Load(a.store, a.resolver)
	a.publishOptions(snap)
	if err != nil {
		a.board.Set(status.KeyHealthStatus, status.HealthInactive)
		a.metrics.Rounds.WithLabelValues(metrics.RoundInactive).Inc()
		a.logger.Warn().Err(err).Msg("Configuration check failed, monitoring is inactive")
		return a.nextWait(start, snap.PaceInterval())
	}

	params := probe.Params{
		Count:      snap.PingCount,
		Timeout:    snap.PingTimeout,
		SourceAddr: snap.SourceAddr,
		VRF:        snap.VRF,
	}
	out := a.sets.Update(snap.Endpoints, func(host string) bool {
		up := a.prober.Probe(host, params)
		if up {
			a.metrics.Probes.WithLabelValues(metrics.ProbeUp).Inc()
		} else {
			a.metrics.Probes.WithLabelValues(metrics.ProbeDown).Inc()
		}
		return up
	})

	from := a.tracker.State()
	edge := a.tracker.Observe(out.AllDown(), snap.Holdup, snap.Holddown)
	if edge != health.EdgeNone {
		a.handleTransition(ctx, from, edge, snap, out)
	}

	a.publishRound(out)
	a.metrics.RoundDuration.Observe(a.clock.Since(start).Seconds())

	return a.nextWait(start, snap.Interval)
}

// handleTransition logs, journals and dispatches one edge. Dispatch
// failure is recorded and forgotten; the health verdict stands.
func (a *Agent) handleTransition(ctx context.Context, from health.State, edge health.Edge, snap *config.Snapshot, out reach.Outcome) {
	to := a.tracker.State()
	a.logger.Warn().
		Str("from", from.String()).
		Str("to", to.String()).
		Strs("reachable", out.Reachable).
		Strs("unreachable", out.Unreachable).
		Msg("Health state changed")
	a.metrics.Transitions.WithLabelValues(to.String()).Inc()

	if a.journal != nil {
		err := a.journal.RecordTransition(journal.Transition{
			OccurredAt:  a.clock.Now(),
			FromState:   from.String(),
			ToState:     to.String(),
			Reachable:   out.Reachable,
			Unreachable: out.Unreachable,
		})
		if err != nil {
			a.logger.Error().Err(err).Msg("Failed to journal the transition")
		}
	}

	res := a.dispatcher.Dispatch(ctx, edge, snap.FailPath, snap.RecoverPath)
	if res.Err != nil {
		a.metrics.Applies.WithLabelValues(metrics.ApplyError).Inc()
	} else {
		a.metrics.Applies.WithLabelValues(metrics.ApplyOK).Inc()
	}

	if a.journal != nil {
		rec := journal.Action{
			OccurredAt: a.clock.Now(),
			Edge:       res.Edge.String(),
			Path:       res.Path,
			Commands:   res.Commands,
			OK:         res.Err == nil,
		}
		if res.Err != nil {
			rec.Detail = res.Err.Error()
		}
		if err := a.journal.RecordAction(rec); err != nil {
			a.logger.Error().Err(err).Msg("Failed to journal the action")
		}
	}
}

// publishRound pushes the round's verdict and sets onto the board and
// the gauges.
func (a *Agent) publishRound(out reach.Outcome) {
	state := a.tracker.State()
	a.board.Set(status.KeyHealthStatus, state.String())
	a.board.Set(status.KeyReachable, joinOrNone(out.Reachable))
	a.board.Set(status.KeyUnreachable, joinOrNone(out.Unreachable))

	a.metrics.HealthState.Set(float64(state))
	a.metrics.EndpointsReachable.Set(float64(len(out.Reachable)))

	switch state {
	case health.StateFail:
		a.metrics.Rounds.WithLabelValues(metrics.RoundFail).Inc()
	default:
		a.metrics.Rounds.WithLabelValues(metrics.RoundGood).Inc()
	}
}

// publishOptions echoes the snapshot onto the board, every round,
// whether or not the snapshot validated.
func (a *Agent) publishOptions(snap *config.Snapshot) {
	a.board.Set(status.KeyEndpoints, joinOrNone(snap.Endpoints))
	a.board.Set(config.OptConfFail, orNone(snap.FailPath))
	a.board.Set(config.OptConfRecover, orNone(snap.RecoverPath))
	a.board.Set(config.OptInterval, strconv.Itoa(int(snap.Interval/time.Second)))
	a.board.Set(config.OptPingCount, strconv.Itoa(snap.PingCount))
	a.board.Set(config.OptPingTimeout, strconv.Itoa(int(snap.PingTimeout/time.Second)))
	a.board.Set(config.OptHoldup, strconv.Itoa(snap.Holdup))
	a.board.Set(config.OptHolddown, strconv.Itoa(snap.Holddown))
	a.board.Set(config.OptSource, orNone(snap.Source))
	a.board.Set(config.OptVRF, orNone(snap.VRF))
}

// nextWait applies drift compensation: the wait shrinks by the round's
// own duration and never goes negative.
func (a *Agent) nextWait(start time.Time, interval time.Duration) time.Duration {
	elapsed := a.clock.Since(start)
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
