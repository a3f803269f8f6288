// Package reach partitions the configured endpoints into reachable and
// unreachable sets, round after round, and reports membership flips.
package reach

import (
	"github.com/rs/zerolog"

	"pingcheck/pkg/log"
)

// Event records one endpoint changing sets.
type Event struct {
	Host string
	Up   bool
}

// Outcome is the partition produced by a single probe round. Hosts
// appear in configured order, each exactly once.
type Outcome struct {
	Reachable   []string
	Unreachable []string
	Flips       []Event
}

// AllDown reports whether no endpoint answered this round.
func (o Outcome) AllDown() bool {
	return len(o.Reachable) == 0
}

// Sets remembers each endpoint's last probe result between rounds so
// Update can tell a flip from a steady state. Endpoints dropped from
// the configuration are forgotten and count as new if they return.
type Sets struct {
	up     map[string]bool
	logger zerolog.Logger
}

// NewSets returns an empty aggregator.
func NewSets() *Sets {
	return &Sets{
		up:     make(map[string]bool),
		logger: log.Component("aggregator"),
	}
}

// Update probes every configured endpoint once and returns the
// resulting partition. Duplicate list entries are probed a single
// time. A new endpoint that answers joins the reachable set silently;
// one that does not answer is reported down right away.
func (s *Sets) Update(endpoints []string, probe func(host string) bool) Outcome {
	var out Outcome

	seen := make(map[string]bool, len(endpoints))
	for _, host := range endpoints {
		if seen[host] {
			continue
		}
		seen[host] = true

		up := probe(host)
		prev, known := s.up[host]
		s.up[host] = up

		if up {
			out.Reachable = append(out.Reachable, host)
			if known && !prev {
				out.Flips = append(out.Flips, Event{Host: host, Up: true})
				s.logger.Info().Str("host", host).Msg("host is up")
			}
			continue
		}

		out.Unreachable = append(out.Unreachable, host)
		if !known || prev {
			out.Flips = append(out.Flips, Event{Host: host, Up: false})
			s.logger.Warn().Str("host", host).Msg("host is down")
		}
	}

	// Forget endpoints that are no longer configured.
	for host := range s.up {
		if !seen[host] {
			delete(s.up, host)
		}
	}

	return out
}
